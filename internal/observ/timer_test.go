package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	stopCompile := tm.Start("compile")
	time.Sleep(time.Millisecond)
	stopCompile("instrs=3")
	stopCompile("again")
	tm.Start("validate")("")
	tm.Start("never stopped")

	r := tm.Report()
	if len(r.Phases) != 3 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	p, ok := r.Phase("compile")
	if !ok || p.DurationMS <= 0 || p.Note != "instrs=3" {
		t.Fatalf("compile phase = %+v, %v", p, ok)
	}
	if r.TotalMS < p.DurationMS {
		t.Fatalf("total %v < phase %v", r.TotalMS, p.DurationMS)
	}
	if r.Duration("never stopped") != 0 || r.Duration("render") != 0 {
		t.Fatal("unstopped and missing phases must be zero")
	}
	if r.Duration("validate") <= 0 {
		t.Fatal("stopped phase must have a positive duration")
	}
	sum := r.Summary()
	if !strings.Contains(sum, "compile") || !strings.Contains(sum, "instrs=3") || !strings.Contains(sum, "total") {
		t.Fatalf("summary:\n%s", sum)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("report = %+v", r)
	}
}

func TestMerge(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "compile", DurationMS: 2}, {Name: "validate", DurationMS: 1}}}
	b := Report{TotalMS: 5, Phases: []PhaseReport{{Name: "cache", DurationMS: 1}, {Name: "compile", DurationMS: 4}}}
	m := Merge(a, b)
	if m.TotalMS != 8 || len(m.Phases) != 3 {
		t.Fatalf("merged = %+v", m)
	}
	if m.Phases[0].Name != "compile" || m.Phases[0].DurationMS != 6 || m.Phases[2].Name != "cache" {
		t.Fatalf("merged phases = %+v", m.Phases)
	}
}
