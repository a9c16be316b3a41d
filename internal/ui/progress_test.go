package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	bp "slyc/internal/buildpipeline"
)

func TestProgressModelAppliesEvents(t *testing.T) {
	events := make(chan bp.Event)
	m := NewProgressModel("compiling templates", []string{"a.html", "b.html"}, events).(*progressModel)

	m.applyEvent(bp.Event{File: "a.html", Stage: bp.StageCompile, Status: bp.StatusWorking})
	if got := m.rows[0].label(); got != "compiling" {
		t.Fatalf("label = %q", got)
	}
	if got := m.percent(); got != 0.25 {
		t.Fatalf("percent = %v, want 0.25", got)
	}
	m.applyEvent(bp.Event{File: "a.html", Stage: bp.StageCompile, Status: bp.StatusDone, Elapsed: 3 * time.Millisecond})
	m.applyEvent(bp.Event{File: "b.html", Stage: bp.StageCompile, Status: bp.StatusError})
	m.applyEvent(bp.Event{File: "b.html", Stage: bp.StageCompile, Status: bp.StatusError})
	m.applyEvent(bp.Event{File: "unknown.html", Stage: bp.StageCompile, Status: bp.StatusDone})

	if m.failed != 1 {
		t.Fatalf("failed = %d", m.failed)
	}
	if got := m.percent(); got != 1.0 {
		t.Fatalf("percent = %v", got)
	}
	if m.rows[0].elapsed != 3*time.Millisecond {
		t.Fatalf("elapsed = %v", m.rows[0].elapsed)
	}

	m.applyEvent(bp.Event{Stage: bp.StageRender, Status: bp.StatusWorking})
	if m.phase != "rendering" {
		t.Fatalf("phase = %q", m.phase)
	}
	view := m.View()
	for _, want := range []string{"a.html", "compiling templates (rendering)", "done", "error", "3ms"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}
}

func TestQueuedRowLabel(t *testing.T) {
	if got := (fileRow{}).label(); got != "queued" {
		t.Fatalf("label = %q", got)
	}
	if got := (fileRow{status: bp.StatusWorking, stage: bp.StageLoad}).share(); got != 0.1 {
		t.Fatalf("share = %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("templates/very/long/name.html", 12); got != "templates..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("short", 12); got != "short" {
		t.Fatalf("got %q", got)
	}
	for _, width := range []int{2, 3, 4, 12, 20} {
		got := truncate("templates/very/long/name.html", width)
		if w := runewidth.StringWidth(got); w != width {
			t.Fatalf("truncate to %d gave %q (%d columns)", width, got, w)
		}
	}
}
