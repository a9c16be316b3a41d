// Package observ measures compile phases of a single template.
package observ

import (
	"fmt"
	"strings"
	"time"
)

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
}

// Timer collects phases in the order they were started. It is not safe for
// concurrent use; each template gets its own.
type Timer struct {
	phases []phase
}

func NewTimer() *Timer { return &Timer{phases: make([]phase, 0, 4)} }

// Start opens a phase and returns the function that closes it. Closing twice
// keeps the first duration.
func (t *Timer) Start(name string) (stop func(note string)) {
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name, start: time.Now()})
	return func(note string) {
		p := &t.phases[idx]
		if p.dur != 0 {
			return
		}
		p.dur = max(time.Since(p.start), 1)
		p.note = note
	}
}

// PhaseReport is one phase in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is what a Timer measured, ready for JSON.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the timer. Phases that were never stopped count as zero.
func (t *Timer) Report() Report {
	var r Report
	for _, p := range t.phases {
		ms := millis(p.dur)
		r.TotalMS += ms
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms, Note: p.note})
	}
	return r
}

// Phase returns the first phase called name.
func (r Report) Phase(name string) (PhaseReport, bool) {
	for _, p := range r.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return PhaseReport{}, false
}

// Duration of the phase called name, zero when absent.
func (r Report) Duration(name string) time.Duration {
	p, _ := r.Phase(name)
	return time.Duration(p.DurationMS * float64(time.Millisecond))
}

// Summary renders the report as an aligned table.
func (r Report) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-12s %8.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

// Merge складывает фазы с одинаковыми именами; порядок по первому появлению.
func Merge(reports ...Report) Report {
	var out Report
	index := make(map[string]int)
	for _, r := range reports {
		for _, p := range r.Phases {
			if i, ok := index[p.Name]; ok {
				out.Phases[i].DurationMS += p.DurationMS
				continue
			}
			index[p.Name] = len(out.Phases)
			out.Phases = append(out.Phases, PhaseReport{Name: p.Name, DurationMS: p.DurationMS})
		}
		out.TotalMS += r.TotalMS
	}
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
