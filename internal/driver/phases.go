package driver

import (
	"encoding/json"
	"fmt"
	"time"

	"slyc/internal/diag"
	"slyc/internal/observ"
)

// PhaseStatus is the edge of a phase reported to Options.OnPhase.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent is one edge of cache, compile or validate for one template.
type PhaseEvent struct {
	Path    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration // set on PhaseEnd
}

// PhaseObserver receives phase events emitted during Compile. Under
// CompileDir it is called from several goroutines.
type PhaseObserver func(PhaseEvent)

// phaseClock drives the optional timer and the observer of one Compile call.
type phaseClock struct {
	path     string
	timer    *observ.Timer
	observer PhaseObserver
}

func newPhaseClock(path string, opts Options) *phaseClock {
	c := &phaseClock{path: path, observer: opts.OnPhase}
	if opts.EnableTimings {
		c.timer = observ.NewTimer()
	}
	return c
}

// start opens phase name; the returned func closes it with a note.
func (c *phaseClock) start(name string) func(note string) {
	began := time.Now()
	if c.observer != nil {
		c.observer(PhaseEvent{Path: c.path, Name: name, Status: PhaseStart})
	}
	stopTimer := func(string) {}
	if c.timer != nil {
		stopTimer = c.timer.Start(name)
	}
	return func(note string) {
		stopTimer(note)
		if c.observer != nil {
			c.observer(PhaseEvent{Path: c.path, Name: name, Status: PhaseEnd, Elapsed: time.Since(began)})
		}
	}
}

// finish stores the timer report on res and mirrors it as an ObsTimings
// diagnostic whose note carries the report as JSON.
func (c *phaseClock) finish(res *Result) {
	if c.timer == nil {
		return
	}
	report := c.timer.Report()
	res.Timing = &report

	data, err := json.Marshal(struct {
		Path string `json:"path"`
		observ.Report
	}{res.Path, report})
	if err != nil {
		return
	}
	entry := &diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  fmt.Sprintf("timings: total %.2f ms: %s", report.TotalMS, res.Path),
		Notes:    []diag.Note{{Msg: string(data)}},
	}
	if !res.Bag.Add(entry) {
		// мешок полон, но тайминги всё равно нужны
		overflow := diag.NewBag(1)
		overflow.Add(entry)
		res.Bag.Merge(overflow)
	}
}
