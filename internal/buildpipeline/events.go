package buildpipeline

import "time"

// Stage is a pipeline phase, in execution order.
type Stage uint8

const (
	StageLoad     Stage = iota // template discovery and loading
	StageCache                 // compiled-program cache lookups
	StageCompile               // template walk and directive runner
	StageValidate              // instruction stream checks
	StageEmit                  // writing dumps or JSON
	StageRender                // executing a program with data
	stageCount
)

var stageNames = [stageCount]string{"load", "cache", "compile", "validate", "emit", "render"}

func (s Stage) String() string {
	if s < stageCount {
		return stageNames[s]
	}
	return "unknown"
}

// Status is where a file (or the whole pipeline) stands within a stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event reports progress for File, or for the whole pipeline when File is
// empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Finished reports whether the event closes its file.
func (e Event) Finished() bool {
	return e.Status == StatusDone || e.Status == StatusError
}

// ProgressSink consumes progress events. Directory compilation calls it from
// worker goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) {
	if f != nil {
		f(ev)
	}
}

// Timings holds one duration per stage. The zero value is empty.
type Timings struct {
	dur [stageCount]time.Duration
	set uint8 // bit per recorded stage
}

func (t *Timings) Set(stage Stage, d time.Duration) {
	if t == nil || stage >= stageCount {
		return
	}
	t.dur[stage] = d
	t.set |= 1 << stage
}

func (t *Timings) Add(stage Stage, d time.Duration) {
	if t == nil || stage >= stageCount {
		return
	}
	t.dur[stage] += d
	t.set |= 1 << stage
}

func (t Timings) Has(stage Stage) bool {
	return stage < stageCount && t.set&(1<<stage) != 0
}

func (t Timings) Duration(stage Stage) time.Duration {
	if stage >= stageCount {
		return 0
	}
	return t.dur[stage]
}

// Each calls fn for recorded stages in pipeline order.
func (t Timings) Each(fn func(Stage, time.Duration)) {
	for s := range stageCount {
		if t.Has(s) {
			fn(s, t.dur[s])
		}
	}
}
