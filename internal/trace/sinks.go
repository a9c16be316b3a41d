package trace

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"
)

type nop struct{}

func (nop) Emit(*Event)  {}
func (nop) Level() Level { return LevelOff }
func (nop) Close() error { return nil }

// Nop discards everything.
var Nop Tracer = nop{}

// Stream formats each event and writes it through a buffer. Close flushes
// the buffer and closes the writer unless it is stdout or stderr.
type Stream struct {
	mu     sync.Mutex
	dst    io.Writer
	buf    *bufio.Writer
	level  Level
	format Format
}

func NewStream(w io.Writer, level Level, format Format) *Stream {
	return &Stream{dst: w, buf: bufio.NewWriter(w), level: level, format: format}
}

func (s *Stream) Emit(ev *Event) {
	if !s.level.Allows(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	data := FormatEvent(ev, s.format)
	s.mu.Lock()
	_, _ = s.buf.Write(data)
	// heartbeat должен быть виден сразу, даже если компилятор завис
	if ev.Kind == KindHeartbeat || ev.Scope == ScopeDriver {
		_ = s.buf.Flush()
	}
	s.mu.Unlock()
}

func (s *Stream) Level() Level { return s.level }

// Flush writes buffered events out.
func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Flush()
}

func (s *Stream) Close() error {
	err := s.Flush()
	if s.dst == os.Stderr || s.dst == os.Stdout {
		return err
	}
	if c, ok := s.dst.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

// Ring keeps the most recent events in memory.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	full  bool
	level Level
}

func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = 4096
	}
	return &Ring{buf: make([]Event, size), level: level}
}

func (r *Ring) Emit(ev *Event) {
	if !r.level.Allows(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	r.mu.Lock()
	r.buf[r.next] = *ev
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
	r.mu.Unlock()
}

func (r *Ring) Level() Level { return r.level }
func (r *Ring) Close() error { return nil }

// Snapshot returns the kept events, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.buf[:r.next]...)
	}
	out := make([]Event, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Dump writes the snapshot to w.
func (r *Ring) Dump(w io.Writer, format Format) error {
	for _, ev := range r.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

// Fanout sends every event to all of its tracers.
type Fanout struct {
	tracers []Tracer
	level   Level
}

func NewFanout(level Level, tracers ...Tracer) *Fanout {
	return &Fanout{tracers: tracers, level: level}
}

func (f *Fanout) Emit(ev *Event) {
	for _, t := range f.tracers {
		cp := *ev
		t.Emit(&cp)
	}
}

func (f *Fanout) Level() Level { return f.level }

func (f *Fanout) Close() error {
	var errs []error
	for _, t := range f.tracers {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

// FindRing returns the Ring inside t, if any.
func FindRing(t Tracer) *Ring {
	switch tt := t.(type) {
	case *Ring:
		return tt
	case *Fanout:
		for _, inner := range tt.tracers {
			if r := FindRing(inner); r != nil {
				return r
			}
		}
	}
	return nil
}
