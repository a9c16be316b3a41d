package trace

import (
	"context"
	"time"
)

type tracerKey struct{}
type spanKey struct{}

// WithTracer attaches t to ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// Span is an open begin/end pair.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   map[string]string
}

// Start begins a span under the span already in ctx and returns a context
// carrying the new one. Filtered spans are nil; every Span method accepts a
// nil receiver.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Level().Allows(scope) {
		return ctx, nil
	}
	s := &Span{
		tracer:  t,
		id:      spanID.Add(1),
		parent:  parentOf(ctx),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	record(t, KindBegin, scope, s.id, s.parent, name, "", nil)
	return context.WithValue(ctx, spanKey{}, s.id), s
}

// Set attaches an attribute reported with the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil {
		return nil
	}
	if s.attrs == nil {
		s.attrs = make(map[string]string)
	}
	s.attrs[key] = value
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	record(s.tracer, KindEnd, s.scope, s.id, s.parent, s.name, detail, s.attrs)
	return time.Since(s.started)
}

// ID is 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point records an instant event under the span in ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Level().Allows(scope) {
		return
	}
	record(t, KindPoint, scope, 0, parentOf(ctx), name, detail, nil)
}

func parentOf(ctx context.Context) uint64 {
	id, _ := ctx.Value(spanKey{}).(uint64)
	return id
}
