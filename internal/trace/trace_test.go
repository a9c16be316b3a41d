package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestLevelAllows(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeTemplate, false},
		{LevelDetail, ScopeTemplate, true},
		{LevelDetail, ScopeElement, false},
		{LevelDebug, ScopeElement, true},
		{LevelError, ScopeDriver, false},
		{LevelOff, ScopeDriver, false},
	}
	for _, tt := range tests {
		if got := tt.level.Allows(tt.scope); got != tt.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestStreamNDJSONNestsSpans(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, LevelDetail, FormatNDJSON)
	ctx := WithTracer(context.Background(), s)

	ctx, dir := Start(ctx, ScopePhase, "compile_dir")
	tctx, tpl := Start(ctx, ScopeTemplate, "template:index.html")
	Point(tctx, ScopeElement, "element:a", "") // отфильтрован уровнем
	tpl.Set("instrs", "12").End("ok")
	dir.End("")
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), buf.String())
	}
	var end jsonEvent
	if err := json.Unmarshal([]byte(lines[2]), &end); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if end.Kind != "end" || end.Scope != "template" || end.Detail != "ok" || end.Attrs["instrs"] != "12" {
		t.Fatalf("unexpected end event %+v", end)
	}
	if end.Parent != dir.ID() || end.Span != tpl.ID() {
		t.Fatalf("template span parent = %d, want %d", end.Parent, dir.ID())
	}
}

func TestStartFilteredSpanIsNil(t *testing.T) {
	ring := NewRing(4, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	got, span := Start(ctx, ScopeTemplate, "template:x")
	if span != nil || got != ctx {
		t.Fatal("filtered span must be nil and keep ctx")
	}
	span.Set("k", "v").End("")
	if span.ID() != 0 {
		t.Fatal("nil span id must be 0")
	}
	if len(ring.Snapshot()) != 0 {
		t.Fatal("nothing should be recorded")
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRing(3, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(ctx, ScopeElement, name, "")
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Name != "b" || snap[2].Name != "d" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\u2022 d") {
		t.Fatalf("dump misses last event:\n%s", buf.String())
	}
}

func TestFanoutAndFindRing(t *testing.T) {
	a := NewRing(8, LevelDebug)
	b := NewRing(8, LevelDebug)
	f := NewFanout(LevelDebug, NewStream(&bytes.Buffer{}, LevelDebug, FormatText), a, b)
	_, span := Start(WithTracer(context.Background(), f), ScopeDriver, "compile")
	span.End("")
	if len(a.Snapshot()) != 2 || len(b.Snapshot()) != 2 {
		t.Fatal("both rings must receive both events")
	}
	if FindRing(f) != a {
		t.Fatal("FindRing must return the first ring")
	}
	if FindRing(Nop) != nil {
		t.Fatal("Nop has no ring")
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestHeartbeatReportsStatus(t *testing.T) {
	r := NewRing(16, LevelPhase)
	var calls atomic.Int32
	stop := StartHeartbeat(context.Background(), r, time.Millisecond, func() string {
		calls.Add(1)
		return "3/10 templates"
	})
	deadline := time.Now().Add(2 * time.Second)
	for len(r.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()
	snap := r.Snapshot()
	if len(snap) == 0 || calls.Load() == 0 {
		t.Fatal("expected heartbeat events")
	}
	if snap[0].Kind != KindHeartbeat || !strings.HasSuffix(snap[0].Detail, "3/10 templates") {
		t.Fatalf("unexpected heartbeat %+v", snap[0])
	}
	StartHeartbeat(context.Background(), Nop, time.Millisecond, nil)()
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr != Nop {
		t.Fatal("LevelOff must give Nop")
	}
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if FindRing(tr) == nil {
		t.Fatal("both mode must keep a ring")
	}
	if _, err := ParseFormat("chrome"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := ParseMode("file"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
