package trace

import "time"

// Kind is the type of an event.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is the granularity of an event. Smaller is coarser.
type Scope uint8

const (
	ScopeDriver   Scope = iota + 1 // cli command
	ScopePhase                     // compile_dir, render
	ScopeTemplate                  // one template file
	ScopeElement                   // one element in the directive runner
)

var scopeNames = [...]string{"unknown", "driver", "phase", "template", "element"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is a single trace record.
type Event struct {
	Time   time.Time
	Seq    uint64
	Kind   Kind
	Scope  Scope
	Span   uint64 // 0 for points and heartbeats
	Parent uint64
	Name   string // "compile", "template:pages/index.html", "element:a"
	Detail string
	Attrs  map[string]string
}
