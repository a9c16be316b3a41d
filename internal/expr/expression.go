package expr

import (
	"slices"

	"slyc/internal/source"
)

// Expression is a parsed ${...} value: the operand tree plus named options.
// Expressions are shared by pointer and never mutated after parsing.
type Expression struct {
	Root    *Node            `msgpack:"root"`
	Options map[string]*Node `msgpack:"options,omitempty"`
	RawText string           `msgpack:"raw"`
	Span    source.Span      `msgpack:"span"`
}

// OptContext is the option selecting an explicit markup context.
const OptContext = "context"

func (e *Expression) HasOption(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.Options[name]
	return ok
}

// Option returns the option value, or nil when absent.
func (e *Expression) Option(name string) *Node {
	if e == nil {
		return nil
	}
	return e.Options[name]
}

// OptionNames returns option names in sorted order.
func (e *Expression) OptionNames() []string {
	names := make([]string, 0, len(e.Options))
	for name := range e.Options {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// WithRoot returns a copy of e whose root is replaced by root.
func (e *Expression) WithRoot(root *Node) *Expression {
	cp := *e
	cp.Root = root
	return &cp
}
