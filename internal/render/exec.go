// Package render is the reference backend: it executes a compiled
// instruction stream against data and writes HTML.
package render

import (
	"bufio"
	"fmt"
	"io"

	"slyc/internal/command"
	"slyc/internal/expr"
)

// Error is a runtime failure at instruction At.
type Error struct {
	At  int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("render: #%d: %s", e.At, e.Msg)
}

// Func is a runtime function callable from expressions. subject is the
// evaluated first operand; args holds the evaluated named arguments.
type Func func(subject any, args map[string]any) (any, error)

// Options configures execution.
type Options struct {
	// Funcs extends or overrides the runtime function table.
	Funcs map[string]Func
}

type scope struct {
	vars   map[string]any
	parent *scope
}

func (s *scope) lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

type machine struct {
	w     *bufio.Writer
	data  *Map
	funcs map[string]Func
}

// Exec renders program with data. Identifiers not bound by the program are
// looked up in data.
func Exec(w io.Writer, program *command.Program, data *Map) error {
	return ExecInstrs(w, program.Instrs, data, Options{})
}

// ExecInstrs renders a bare instruction stream.
func ExecInstrs(w io.Writer, instrs []command.Instr, data *Map, opts Options) error {
	tree, err := buildTree(instrs)
	if err != nil {
		return err
	}
	if data == nil {
		data = NewMap()
	}
	m := &machine{
		w:     bufio.NewWriter(w),
		data:  data,
		funcs: defaultFuncs(),
	}
	for name, f := range opts.Funcs {
		m.funcs[name] = f
	}
	if err := m.run(tree, &scope{vars: map[string]any{}}); err != nil {
		return err
	}
	return m.w.Flush()
}

func (m *machine) run(blocks []*block, sc *scope) error {
	for _, b := range blocks {
		if err := m.step(b, sc); err != nil {
			return err
		}
	}
	return nil
}

func (m *machine) step(b *block, sc *scope) error {
	in := b.in
	switch in.Kind {
	case command.InstrOutText:
		_, err := m.w.WriteString(in.Text)
		return err
	case command.InstrOutVar:
		v, _ := sc.lookup(in.Var)
		_, err := m.w.WriteString(ToString(v))
		return err
	case command.InstrVarBind:
		v, err := m.eval(in.Expr, sc)
		if err != nil {
			return &Error{At: b.at, Msg: err.Error()}
		}
		return m.run(b.body, &scope{vars: map[string]any{in.Var: v}, parent: sc})
	case command.InstrCondStart:
		v, _ := sc.lookup(in.Guard)
		if Truthy(v) != in.Negate {
			return m.run(b.body, sc)
		}
		return nil
	case command.InstrLoopStart:
		coll, _ := sc.lookup(in.Collection)
		return m.loop(b, coll, sc)
	}
	return &Error{At: b.at, Msg: fmt.Sprintf("unexpected %s", in.Kind)}
}

func (m *machine) loop(b *block, coll any, sc *scope) error {
	iter := func(i int, item any) error {
		vars := map[string]any{b.in.Item: item}
		if b.in.Index != "" {
			vars[b.in.Index] = float64(i)
		}
		return m.run(b.body, &scope{vars: vars, parent: sc})
	}
	switch c := coll.(type) {
	case *Map:
		for i, k := range c.Keys() {
			if err := iter(i, k); err != nil {
				return err
			}
		}
	case []any:
		for i, item := range c {
			if err := iter(i, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *machine) eval(n *expr.Node, sc *scope) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case expr.KindIdentifier:
		if v, ok := sc.lookup(n.Name); ok {
			return v, nil
		}
		v, _ := m.data.Get(n.Name)
		return v, nil
	case expr.KindString:
		return n.Str, nil
	case expr.KindNumber:
		return n.Num, nil
	case expr.KindBool:
		return n.Bool, nil
	case expr.KindNull:
		return nil, nil
	case expr.KindMapLiteral:
		out := NewMap()
		for _, e := range n.Entries {
			v, err := m.eval(e.Value, sc)
			if err != nil {
				return nil, err
			}
			out.Set(e.Key, v)
		}
		return out, nil
	case expr.KindArrayLiteral:
		items := make([]any, 0, len(n.Items))
		for _, it := range n.Items {
			v, err := m.eval(it, sc)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case expr.KindPropertyAccess:
		target, err := m.eval(n.Left, sc)
		if err != nil {
			return nil, err
		}
		prop, err := m.eval(n.Right, sc)
		if err != nil {
			return nil, err
		}
		return property(target, prop), nil
	case expr.KindBinary:
		return m.evalBinary(n, sc)
	case expr.KindUnary:
		v, err := m.eval(n.Left, sc)
		if err != nil {
			return nil, err
		}
		return !Truthy(v), nil
	case expr.KindRuntimeCall:
		f, ok := m.funcs[n.Name]
		if !ok {
			return nil, fmt.Errorf("unknown runtime function %q", n.Name)
		}
		var subject any
		if n.Left != nil {
			v, err := m.eval(n.Left, sc)
			if err != nil {
				return nil, err
			}
			subject = v
		}
		args := make(map[string]any, len(n.Entries))
		for _, e := range n.Entries {
			v, err := m.eval(e.Value, sc)
			if err != nil {
				return nil, err
			}
			args[e.Key] = v
		}
		return f(subject, args)
	}
	return nil, fmt.Errorf("cannot evaluate %s", n.Kind)
}

func (m *machine) evalBinary(n *expr.Node, sc *scope) (any, error) {
	l, err := m.eval(n.Left, sc)
	if err != nil {
		return nil, err
	}
	// || и && возвращают операнд, а не bool
	switch n.Op {
	case expr.OpOr:
		if Truthy(l) {
			return l, nil
		}
		return m.eval(n.Right, sc)
	case expr.OpAnd:
		if !Truthy(l) {
			return l, nil
		}
		return m.eval(n.Right, sc)
	}
	r, err := m.eval(n.Right, sc)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case expr.OpEq:
		return StrictEqual(l, r), nil
	case expr.OpNeq:
		return !StrictEqual(l, r), nil
	}
	return nil, fmt.Errorf("unsupported operator %s", n.Op)
}

func property(target, prop any) any {
	switch t := target.(type) {
	case *Map:
		v, _ := t.Get(ToString(prop))
		return v
	case []any:
		if f, ok := toFloat(prop); ok {
			i := int(f)
			if i >= 0 && i < len(t) && float64(i) == f {
				return t[i]
			}
		}
		if s, ok := prop.(string); ok && s == "length" {
			return float64(len(t))
		}
	case string:
		if s, ok := prop.(string); ok && s == "length" {
			return float64(len(t))
		}
	}
	return nil
}

func defaultFuncs() map[string]Func {
	return map[string]Func{
		"xss": func(v any, args map[string]any) (any, error) {
			context, ok := args["context"].(string)
			if !ok {
				return nil, fmt.Errorf("xss: context must be a string, got %T", args["context"])
			}
			return XSS(v, context, ToString(args["hint"]))
		},
	}
}
