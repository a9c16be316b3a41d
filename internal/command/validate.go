package command

import (
	"errors"
	"fmt"
)

type openBlock struct {
	at    int
	kind  InstrKind
	names []string
}

// Validate checks stream invariants:
//   - blocks close in LIFO order with the matching end kind and none is left open;
//   - every binding name is bound exactly once;
//   - guards, outputs and loop collections read a binding that is currently open.
func Validate(instrs []Instr) error {
	var (
		errs  []error
		stack []openBlock
		bound = make(map[string]int)
		live  = make(map[string]int)
	)

	bind := func(i int, name string) []string {
		if name == "" {
			return nil
		}
		if prev, ok := bound[name]; ok {
			errs = append(errs, fmt.Errorf("#%d: %s already bound at #%d", i, name, prev))
		}
		bound[name] = i
		live[name]++
		return []string{name}
	}
	read := func(i int, what, name string) {
		if live[name] == 0 {
			errs = append(errs, fmt.Errorf("#%d: %s reads %q outside of its binding", i, what, name))
		}
	}

	for i := range instrs {
		in := &instrs[i]
		switch in.Kind {
		case InstrVarBind:
			if in.Var == "" {
				errs = append(errs, fmt.Errorf("#%d: binding without a name", i))
			}
			if in.Expr == nil {
				errs = append(errs, fmt.Errorf("#%d: binding %s without a value", i, in.Var))
			}
		case InstrCondStart:
			read(i, "condition", in.Guard)
		case InstrLoopStart:
			read(i, "loop", in.Collection)
		case InstrOutVar:
			read(i, "output", in.Var)
		}

		if _, ok := in.Kind.opens(); ok {
			blk := openBlock{at: i, kind: in.Kind}
			switch in.Kind {
			case InstrVarBind:
				blk.names = bind(i, in.Var)
			case InstrLoopStart:
				blk.names = append(bind(i, in.Item), bind(i, in.Index)...)
			}
			stack = append(stack, blk)
			continue
		}
		if !in.Kind.closes() {
			continue
		}
		if len(stack) == 0 {
			errs = append(errs, fmt.Errorf("#%d: %s without an open block", i, in.Kind))
			continue
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if want, _ := top.kind.opens(); want != in.Kind {
			errs = append(errs, fmt.Errorf("#%d: %s closes %s opened at #%d", i, in.Kind, top.kind, top.at))
		}
		for _, name := range top.names {
			live[name]--
		}
	}

	for j := len(stack) - 1; j >= 0; j-- {
		errs = append(errs, fmt.Errorf("#%d: %s is never closed", stack[j].at, stack[j].kind))
	}
	return errors.Join(errs...)
}
