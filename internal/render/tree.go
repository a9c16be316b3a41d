package render

import (
	"fmt"

	"slyc/internal/command"
)

// block is one node of the structured form of a flat instruction stream.
type block struct {
	at   int
	in   *command.Instr
	body []*block
}

// buildTree nests the flat stream by its Start/End pairs.
func buildTree(instrs []command.Instr) ([]*block, error) {
	root := &block{at: -1}
	stack := []*block{root}
	for i := range instrs {
		in := &instrs[i]
		top := stack[len(stack)-1]
		switch in.Kind {
		case command.InstrVarBind, command.InstrCondStart, command.InstrLoopStart:
			b := &block{at: i, in: in}
			top.body = append(top.body, b)
			stack = append(stack, b)
		case command.InstrVarEnd, command.InstrCondEnd, command.InstrLoopEnd:
			if top.in == nil || !closes(top.in.Kind, in.Kind) {
				return nil, &Error{At: i, Msg: fmt.Sprintf("unexpected %s", in.Kind)}
			}
			stack = stack[:len(stack)-1]
		default:
			top.body = append(top.body, &block{at: i, in: in})
		}
	}
	if len(stack) > 1 {
		top := stack[len(stack)-1]
		return nil, &Error{At: top.at, Msg: fmt.Sprintf("unterminated %s", top.in.Kind)}
	}
	return root.body, nil
}

func closes(open, end command.InstrKind) bool {
	switch open {
	case command.InstrVarBind:
		return end == command.InstrVarEnd
	case command.InstrCondStart:
		return end == command.InstrCondEnd
	case command.InstrLoopStart:
		return end == command.InstrLoopEnd
	}
	return false
}
