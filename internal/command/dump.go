package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes a human-readable, indented listing of instrs.
func Dump(w io.Writer, instrs []Instr) error {
	depth := 0
	for i := range instrs {
		in := &instrs[i]
		if in.Kind.closes() && depth > 0 {
			depth--
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), formatInstr(in)); err != nil {
			return err
		}
		if _, ok := in.Kind.opens(); ok {
			depth++
		}
	}
	return nil
}

// DumpString is Dump into a string.
func DumpString(instrs []Instr) string {
	var sb strings.Builder
	_ = Dump(&sb, instrs)
	return sb.String()
}

func formatInstr(in *Instr) string {
	switch in.Kind {
	case InstrVarBind:
		return fmt.Sprintf("bind %s = %s", in.Var, in.Expr)
	case InstrVarEnd:
		return "end bind"
	case InstrCondStart:
		if in.Negate {
			return "if !" + in.Guard
		}
		return "if " + in.Guard
	case InstrCondEnd:
		return "end if"
	case InstrLoopStart:
		return fmt.Sprintf("loop %s as %s, %s", in.Collection, in.Item, in.Index)
	case InstrLoopEnd:
		return "end loop"
	case InstrOutText:
		return "text " + strconv.Quote(in.Text)
	case InstrOutVar:
		return "out " + in.Var
	}
	return in.Kind.String()
}
