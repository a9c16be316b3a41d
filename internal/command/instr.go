// Package command defines the instruction stream produced by template
// compilation and consumed by a rendering backend.
package command

import "slyc/internal/expr"

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrVarBind binds Var to the value of Expr until the matching InstrVarEnd.
	InstrVarBind InstrKind = iota
	InstrVarEnd
	// InstrCondStart runs its body when truthiness(Guard) != Negate.
	InstrCondStart
	InstrCondEnd
	// InstrLoopStart iterates Collection binding Item and Index.
	InstrLoopStart
	InstrLoopEnd
	// InstrOutText writes Text verbatim.
	InstrOutText
	// InstrOutVar writes the string value of Var.
	InstrOutVar
)

func (k InstrKind) String() string {
	switch k {
	case InstrVarBind:
		return "VarBind"
	case InstrVarEnd:
		return "VarEnd"
	case InstrCondStart:
		return "CondStart"
	case InstrCondEnd:
		return "CondEnd"
	case InstrLoopStart:
		return "LoopStart"
	case InstrLoopEnd:
		return "LoopEnd"
	case InstrOutText:
		return "OutText"
	case InstrOutVar:
		return "OutVar"
	}
	return "Unknown"
}

// Instr is one instruction. Only the fields relevant to Kind are set.
type Instr struct {
	Kind InstrKind `msgpack:"kind"`

	Var  string     `msgpack:"var,omitempty"`
	Expr *expr.Node `msgpack:"expr,omitempty"`

	Guard  string `msgpack:"guard,omitempty"`
	Negate bool   `msgpack:"negate,omitempty"`

	Collection string `msgpack:"coll,omitempty"`
	Item       string `msgpack:"item,omitempty"`
	Index      string `msgpack:"index,omitempty"`

	Text string `msgpack:"text,omitempty"`
}

// VarBind opens a variable binding.
func VarBind(name string, value *expr.Node) Instr {
	return Instr{Kind: InstrVarBind, Var: name, Expr: value}
}

func VarEnd() Instr { return Instr{Kind: InstrVarEnd} }

// CondStart opens a conditional on the generated variable guard.
func CondStart(guard string, negate bool) Instr {
	return Instr{Kind: InstrCondStart, Guard: guard, Negate: negate}
}

func CondEnd() Instr { return Instr{Kind: InstrCondEnd} }

// LoopStart opens a loop over collection. For maps item is bound to each key.
func LoopStart(collection, item, index string) Instr {
	return Instr{Kind: InstrLoopStart, Collection: collection, Item: item, Index: index}
}

func LoopEnd() Instr { return Instr{Kind: InstrLoopEnd} }

func Text(s string) Instr { return Instr{Kind: InstrOutText, Text: s} }

// Output writes the value bound to name.
func Output(name string) Instr { return Instr{Kind: InstrOutVar, Var: name} }

// opens reports whether k starts a block and which kind closes it.
func (k InstrKind) opens() (InstrKind, bool) {
	switch k {
	case InstrVarBind:
		return InstrVarEnd, true
	case InstrCondStart:
		return InstrCondEnd, true
	case InstrLoopStart:
		return InstrLoopEnd, true
	}
	return 0, false
}

func (k InstrKind) closes() bool {
	return k == InstrVarEnd || k == InstrCondEnd || k == InstrLoopEnd
}
