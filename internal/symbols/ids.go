package symbols

// VarID identifies a generated variable inside one Allocator.
type VarID uint32

const (
	// NoVarID marks the absence of a variable reference.
	NoVarID VarID = 0
)

// IsValid reports whether the ID refers to an allocated variable.
func (id VarID) IsValid() bool { return id != NoVarID }
