// Package symbols hands out the generated variable names used by compiled
// template code.
package symbols

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Var is one generated variable.
type Var struct {
	ID     VarID
	Name   string
	Prefix string
}

// Allocator produces fresh variable names of the form var_<prefix><n>. Names
// are unique within one allocator; one allocator serves one compilation unit
// and is not safe for concurrent use.
type Allocator struct {
	vars     []Var // vars[0] зарезервирован под NoVarID
	byName   map[string]VarID
	reserved map[string]struct{}
}

func NewAllocator() *Allocator {
	return &Allocator{
		vars:     make([]Var, 1, 32),
		byName:   make(map[string]VarID),
		reserved: make(map[string]struct{}),
	}
}

// Reserve marks name as taken, e.g. a template-level identifier that
// generated names must not shadow.
func (a *Allocator) Reserve(name string) {
	a.reserved[name] = struct{}{}
}

// Fresh allocates a new variable and returns its name.
func (a *Allocator) Fresh(prefix string) string {
	return a.FreshVar(prefix).Name
}

// FreshVar allocates a new variable.
func (a *Allocator) FreshVar(prefix string) Var {
	base := "var_" + sanitize(prefix)
	n := len(a.vars) - 1
	name := base + strconv.Itoa(n)
	for a.taken(name) {
		n++
		name = base + strconv.Itoa(n)
	}
	id, err := safecast.Conv[uint32](len(a.vars))
	if err != nil {
		panic(fmt.Errorf("variable count overflow: %w", err))
	}
	v := Var{ID: VarID(id), Name: name, Prefix: prefix}
	a.vars = append(a.vars, v)
	a.byName[name] = v.ID
	return v
}

func (a *Allocator) taken(name string) bool {
	if _, ok := a.byName[name]; ok {
		return true
	}
	_, ok := a.reserved[name]
	return ok
}

// Lookup returns the variable allocated under name.
func (a *Allocator) Lookup(name string) (Var, bool) {
	id, ok := a.byName[name]
	if !ok {
		return Var{}, false
	}
	return a.vars[id], true
}

// Len returns the number of allocated variables.
func (a *Allocator) Len() int {
	return len(a.vars) - 1
}

// Vars returns allocated variables in allocation order.
func (a *Allocator) Vars() []Var {
	return append([]Var(nil), a.vars[1:]...)
}

func sanitize(prefix string) string {
	var sb strings.Builder
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
