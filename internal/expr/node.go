package expr

import (
	"strconv"
	"strings"
)

// Kind enumerates operand tree node kinds.
type Kind uint8

const (
	// KindIdentifier is a reference to a variable in scope.
	KindIdentifier Kind = iota
	KindString
	KindNumber
	KindBool
	KindNull
	// KindMapLiteral is an ordered list of key/value entries.
	KindMapLiteral
	KindArrayLiteral
	// KindPropertyAccess reads Right (the property) out of Left (the target).
	KindPropertyAccess
	KindBinary
	KindUnary
	// KindRuntimeCall invokes a runtime function such as "xss" on Left with
	// named arguments in Entries.
	KindRuntimeCall
)

func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "Identifier"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	case KindNull:
		return "Null"
	case KindMapLiteral:
		return "MapLiteral"
	case KindArrayLiteral:
		return "ArrayLiteral"
	case KindPropertyAccess:
		return "PropertyAccess"
	case KindBinary:
		return "Binary"
	case KindUnary:
		return "Unary"
	case KindRuntimeCall:
		return "RuntimeCall"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Op is a unary or binary operator.
type Op uint8

const (
	OpNone Op = iota
	OpOr
	OpAnd
	// OpEq is strict equality: values of different kinds are never equal.
	OpEq
	OpNeq
	OpNot
)

func (o Op) String() string {
	switch o {
	case OpOr:
		return "||"
	case OpAnd:
		return "&&"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpNot:
		return "!"
	}
	return ""
}

// Entry is one key/value pair of a map literal.
type Entry struct {
	Key   string `msgpack:"k"`
	Value *Node  `msgpack:"v"`
}

// Node is an operand tree node. Only the fields relevant to Kind are set.
type Node struct {
	Kind    Kind    `msgpack:"kind"`
	Name    string  `msgpack:"name,omitempty"` // identifier or runtime function
	Str     string  `msgpack:"str,omitempty"`
	Num     float64 `msgpack:"num,omitempty"`
	Bool    bool    `msgpack:"bool,omitempty"`
	Op      Op      `msgpack:"op,omitempty"`
	Left    *Node   `msgpack:"left,omitempty"`
	Right   *Node   `msgpack:"right,omitempty"`
	Entries []Entry `msgpack:"entries,omitempty"`
	Items   []*Node `msgpack:"items,omitempty"`
}

func Ident(name string) *Node { return &Node{Kind: KindIdentifier, Name: name} }
func String(s string) *Node { return &Node{Kind: KindString, Str: s} }
func Number(f float64) *Node { return &Node{Kind: KindNumber, Num: f} }
func Bool(b bool) *Node { return &Node{Kind: KindBool, Bool: b} }
func Null() *Node { return &Node{Kind: KindNull} }
func Not(x *Node) *Node { return &Node{Kind: KindUnary, Op: OpNot, Left: x} }
func Or(l, r *Node) *Node { return Binary(OpOr, l, r) }
func And(l, r *Node) *Node { return Binary(OpAnd, l, r) }
func Eq(l, r *Node) *Node { return Binary(OpEq, l, r) }
func Neq(l, r *Node) *Node { return Binary(OpNeq, l, r) }
func Array(items ...*Node) *Node { return &Node{Kind: KindArrayLiteral, Items: items} }

// Binary builds a binary operation node.
func Binary(op Op, l, r *Node) *Node {
	return &Node{Kind: KindBinary, Op: op, Left: l, Right: r}
}

// Map builds a map literal keeping entries in the given order.
func Map(entries ...Entry) *Node {
	return &Node{Kind: KindMapLiteral, Entries: entries}
}

// Prop builds target[property].
func Prop(target, property *Node) *Node {
	return &Node{Kind: KindPropertyAccess, Left: target, Right: property}
}

// Member builds target.name.
func Member(target *Node, name string) *Node {
	return Prop(target, String(name))
}

// Arg is a named argument of a runtime call.
func Arg(name string, value *Node) Entry { return Entry{Key: name, Value: value} }

// Call builds name(subject, args...). Arguments without a value are dropped,
// so an absent hint simply does not appear.
func Call(name string, subject *Node, args ...Entry) *Node {
	named := make([]Entry, 0, len(args))
	for _, a := range args {
		if a.Value != nil {
			named = append(named, a)
		}
	}
	return &Node{Kind: KindRuntimeCall, Name: name, Left: subject, Entries: named}
}

// CallArg returns the named argument of a runtime call, or nil.
func (n *Node) CallArg(name string) *Node {
	if n == nil || n.Kind != KindRuntimeCall {
		return nil
	}
	for _, e := range n.Entries {
		if e.Key == name {
			return e.Value
		}
	}
	return nil
}

// IsCall reports whether n is a runtime call to name.
func (n *Node) IsCall(name string) bool {
	return n != nil && n.Kind == KindRuntimeCall && n.Name == name
}

// String renders the node in a canonical single-line form.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	switch n.Kind {
	case KindIdentifier:
		sb.WriteString(n.Name)
	case KindString:
		sb.WriteString(strconv.Quote(n.Str))
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(n.Num, 'g', -1, 64))
	case KindBool:
		sb.WriteString(strconv.FormatBool(n.Bool))
	case KindNull:
		sb.WriteString("null")
	case KindMapLiteral:
		sb.WriteByte('{')
		for i, e := range n.Entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(e.Key))
			sb.WriteString(": ")
			e.Value.write(sb)
		}
		sb.WriteByte('}')
	case KindArrayLiteral:
		sb.WriteByte('[')
		writeList(sb, n.Items)
		sb.WriteByte(']')
	case KindPropertyAccess:
		n.Left.write(sb)
		if n.Right != nil && n.Right.Kind == KindString && isIdent(n.Right.Str) {
			sb.WriteByte('.')
			sb.WriteString(n.Right.Str)
			return
		}
		sb.WriteByte('[')
		n.Right.write(sb)
		sb.WriteByte(']')
	case KindBinary:
		sb.WriteByte('(')
		n.Left.write(sb)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		n.Right.write(sb)
		sb.WriteByte(')')
	case KindUnary:
		sb.WriteString(n.Op.String())
		n.Left.write(sb)
	case KindRuntimeCall:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		if n.Left != nil {
			n.Left.write(sb)
		}
		for i, e := range n.Entries {
			if i > 0 || n.Left != nil {
				sb.WriteString(", ")
			}
			sb.WriteString(e.Key)
			sb.WriteByte('=')
			e.Value.write(sb)
		}
		sb.WriteByte(')')
	default:
		sb.WriteString(n.Kind.String())
	}
}

func writeList(sb *strings.Builder, items []*Node) {
	for i, it := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		it.write(sb)
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isIdentStart(c) || (i > 0 && isDigit(c)) {
			continue
		}
		return false
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
