package directive

import (
	"fmt"
	"strings"
)

// Prefix starts every directive attribute.
const Prefix = "data-sly-"

// Signature is a directive name plus its ordered arguments, as written in
// data-sly-<name>[.<arg>...]. Signatures are immutable.
type Signature struct {
	Name string   `msgpack:"name"`
	Args []string `msgpack:"args,omitempty"`
}

// IsDirective reports whether an attribute name is a directive.
func IsDirective(attrName string) bool {
	return len(attrName) > len(Prefix) && strings.EqualFold(attrName[:len(Prefix)], Prefix)
}

// ParseSignature splits a directive attribute name into a Signature.
func ParseSignature(attrName string) (Signature, error) {
	if !IsDirective(attrName) {
		return Signature{}, fmt.Errorf("%q is not a directive attribute", attrName)
	}
	parts := strings.Split(attrName[len(Prefix):], ".")
	if parts[0] == "" {
		return Signature{}, fmt.Errorf("directive %q has no name", attrName)
	}
	sig := Signature{Name: strings.ToLower(parts[0])}
	for _, arg := range parts[1:] {
		if arg == "" {
			return Signature{}, fmt.Errorf("directive %q has an empty argument", attrName)
		}
		sig.Args = append(sig.Args, arg)
	}
	return sig, nil
}

// AttrName decodes the attribute a directive targets: arguments joined with
// '-'. ok is false when there are no arguments.
func (s Signature) AttrName() (name string, ok bool) {
	if len(s.Args) == 0 {
		return "", false
	}
	return strings.Join(s.Args, "-"), true
}

func (s Signature) String() string {
	if len(s.Args) == 0 {
		return Prefix + s.Name
	}
	return Prefix + s.Name + "." + strings.Join(s.Args, ".")
}
