package directive

import (
	"fmt"
	"regexp"

	"slyc/internal/command"
	"slyc/internal/expr"
)

// Name is the directive name handled by Attribute.
const Name = "attribute"

// denied are attributes data-sly-attribute must never generate.
var denied = regexp.MustCompile(`^(style|on.*)$`)

// Attribute is the data-sly-attribute directive. With arguments it sets one
// attribute (data-sly-attribute.href), without them it spreads a map.
type Attribute struct {
	name     string
	hasName  bool
	valid    bool
	delegate Plugin // singleAttribute или multiAttribute
}

// NewAttribute builds the directive for one occurrence on one element. A
// denied attribute name is reported here, once, as a warning.
func NewAttribute(sig Signature, ctx Context, e *expr.Expression) *Attribute {
	a := &Attribute{valid: true}
	a.name, a.hasName = sig.AttrName()
	if !a.hasName {
		a.delegate = newMultiAttribute(ctx, e)
		return a
	}
	a.delegate = newSingleAttribute(ctx, e, a.name)
	if denied.MatchString(a.name) {
		a.valid = false
		raw := ""
		if e != nil {
			raw = e.RawText
		}
		ctx.Warn(fmt.Sprintf(
			"sensitive attribute (%s) detected: event attributes (on*) and the style attribute "+
				"cannot be generated with data-sly-attribute; output a dynamic value for it with an "+
				"expression that declares an appropriate context", a.name), raw)
	}
	return a
}

// AttrName returns the attribute a single-attribute directive targets.
func (a *Attribute) AttrName() (string, bool) { return a.name, a.hasName }

// Valid reports whether the directive may run.
func (a *Attribute) Valid() bool { return a.valid }

// Ignored returns the Ignored-Attributes of a map directive, nil otherwise.
func (a *Attribute) Ignored() []string {
	if m, ok := a.delegate.(*multiAttribute); ok {
		return m.Ignored()
	}
	return nil
}

func (a *Attribute) BeforeAttributes(s command.Stream) {
	a.delegate.BeforeAttributes(s)
}

func (a *Attribute) BeforeAttribute(s command.Stream, name string) {
	a.delegate.BeforeAttribute(s, name)
}

func (a *Attribute) BeforeAttributeValue(s command.Stream, name string, value *expr.Node) {
	a.delegate.BeforeAttributeValue(s, name, value)
}

func (a *Attribute) AfterAttributeValue(s command.Stream, name string) {
	a.delegate.AfterAttributeValue(s, name)
}

func (a *Attribute) AfterAttribute(s command.Stream, name string) {
	a.delegate.AfterAttribute(s, name)
}

func (a *Attribute) AfterAttributes(s command.Stream) {
	a.delegate.AfterAttributes(s)
}

func (a *Attribute) OnPluginCall(s command.Stream, sig Signature, e *expr.Expression) {
	a.delegate.OnPluginCall(s, sig, e)
}
