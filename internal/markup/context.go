// Package markup names the positions a dynamic value can occupy in an HTML
// document and the syntactic origin of the expression producing it.
package markup

import "fmt"

// Context is the markup position a value is written into. It selects the
// escaping applied by the runtime "xss" call.
type Context uint8

const (
	// Text is plain text content of an element.
	Text Context = iota
	// HTML is markup that must be sanitized, not escaped.
	HTML
	// Attribute is a double-quoted attribute value.
	Attribute
	// AttributeName is the name part of an attribute.
	AttributeName
	ElementName
	URI
	Number
	ScriptToken
	ScriptString
	ScriptComment
	StyleToken
	StyleString
	StyleComment
	Comment
	// Unsafe disables escaping altogether.
	Unsafe
)

var contextNames = [...]string{
	Text:          "text",
	HTML:          "html",
	Attribute:     "attribute",
	AttributeName: "attributeName",
	ElementName:   "elementName",
	URI:           "uri",
	Number:        "number",
	ScriptToken:   "scriptToken",
	ScriptString:  "scriptString",
	ScriptComment: "scriptComment",
	StyleToken:    "styleToken",
	StyleString:   "styleString",
	StyleComment:  "styleComment",
	Comment:       "comment",
	Unsafe:        "unsafe",
}

// String returns the wire name used in runtime calls and in the "context"
// expression option.
func (c Context) String() string {
	if int(c) < len(contextNames) {
		return contextNames[c]
	}
	return fmt.Sprintf("Context(%d)", uint8(c))
}

// ParseContext maps a wire name back to a Context.
func ParseContext(name string) (Context, error) {
	for i, n := range contextNames {
		if n == name {
			return Context(i), nil
		}
	}
	return 0, fmt.Errorf("unknown markup context %q", name)
}

// ExprContext records where an expression appeared in the template.
type ExprContext uint8

const (
	ExprText ExprContext = iota
	ExprAttribute
	ExprElement
	// ExprPluginAttribute is a directive value on an attribute-level plugin.
	ExprPluginAttribute
	ExprPluginText
	ExprPluginElement
)

func (e ExprContext) String() string {
	switch e {
	case ExprText:
		return "text"
	case ExprAttribute:
		return "attribute"
	case ExprElement:
		return "element"
	case ExprPluginAttribute:
		return "pluginAttribute"
	case ExprPluginText:
		return "pluginText"
	case ExprPluginElement:
		return "pluginElement"
	}
	return fmt.Sprintf("ExprContext(%d)", uint8(e))
}

// IsPlugin reports whether the expression is a directive value. Plugin values
// are consumed by the directive itself and are never escaped implicitly.
func (e ExprContext) IsPlugin() bool {
	return e >= ExprPluginAttribute
}
