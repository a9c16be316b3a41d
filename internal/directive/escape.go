package directive

import (
	"slyc/internal/expr"
	"slyc/internal/markup"
)

// RuntimeXSS is the runtime function that escapes a value for a markup
// context: xss(value, context=..., hint=...). hint is optional.
const RuntimeXSS = "xss"

// Named arguments of RuntimeXSS.
const (
	ArgContext = "context"
	ArgHint    = "hint"
)

// XSSCall builds the explicit sanitization call; a nil hint is left out.
func XSSCall(node, context, hint *expr.Node) *expr.Node {
	return expr.Call(RuntimeXSS, node, expr.Arg(ArgContext, context), expr.Arg(ArgHint, hint))
}

// escapeWithHint escapes node for mc. A hint (usually the attribute name)
// forces an explicit xss call; without one the context's default adjustment
// is used.
func escapeWithHint(ctx Context, node *expr.Node, mc markup.Context, hint *expr.Node) *expr.Node {
	if hint != nil {
		return XSSCall(node, expr.String(mc.String()), hint)
	}
	return ctx.AdjustToContext(node, mc, markup.ExprAttribute)
}

// displayGuard is true when an attribute should be written at all: the escaped
// value is truthy, or the raw value is the literal string "false".
func displayGuard(escapedVar, rawVar string) *expr.Node {
	return expr.Or(
		expr.Ident(escapedVar),
		expr.Eq(expr.String("false"), expr.Ident(rawVar)),
	)
}

// isTrue is the strict raw == true test that collapses to a bare name.
func isTrue(rawVar string) *expr.Node {
	return expr.Eq(expr.Ident(rawVar), expr.Bool(true))
}
