package directive

import (
	"slyc/internal/diag"
	"slyc/internal/expr"
	"slyc/internal/markup"
	"slyc/internal/source"
	"slyc/internal/symbols"
)

// Context is what a plugin gets from the compiler: fresh variable names, the
// default escaping transform and a warning sink.
type Context interface {
	Vars() *symbols.Allocator
	NewVar(prefix string) string
	// AdjustToContext wraps node so that it is safe for mc when it comes from
	// an expression of kind ec.
	AdjustToContext(node *expr.Node, mc markup.Context, ec markup.ExprContext) *expr.Node
	Warn(message, sourceText string)
}

// GenContext is the Context of one compilation unit.
type GenContext struct {
	vars     *symbols.Allocator
	reporter diag.Reporter
	span     source.Span
}

func NewGenContext(vars *symbols.Allocator, reporter diag.Reporter) *GenContext {
	if vars == nil {
		vars = symbols.NewAllocator()
	}
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &GenContext{vars: vars, reporter: reporter}
}

// At returns a view of the context whose warnings point at sp.
func (c *GenContext) At(sp source.Span) *GenContext {
	cp := *c
	cp.span = sp
	return &cp
}

func (c *GenContext) Vars() *symbols.Allocator { return c.vars }

func (c *GenContext) NewVar(prefix string) string {
	return c.vars.Fresh(prefix)
}

func (c *GenContext) AdjustToContext(node *expr.Node, mc markup.Context, ec markup.ExprContext) *expr.Node {
	// значения директив плагин экранирует сам
	if ec.IsPlugin() || mc == markup.Unsafe {
		return node
	}
	return XSSCall(node, expr.String(mc.String()), nil)
}

func (c *GenContext) Warn(message, sourceText string) {
	b := diag.ReportWarning(c.reporter, diag.DirPluginWarning, c.span, message)
	if sourceText != "" {
		b.WithNote(c.span, sourceText)
	}
	b.Emit()
}
