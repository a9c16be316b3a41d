package directive

import (
	"slyc/internal/command"
	"slyc/internal/expr"
	"slyc/internal/markup"
)

// singleAttribute compiles data-sly-attribute.<name>.
type singleAttribute struct {
	name string
	node *expr.Node

	// writeAtEnd остаётся true, пока атрибут не встретился среди нативных
	writeAtEnd bool
	// beforeCall сбрасывается явным вызовом attribute.<name>
	beforeCall bool

	attrValue    string
	escapedValue string
	isTrueValue  string
	shouldShow   string
	contentNode  *expr.Node
}

func newSingleAttribute(ctx Context, e *expr.Expression, name string) *singleAttribute {
	p := &singleAttribute{
		name:         name,
		node:         e.Root,
		writeAtEnd:   true,
		beforeCall:   true,
		attrValue:    ctx.NewVar("attrValue_" + name),
		escapedValue: ctx.NewVar("attrValueEscaped_" + name),
		isTrueValue:  ctx.NewVar("isTrueValue_" + name),
		shouldShow:   ctx.NewVar("shouldDisplayAttr_" + name),
	}
	raw := expr.Ident(p.attrValue)
	hint := expr.String(name)
	if mc := e.Option(expr.OptContext); mc != nil {
		p.contentNode = XSSCall(raw, mc, hint)
	} else {
		p.contentNode = escapeWithHint(ctx, raw, markup.Attribute, hint)
	}
	return p
}

func (p *singleAttribute) BeforeAttributes(command.Stream) {}

func (p *singleAttribute) BeforeAttribute(s command.Stream, name string) {
	if name != p.name {
		return
	}
	if p.beforeCall {
		p.emitStart(s)
	}
	p.writeAtEnd = false
}

func (p *singleAttribute) BeforeAttributeValue(s command.Stream, name string, _ *expr.Node) {
	if name == p.name && p.beforeCall {
		p.emitWrite(s)
		s.BeginIgnore()
	}
}

func (p *singleAttribute) AfterAttributeValue(s command.Stream, name string) {
	if name == p.name && p.beforeCall {
		s.EndIgnore()
	}
}

func (p *singleAttribute) AfterAttribute(s command.Stream, name string) {
	if name == p.name && p.beforeCall {
		p.emitEnd(s)
	}
}

func (p *singleAttribute) AfterAttributes(s command.Stream) {
	if !p.writeAtEnd {
		return
	}
	p.emitStart(s)
	s.Write(command.Text(" " + p.name))
	p.emitWrite(s)
	p.emitEnd(s)
}

func (p *singleAttribute) OnPluginCall(_ command.Stream, sig Signature, _ *expr.Expression) {
	if sig.Name != Name {
		return
	}
	if name, ok := sig.AttrName(); ok && name == p.name {
		p.beforeCall = false
	}
}

func (p *singleAttribute) emitStart(s command.Stream) {
	s.Write(command.VarBind(p.attrValue, p.node))
	s.Write(command.VarBind(p.escapedValue, p.contentNode))
	s.Write(command.VarBind(p.shouldShow, displayGuard(p.escapedValue, p.attrValue)))
	s.Write(command.CondStart(p.shouldShow, false))
}

func (p *singleAttribute) emitWrite(s command.Stream) {
	s.Write(command.VarBind(p.isTrueValue, isTrue(p.attrValue)))
	s.Write(command.CondStart(p.isTrueValue, true))
	s.Write(command.Text(`="`))
	s.Write(command.Output(p.escapedValue))
	s.Write(command.Text(`"`))
	s.Write(command.CondEnd())
	s.Write(command.VarEnd())
}

func (p *singleAttribute) emitEnd(s command.Stream) {
	s.Write(command.CondEnd())
	s.Write(command.VarEnd())
	s.Write(command.VarEnd())
	s.Write(command.VarEnd())
}
