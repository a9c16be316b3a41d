package directive

import (
	"slyc/internal/command"
	"slyc/internal/expr"
	"slyc/internal/markup"
)

// multiAttribute compiles data-sly-attribute="${map}": every map entry
// becomes an attribute unless the element already produced it.
type multiAttribute struct {
	ctx     Context
	attrMap *expr.Node
	mapVar  string

	beforeCall bool

	// ignored растёт на фазе атрибутов и замораживается в AfterAttributes
	ignored      map[string]bool
	ignoredOrder []string
}

func newMultiAttribute(ctx Context, e *expr.Expression) *multiAttribute {
	return &multiAttribute{
		ctx:        ctx,
		attrMap:    e.Root,
		mapVar:     ctx.NewVar("attrMap"),
		beforeCall: true,
		ignored:    make(map[string]bool),
	}
}

func (p *multiAttribute) ignore(name string) {
	if p.ignored[name] {
		return
	}
	p.ignored[name] = true
	p.ignoredOrder = append(p.ignoredOrder, name)
}

// Ignored returns the names the generated loop skips, in the order they were
// recorded.
func (p *multiAttribute) Ignored() []string {
	return append([]string(nil), p.ignoredOrder...)
}

func (p *multiAttribute) BeforeAttributes(s command.Stream) {
	s.Write(command.VarBind(p.mapVar, p.attrMap))
}

func (p *multiAttribute) BeforeAttribute(s command.Stream, name string) {
	p.ignore(name)
	if !p.beforeCall {
		return
	}
	nameVar := p.ctx.NewVar("attrName_" + name)
	valueVar := p.ctx.NewVar("mapContains_" + name)
	s.Write(command.VarBind(nameVar, expr.String(name)))
	s.Write(command.VarBind(valueVar, p.valueOf(expr.String(name))))
	p.writeAttribute(s, nameVar, valueVar)
	// нативный атрибут пишется, только если в карте нет значения
	exists := p.ctx.NewVar("varExists")
	s.Write(command.VarBind(exists, expr.Neq(expr.Ident(valueVar), expr.Null())))
	s.Write(command.CondStart(exists, true))
}

func (p *multiAttribute) BeforeAttributeValue(command.Stream, string, *expr.Node) {}

func (p *multiAttribute) AfterAttributeValue(command.Stream, string) {}

func (p *multiAttribute) AfterAttribute(s command.Stream, _ string) {
	if !p.beforeCall {
		return
	}
	s.Write(command.CondEnd())
	s.Write(command.VarEnd())
	s.Write(command.VarEnd())
	s.Write(command.VarEnd())
}

func (p *multiAttribute) OnPluginCall(_ command.Stream, sig Signature, _ *expr.Expression) {
	if sig.Name != Name {
		return
	}
	name, ok := sig.AttrName()
	if !ok {
		p.beforeCall = false
		return
	}
	if !p.beforeCall {
		p.ignore(name)
	}
}

func (p *multiAttribute) AfterAttributes(s command.Stream) {
	entries := make([]expr.Entry, 0, len(p.ignoredOrder))
	for _, name := range p.ignoredOrder {
		entries = append(entries, expr.Entry{Key: name, Value: expr.Bool(true)})
	}
	ignoredVar := p.ctx.NewVar("ignoredAttributes")
	s.Write(command.VarBind(ignoredVar, expr.Map(entries...)))

	nameVar := p.ctx.NewVar("attrName")
	escapedName := p.ctx.NewVar("attrNameEscaped")
	indexVar := p.ctx.NewVar("attrIndex")
	s.Write(command.LoopStart(p.mapVar, nameVar, indexVar))
	s.Write(command.VarBind(escapedName, escapeWithHint(p.ctx, expr.Ident(nameVar), markup.AttributeName, nil)))
	s.Write(command.CondStart(escapedName, false))

	isIgnored := p.ctx.NewVar("isIgnoredAttr")
	s.Write(command.VarBind(isIgnored, expr.Prop(expr.Ident(ignoredVar), expr.Ident(nameVar))))
	s.Write(command.CondStart(isIgnored, true))

	content := p.ctx.NewVar("attrContent")
	s.Write(command.VarBind(content, p.valueOf(expr.Ident(nameVar))))
	p.writeAttribute(s, escapedName, content)

	s.Write(command.VarEnd()) // attrContent
	s.Write(command.CondEnd())
	s.Write(command.VarEnd()) // isIgnoredAttr
	s.Write(command.CondEnd())
	s.Write(command.VarEnd()) // attrNameEscaped
	s.Write(command.LoopEnd())
	s.Write(command.VarEnd()) // ignoredAttributes
	s.Write(command.VarEnd()) // attrMap
}

// writeAttribute writes ` name="value"`, a bare name for true, or nothing.
func (p *multiAttribute) writeAttribute(s command.Stream, nameVar, contentVar string) {
	escaped := p.ctx.NewVar("attrContentEscaped")
	show := p.ctx.NewVar("shouldDisplayAttr")
	s.Write(command.VarBind(escaped, escapeWithHint(p.ctx, expr.Ident(contentVar), markup.Attribute, expr.Ident(nameVar))))
	s.Write(command.VarBind(show, displayGuard(escaped, contentVar)))
	s.Write(command.CondStart(show, false))
	s.Write(command.Text(" "))
	s.Write(command.Output(nameVar))

	isTrueVar := p.ctx.NewVar("isTrueAttr")
	s.Write(command.VarBind(isTrueVar, isTrue(contentVar)))
	s.Write(command.CondStart(isTrueVar, true))
	s.Write(command.Text(`="`))
	s.Write(command.Output(escaped))
	s.Write(command.Text(`"`))
	s.Write(command.CondEnd())
	s.Write(command.VarEnd())

	s.Write(command.CondEnd())
	s.Write(command.VarEnd())
	s.Write(command.VarEnd())
}

func (p *multiAttribute) valueOf(name *expr.Node) *expr.Node {
	return expr.Prop(expr.Ident(p.mapVar), name)
}
