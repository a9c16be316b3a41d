package driver

import (
	"fmt"
	"strings"

	xhtml "golang.org/x/net/html"

	"slyc/internal/command"
	"slyc/internal/diag"
	"slyc/internal/directive"
	"slyc/internal/expr"
	"slyc/internal/source"
	"slyc/internal/trace"
)

// startTag compiles a start tag. Tags without directives or expressions are
// copied verbatim.
func (c *templateCompiler) startTag(z *xhtml.Tokenizer, raw []byte, at int, selfClosing bool) {
	name, hasAttr := z.TagName()
	tag := lowerTag(name)
	var attrs []xhtml.Attribute
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attrs = append(attrs, xhtml.Attribute{Key: string(key), Val: string(val)})
	}

	dynamic := false
	for _, a := range attrs {
		if directive.IsDirective(a.Key) || expr.HasExpression(a.Val) {
			dynamic = true
			break
		}
	}
	if !dynamic {
		c.stream.Write(command.Text(string(raw)))
		return
	}

	el := c.buildElement(tag, attrs, raw, at)
	c.stream.Write(command.Text("<" + tag))
	res := c.runner.Run(c.stream, el)
	if selfClosing {
		c.stream.Write(command.Text("/>"))
	} else {
		c.stream.Write(command.Text(">"))
	}

	c.stats.Elements++
	c.stats.Directives += res.Plugins
	trace.Point(c.ctx, trace.ScopeElement, "element:"+tag,
		fmt.Sprintf("directives=%d dropped=%d attrs=%d", res.Plugins, res.Dropped, res.Attrs))
}

// buildElement splits attributes into native ones and directive calls.
func (c *templateCompiler) buildElement(tag string, attrs []xhtml.Attribute, raw []byte, at int) *directive.Element {
	tagSpan := c.span(at, at+len(raw))
	el := &directive.Element{Tag: tag, Span: tagSpan}

	locs := scanTagAttrs(raw)
	if len(locs) != len(attrs) {
		locs = nil
	}
	spans := func(i int) sourceSpan {
		if locs == nil {
			return sourceSpan{tagSpan, tagSpan}
		}
		l := locs[i]
		ns := c.span(at+l.nameStart, at+l.nameEnd)
		if l.valueStart < 0 {
			return sourceSpan{ns, ns}
		}
		return sourceSpan{ns, c.span(at+l.valueStart, at+l.valueEnd)}
	}

	seenNative := make(map[string]bool, len(attrs))
	singles := make(map[string]sourceSpan)
	for i, a := range attrs {
		sp := spans(i)
		hasValue := locs == nil || locs[i].valueStart >= 0
		if !directive.IsDirective(a.Key) {
			if seenNative[a.Key] {
				continue
			}
			seenNative[a.Key] = true
			el.Attrs = append(el.Attrs, directive.NativeAttr{Name: a.Key, Value: a.Val, HasValue: hasValue, Span: sp.value})
			continue
		}

		sig, err := directive.ParseSignature(a.Key)
		if err != nil {
			diag.ReportError(c.reporter, diag.DirBadValue, sp.name, err.Error()).Emit()
			continue
		}
		factory, ok := c.registry.Lookup(sig.Name)
		if !ok {
			diag.ReportWarning(c.reporter, diag.DirUnknownPlugin, sp.name,
				fmt.Sprintf("unknown directive %q; the attribute is dropped", sig.String())).
				WithNote(sp.name, "known directives: "+strings.Join(c.registry.Names(), ", ")).
				Emit()
			continue
		}
		if !hasValue || strings.TrimSpace(a.Val) == "" {
			diag.ReportError(c.reporter, diag.DirMissingValue, sp.name,
				fmt.Sprintf("%s requires a value", sig.String())).Emit()
			continue
		}
		e, ok := c.directiveValue(sig, a.Val, sp)
		if !ok {
			continue
		}
		if attrName, named := sig.AttrName(); named && sig.Name == directive.Name {
			if first, dup := singles[attrName]; dup {
				diag.ReportWarning(c.reporter, diag.DirDuplicateAttribute, sp.name,
					fmt.Sprintf("attribute %q is already set by another directive; this one is ignored", attrName)).
					WithNote(first.name, "first set here").
					WithFix("remove duplicate directive", diag.FixEdit{Span: sp.name.Cover(sp.value)}).
					Emit()
				continue
			}
			singles[attrName] = sp
		}
		el.Calls = append(el.Calls, directive.Call{
			Sig:    sig,
			Expr:   e,
			Span:   sp.name,
			Plugin: factory(sig, c.gen.At(sp.name), e),
		})
	}

	for i := range el.Attrs {
		a := &el.Attrs[i]
		if !a.HasValue || !expr.HasExpression(a.Value) {
			continue
		}
		if parts, ok := c.interpolate(a.Value, a.Span, true); ok {
			c.attrParts[a] = parts
		}
	}
	return el
}

type sourceSpan struct {
	name, value source.Span
}

// directiveValue parses a directive value. A plain string is a string
// literal; text mixed with expressions is rejected.
func (c *templateCompiler) directiveValue(sig directive.Signature, val string, sp sourceSpan) (*expr.Expression, bool) {
	if !expr.HasExpression(val) {
		return &expr.Expression{Root: expr.String(val), RawText: val, Span: sp.value}, true
	}
	trimmed := strings.TrimSpace(val)
	segs, err := expr.Split(trimmed)
	if err != nil || len(segs) != 1 || !segs[0].Expr {
		if err != nil {
			diag.ReportError(c.reporter, diag.TplUnclosedExpression, sp.value, err.Error()).Emit()
			return nil, false
		}
		diag.ReportError(c.reporter, diag.DirBadValue, sp.value,
			fmt.Sprintf("%s value must be a single ${} expression", sig.String())).
			WithNote(sp.value, val).
			Emit()
		return nil, false
	}
	return c.parseExpr(trimmed, sp.value)
}
