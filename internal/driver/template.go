package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"fortio.org/safecast"
	xhtml "golang.org/x/net/html"

	"slyc/internal/command"
	"slyc/internal/diag"
	"slyc/internal/directive"
	"slyc/internal/expr"
	"slyc/internal/markup"
	"slyc/internal/source"
)

// Stats counts what a template contained.
type Stats struct {
	Elements    int // elements that went through the directive lifecycle
	Directives  int // directive occurrences that were run
	Expressions int // ${} expressions compiled
}

// valuePart is a literal or an expression piece of an interpolated value.
type valuePart struct {
	text string
	e    *expr.Expression
}

// templateCompiler turns one template into an instruction stream.
type templateCompiler struct {
	ctx      context.Context
	file     *source.File
	stream   *command.PushStream
	gen      *directive.GenContext
	reporter diag.Reporter
	registry *directive.Registry
	runner   *directive.Runner
	stats    Stats

	// значения нативных атрибутов с ${}, разобранные заранее
	attrParts map[*directive.NativeAttr][]valuePart
}

func newTemplateCompiler(ctx context.Context, file *source.File, reporter diag.Reporter, registry *directive.Registry) *templateCompiler {
	c := &templateCompiler{
		ctx:       ctx,
		file:      file,
		stream:    command.NewPushStream(),
		gen:       directive.NewGenContext(nil, reporter),
		reporter:  reporter,
		registry:  registry,
		attrParts: make(map[*directive.NativeAttr][]valuePart),
	}
	c.runner = directive.NewRunner(directive.RunnerConfig{WriteValue: c.writeAttrValue})
	return c
}

func (c *templateCompiler) span(from, to int) source.Span {
	start, err := safecast.Conv[uint32](from)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	end, err := safecast.Conv[uint32](to)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return source.Span{File: c.file.ID, Start: start, End: end}
}

// run walks the whole template.
func (c *templateCompiler) run() ([]command.Instr, error) {
	z := xhtml.NewTokenizer(bytes.NewReader(c.file.Content))
	off := 0
	for {
		if err := c.ctx.Err(); err != nil {
			return nil, err
		}
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("tokenize %s: %w", c.file.Path, err)
			}
			break
		}
		raw := z.Raw()
		at := off
		off += len(raw)
		switch tt {
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			c.startTag(z, raw, at, tt == xhtml.SelfClosingTagToken)
		case xhtml.TextToken:
			c.text(string(raw), at, markup.Text)
		case xhtml.CommentToken:
			c.text(string(raw), at, markup.Comment)
		default:
			c.stream.Write(command.Text(string(raw)))
		}
	}
	if rest := c.file.Content[min(off, len(c.file.Content)):]; len(bytes.TrimSpace(rest)) > 0 {
		diag.ReportError(c.reporter, diag.TplUnclosedTag, c.span(off, len(c.file.Content)),
			"start tag is not closed before the end of the template").Emit()
		c.stream.Write(command.Text(string(rest)))
	}
	return c.stream.Instrs(), nil
}

// text writes raw text, compiling ${} expressions for mc.
func (c *templateCompiler) text(raw string, at int, mc markup.Context) {
	if !expr.HasExpression(raw) {
		c.stream.Write(command.Text(raw))
		return
	}
	parts, ok := c.interpolate(raw, c.span(at, at+len(raw)), false)
	if !ok {
		c.stream.Write(command.Text(raw))
		return
	}
	for _, p := range parts {
		if p.e == nil {
			c.stream.Write(command.Text(p.text))
			continue
		}
		c.writeExpr("text", p.e, mc, markup.ExprText)
	}
}

// interpolate splits s into literal and expression parts. sp locates s in
// the template. Literal parts are HTML-escaped when escapeText is set.
func (c *templateCompiler) interpolate(s string, sp source.Span, escapeText bool) ([]valuePart, bool) {
	segs, err := expr.Split(s)
	if err != nil {
		var se *expr.SyntaxError
		if errors.As(err, &se) {
			diag.ReportError(c.reporter, diag.TplUnclosedExpression, subSpan(sp, se.Off, se.End), se.Msg).Emit()
		}
		return nil, false
	}
	parts := make([]valuePart, 0, len(segs))
	ok := true
	for _, seg := range segs {
		if !seg.Expr {
			text := seg.Text
			if escapeText {
				text = html.EscapeString(text)
			}
			parts = append(parts, valuePart{text: text})
			continue
		}
		e, parsed := c.parseExpr(seg.Text, subSpan(sp, seg.Off, seg.Off+len(seg.Text)))
		if !parsed {
			ok = false
			continue
		}
		parts = append(parts, valuePart{e: e})
	}
	return parts, ok
}

// parseExpr parses one ${...} and reports syntax problems.
func (c *templateCompiler) parseExpr(src string, sp source.Span) (*expr.Expression, bool) {
	e, err := expr.Parse(src, sp)
	if err != nil {
		var se *expr.SyntaxError
		switch {
		case errors.As(err, &se) && se.Empty:
			diag.ReportWarning(c.reporter, diag.ExprEmptyInterpolate, se.Span, "empty expression ${} produces no output").
				WithFix("remove empty expression", diag.FixEdit{Span: sp}).
				Emit()
		case errors.As(err, &se):
			diag.ReportError(c.reporter, diag.ExprSyntax, se.Span, se.Msg).WithNote(sp, src).Emit()
		default:
			diag.ReportError(c.reporter, diag.ExprSyntax, sp, err.Error()).Emit()
		}
		return nil, false
	}
	if opt := e.Option(expr.OptContext); opt != nil && opt.Kind == expr.KindString {
		if _, err := markup.ParseContext(opt.Str); err != nil {
			diag.ReportError(c.reporter, diag.ExprUnknownContext, sp, err.Error()).
				WithNote(sp, "known contexts: text, html, attribute, attributeName, uri, number, unsafe, ...").
				Emit()
			return nil, false
		}
	}
	c.stats.Expressions++
	return e, true
}

// writeExpr binds the escaped value of e and outputs it. An explicit context
// option wins over mc.
func (c *templateCompiler) writeExpr(prefix string, e *expr.Expression, mc markup.Context, ec markup.ExprContext) {
	node := c.gen.AdjustToContext(e.Root, mc, ec)
	if opt := e.Option(expr.OptContext); opt != nil {
		node = directive.XSSCall(e.Root, opt, nil)
	}
	name := c.gen.NewVar(prefix)
	c.stream.Write(command.VarBind(name, node))
	c.stream.Write(command.Output(name))
	c.stream.Write(command.VarEnd())
}

// writeAttrValue writes ="value" of a native attribute, interpolating ${}.
func (c *templateCompiler) writeAttrValue(s command.Stream, attr *directive.NativeAttr) {
	parts, ok := c.attrParts[attr]
	if !ok {
		directive.WriteEscapedValue(s, attr)
		return
	}
	s.Write(command.Text(`="`))
	for _, p := range parts {
		if p.e == nil {
			s.Write(command.Text(p.text))
			continue
		}
		// через общий поток: при BeginIgnore запись подавляется целиком
		name := c.gen.NewVar("attrExpr_" + attr.Name)
		mc := p.e.Option(expr.OptContext)
		if mc == nil {
			mc = expr.String(markup.Attribute.String())
		}
		node := directive.XSSCall(p.e.Root, mc, expr.String(attr.Name))
		s.Write(command.VarBind(name, node))
		s.Write(command.Output(name))
		s.Write(command.VarEnd())
	}
	s.Write(command.Text(`"`))
}

func subSpan(sp source.Span, from, to int) source.Span {
	f, errF := safecast.Conv[uint32](from)
	t, errT := safecast.Conv[uint32](to)
	if errF != nil || errT != nil {
		return sp
	}
	return sp.Sub(f, t)
}

func lowerTag(name []byte) string {
	return strings.ToLower(string(name))
}
