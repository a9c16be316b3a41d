package expr

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"slyc/internal/source"
)

// SyntaxError describes a malformed expression. Off and End are byte offsets
// into the text given to Parse; Span is filled when the text has a location.
type SyntaxError struct {
	Span  source.Span
	Off   int
	End   int
	Msg   string
	Empty bool // "${}" with nothing inside
}

func (e *SyntaxError) Error() string {
	return e.Msg
}

// Parse parses a complete "${ expr @ opt, name=value }" expression. span is
// the location of src in its template and is used for SyntaxError.Span and
// Expression.Span.
func Parse(src string, span source.Span) (*Expression, error) {
	if !strings.HasPrefix(src, "${") || !strings.HasSuffix(src, "}") || len(src) < 3 {
		return nil, withSpan(&SyntaxError{End: len(src), Msg: "expression must be written as ${...}"}, span)
	}
	p := &parser{sc: scanner{src: src[:len(src)-1], off: 2}}
	e, err := p.parseExpression()
	if err != nil {
		return nil, withSpan(err, span)
	}
	e.RawText = src
	e.Span = span
	return e, nil
}

func withSpan(err error, span source.Span) error {
	se, ok := err.(*SyntaxError)
	if !ok {
		return err
	}
	from, errFrom := safecast.Conv[uint32](se.Off)
	to, errTo := safecast.Conv[uint32](se.End)
	if errFrom != nil || errTo != nil {
		se.Span = span
		return se
	}
	se.Span = span.Sub(from, to)
	return se
}

type parser struct {
	sc   scanner
	tok  token
	init bool
}

func (p *parser) peek() (token, error) {
	if !p.init {
		t, err := p.sc.next()
		if err != nil {
			return token{}, err
		}
		p.tok, p.init = t, true
	}
	return p.tok, nil
}

func (p *parser) advance() (token, error) {
	t, err := p.peek()
	if err != nil {
		return token{}, err
	}
	p.init = false
	return t, nil
}

func (p *parser) isPunct(text string) bool {
	t, err := p.peek()
	return err == nil && t.kind == tokPunct && t.text == text
}

func (p *parser) expect(text string) error {
	t, err := p.advance()
	if err != nil {
		return err
	}
	if t.kind != tokPunct || t.text != text {
		return unexpected(t, fmt.Sprintf("expected %q", text))
	}
	return nil
}

func unexpected(t token, what string) error {
	if t.kind == tokEOF {
		return &SyntaxError{Off: t.off, End: t.end, Msg: "unexpected end of expression, " + what}
	}
	return &SyntaxError{Off: t.off, End: t.end, Msg: fmt.Sprintf("unexpected %q, %s", tokenText(t), what)}
}

func tokenText(t token) string {
	if t.kind == tokString {
		return strconv.Quote(t.text)
	}
	return t.text
}

func (p *parser) parseExpression() (*Expression, error) {
	e := &Expression{}
	first, err := p.peek()
	if err != nil {
		return nil, err
	}
	if first.kind == tokEOF {
		return nil, &SyntaxError{Off: 0, End: first.end + 1, Msg: "empty expression", Empty: true}
	}
	if !p.isPunct("@") {
		if e.Root, err = p.parseOr(); err != nil {
			return nil, err
		}
	}
	if p.isPunct("@") {
		if _, err = p.advance(); err != nil {
			return nil, err
		}
		if e.Options, err = p.parseOptions(); err != nil {
			return nil, err
		}
	}
	t, err := p.advance()
	if err != nil {
		return nil, err
	}
	if t.kind != tokEOF {
		return nil, unexpected(t, "expected end of expression")
	}
	if e.Root == nil {
		return nil, &SyntaxError{Off: 0, End: t.end, Msg: "expression has options but no value", Empty: true}
	}
	return e, nil
}

func (p *parser) parseOptions() (map[string]*Node, error) {
	opts := make(map[string]*Node)
	for {
		t, err := p.advance()
		if err != nil {
			return nil, err
		}
		if t.kind != tokIdent {
			return nil, unexpected(t, "expected option name")
		}
		value := Bool(true)
		if p.isPunct("=") {
			if _, err = p.advance(); err != nil {
				return nil, err
			}
			if value, err = p.parseOr(); err != nil {
				return nil, err
			}
		}
		opts[t.text] = value
		if !p.isPunct(",") {
			return opts, nil
		}
		if _, err = p.advance(); err != nil {
			return nil, err
		}
	}
}

// Приоритеты: || < && < == != < ! < постфиксы
func (p *parser) parseOr() (*Node, error) {
	return p.parseBinary(p.parseAnd, map[string]Op{"||": OpOr})
}

func (p *parser) parseAnd() (*Node, error) {
	return p.parseBinary(p.parseEquality, map[string]Op{"&&": OpAnd})
}

func (p *parser) parseEquality() (*Node, error) {
	return p.parseBinary(p.parseUnary, map[string]Op{"==": OpEq, "!=": OpNeq})
}

func (p *parser) parseBinary(operand func() (*Node, error), ops map[string]Op) (*Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		op, ok := ops[t.text]
		if t.kind != tokPunct || !ok {
			return left, nil
		}
		if _, err = p.advance(); err != nil {
			return nil, err
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = Binary(op, left, right)
	}
}

func (p *parser) parseUnary() (*Node, error) {
	if p.isPunct("!") {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not(x), nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (*Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("."):
			if _, err = p.advance(); err != nil {
				return nil, err
			}
			t, err := p.advance()
			if err != nil {
				return nil, err
			}
			if t.kind != tokIdent {
				return nil, unexpected(t, "expected property name")
			}
			n = Member(n, t.text)
		case p.isPunct("["):
			if _, err = p.advance(); err != nil {
				return nil, err
			}
			prop, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err = p.expect("]"); err != nil {
				return nil, err
			}
			n = Prop(n, prop)
		default:
			return n, nil
		}
	}
}

func (p *parser) parsePrimary() (*Node, error) {
	t, err := p.advance()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case tokIdent:
		switch t.text {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null(), nil
		}
		return Ident(t.text), nil
	case tokString:
		return String(t.text), nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &SyntaxError{Off: t.off, End: t.end, Msg: fmt.Sprintf("malformed number %q", t.text)}
		}
		return Number(f), nil
	case tokPunct:
		switch t.text {
		case "(":
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			return inner, p.expect(")")
		case "[":
			return p.parseArray()
		}
	}
	return nil, unexpected(t, "expected a value")
}

func (p *parser) parseArray() (*Node, error) {
	var items []*Node
	if p.isPunct("]") {
		_, err := p.advance()
		return Array(), err
	}
	for {
		item, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.isPunct(",") {
			if _, err = p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if err = p.expect("]"); err != nil {
			return nil, err
		}
		return Array(items...), nil
	}
}
