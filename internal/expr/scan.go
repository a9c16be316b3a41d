package expr

import (
	"fmt"
	"strings"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind tokKind
	text string // для строк уже раскрытый литерал
	off  int
	end  int
}

type scanner struct {
	src string
	off int
}

func (s *scanner) skipSpace() {
	for s.off < len(s.src) {
		switch s.src[s.off] {
		case ' ', '\t', '\n', '\r':
			s.off++
		default:
			return
		}
	}
}

var twoCharPunct = [...]string{"==", "!=", "&&", "||"}

func (s *scanner) next() (token, error) {
	s.skipSpace()
	start := s.off
	if s.off >= len(s.src) {
		return token{kind: tokEOF, off: start, end: start}, nil
	}
	c := s.src[s.off]
	switch {
	case isIdentStart(c):
		for s.off < len(s.src) && (isIdentStart(s.src[s.off]) || isDigit(s.src[s.off])) {
			s.off++
		}
		return token{kind: tokIdent, text: s.src[start:s.off], off: start, end: s.off}, nil
	case isDigit(c):
		for s.off < len(s.src) && (isDigit(s.src[s.off]) || s.src[s.off] == '.') {
			s.off++
		}
		return token{kind: tokNumber, text: s.src[start:s.off], off: start, end: s.off}, nil
	case c == '\'' || c == '"':
		return s.scanString(c)
	}
	for _, p := range twoCharPunct {
		if strings.HasPrefix(s.src[s.off:], p) {
			s.off += 2
			return token{kind: tokPunct, text: p, off: start, end: s.off}, nil
		}
	}
	if strings.IndexByte("()[].,@=!", c) >= 0 {
		s.off++
		return token{kind: tokPunct, text: string(c), off: start, end: s.off}, nil
	}
	return token{}, &SyntaxError{Off: start, End: start + 1, Msg: fmt.Sprintf("unexpected character %q", c)}
}

func (s *scanner) scanString(quote byte) (token, error) {
	start := s.off
	s.off++
	var sb strings.Builder
	for s.off < len(s.src) {
		c := s.src[s.off]
		switch {
		case c == quote:
			s.off++
			return token{kind: tokString, text: sb.String(), off: start, end: s.off}, nil
		case c == '\\' && s.off+1 < len(s.src):
			s.off++
			switch esc := s.src[s.off]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(esc)
			}
		default:
			sb.WriteByte(c)
		}
		s.off++
	}
	return token{}, &SyntaxError{Off: start, End: s.off, Msg: "unterminated string literal"}
}
