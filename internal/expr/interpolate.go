package expr

import "strings"

// Segment is a piece of text that is either literal or a complete "${...}".
type Segment struct {
	Text string
	Off  int // смещение в исходной строке
	Expr bool
}

// Split cuts text into literal and expression segments. Quotes inside an
// expression may contain '}'. An unterminated "${" yields a SyntaxError
// pointing at it.
func Split(text string) ([]Segment, error) {
	var segs []Segment
	pos := 0
	for {
		rel := strings.Index(text[pos:], "${")
		if rel < 0 {
			break
		}
		start := pos + rel
		if start > pos {
			segs = append(segs, Segment{Text: text[pos:start], Off: pos})
		}
		end, ok := closeBrace(text, start+2)
		if !ok {
			return nil, &SyntaxError{Off: start, End: len(text), Msg: "unclosed ${ expression"}
		}
		segs = append(segs, Segment{Text: text[start : end+1], Off: start, Expr: true})
		pos = end + 1
	}
	if pos < len(text) {
		segs = append(segs, Segment{Text: text[pos:], Off: pos})
	}
	return segs, nil
}

// HasExpression reports whether text contains an expression start.
func HasExpression(text string) bool {
	return strings.Contains(text, "${")
}

func closeBrace(text string, from int) (int, bool) {
	var quote byte
	for i := from; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '}':
			return i, true
		}
	}
	return 0, false
}
