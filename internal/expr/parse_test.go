package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slyc/internal/source"
)

func TestParseCanonicalForm(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"${isDisabled}", "isDisabled"},
		{"${page.title}", "page.title"},
		{"${attrs['data-id']}", `attrs["data-id"]`},
		{"${a || b && !c}", "(a || (b && !c))"},
		{"${x == 'false'}", `(x == "false")`},
		{"${(a || b) != null}", "((a || b) != null)"},
		{"${[1, 2.5, true]}", "[1, 2.5, true]"},
		{`${"a\"b"}`, `"a\"b"`},
		{"${ list[0].name }", "list[0].name"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src, source.Span{})
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.src, err)
			}
			if got := e.Root.String(); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
			if e.RawText != tt.src {
				t.Fatalf("raw text %q", e.RawText)
			}
		})
	}
}

func TestParseOptions(t *testing.T) {
	e, err := Parse("${link @ context='uri', i18n}", source.Span{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !e.HasOption(OptContext) || e.Option(OptContext).Str != "uri" {
		t.Fatalf("context option missing: %+v", e.Options)
	}
	if got := e.Option("i18n"); got == nil || got.Kind != KindBool || !got.Bool {
		t.Fatalf("bare option must be true, got %v", got)
	}
	if diff := cmp.Diff([]string{"context", "i18n"}, e.OptionNames()); diff != "" {
		t.Fatalf("option names (-want +got):\n%s", diff)
	}
	if e.HasOption("missing") || e.Option("missing") != nil {
		t.Fatal("unexpected option")
	}
}

func TestParseErrors(t *testing.T) {
	span := source.Span{File: 2, Start: 100, End: 109}
	tests := []struct {
		src       string
		wantEmpty bool
		wantSpan  source.Span
	}{
		{"${}", true, source.Span{File: 2, Start: 100, End: 103}},
		{"${a &&}", false, source.Span{File: 2, Start: 106, End: 106}},
		{"${a # b}", false, source.Span{File: 2, Start: 104, End: 105}},
		{"${'open}", false, source.Span{File: 2, Start: 102, End: 107}},
		{"${@ context='html'}", true, source.Span{File: 2, Start: 100, End: 109}},
		{"plain", false, source.Span{File: 2, Start: 100, End: 105}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src, span)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected SyntaxError, got %v", err)
			}
			if se.Empty != tt.wantEmpty {
				t.Fatalf("Empty = %v (%s)", se.Empty, se.Msg)
			}
			if se.Span != tt.wantSpan {
				t.Fatalf("span = %v, want %v (%s)", se.Span, tt.wantSpan, se.Msg)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	segs, err := Split("Hello ${user.name}, you have ${count @ context='number'} items${'}'}")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := []Segment{
		{Text: "Hello ", Off: 0},
		{Text: "${user.name}", Off: 6, Expr: true},
		{Text: ", you have ", Off: 18},
		{Text: "${count @ context='number'}", Off: 29, Expr: true},
		{Text: " items", Off: 56},
		{Text: "${'}'}", Off: 62, Expr: true},
	}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Fatalf("segments (-want +got):\n%s", diff)
	}

	if _, err := Split("a ${b"); err == nil {
		t.Fatal("expected error for unclosed expression")
	}
	if !HasExpression("x ${y}") || HasExpression("$ {y}") {
		t.Fatal("HasExpression mismatch")
	}
}

func TestNodeString(t *testing.T) {
	n := Call("xss", Prop(Ident("var_attrMap0"), Ident("var_attrName1")), Arg("context", String("attribute")), Arg("hint", nil))
	if got := n.String(); got != `xss(var_attrMap0[var_attrName1], context="attribute")` {
		t.Fatalf("got %s", got)
	}
	if n.CallArg("context").Str != "attribute" || n.CallArg("hint") != nil {
		t.Fatalf("unexpected named arguments %+v", n.Entries)
	}
	if got := Call("now", nil).String(); got != "now()" {
		t.Fatalf("got %s", got)
	}
	m := Map(Entry{Key: "href", Value: Bool(true)}, Entry{Key: "id", Value: Bool(true)})
	if got := m.String(); got != `{"href": true, "id": true}` {
		t.Fatalf("got %s", got)
	}
	if !n.IsCall("xss") || m.IsCall("xss") {
		t.Fatal("IsCall mismatch")
	}
}
