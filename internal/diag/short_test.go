package diag

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"slyc/internal/source"
)

func TestFormatShortGolden(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	page := fs.Add("/workspace/templates/page.html", []byte("<a\n data-sly-attribute.onclick=\"${x}\">\n"), 0)
	other := fs.Add("/workspace/templates/other.html", []byte("<p>\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevWarning,
			Code:     DirPluginWarning,
			Message:  "attribute 'onclick'\nis sensitive",
			Primary:  source.Span{File: page, Start: 4, End: 31},
			Notes: []Note{
				{Span: source.Span{File: page, Start: 32, End: 36}, Msg: "expression ${x}"},
			},
		},
		{
			Severity: SevInfo,
			Code:     DirInfo,
			Message:  "dropped from golden output",
			Primary:  source.Span{File: other, Start: 0, End: 1},
		},
		{
			Severity: SevError,
			Code:     ExprSyntax,
			Message:  "unexpected token",
			Primary:  source.Span{File: other, Start: 1, End: 2},
		},
	}

	want := []string{
		"error EXP2001 templates/other.html:1:2 unexpected token",
		"warning DIR3001 templates/page.html:2:2 attribute 'onclick' is sensitive",
		"note DIR3001 templates/page.html:2:30 expression ${x}",
	}
	var got []string
	for _, l := range ShortLines(diags, fs, ShortOptions{Notes: true, MinSeverity: SevWarning}) {
		got = append(got, l.String())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("short lines mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatShortKeepsInfoAndVirtualPaths(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("stdin.html", []byte("<p>${}</p>"))

	diags := []*Diagnostic{{
		Severity: SevInfo,
		Code:     ExprEmptyInterpolate,
		Message:  "empty expression",
		Primary:  source.Span{File: id, Start: 3, End: 6},
	}}

	want := "info EXP2003 stdin.html:1:4 empty expression"
	if got := FormatShort(diags, fs, ShortOptions{}); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatShortSkipsUnknownFiles(t *testing.T) {
	fs := source.NewFileSet()
	diags := []*Diagnostic{{Severity: SevError, Code: IOLoadFileError, Primary: source.Span{File: 7}}}
	if got := FormatShort(diags, fs, ShortOptions{}); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := FormatShort(diags, nil, ShortOptions{}); got != "" {
		t.Fatalf("nil file set: %q", got)
	}
}
