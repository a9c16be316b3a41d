package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"slyc/internal/diag"
	"slyc/internal/source"
)

// TestPathStyles проверяет различные режимы форматирования путей
func TestPathStyles(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/home/user/site")

	content := []byte("<a data-sly-attribute.onclick=\"${handler}\">go</a>\n")
	fileID := fs.Add("/home/user/site/templates/link.html", content, 0)

	bag := diag.NewBag(10)
	d := diag.New(
		diag.SevWarning,
		diag.DirPluginWarning,
		source.Span{File: fileID, Start: 3, End: 29},
		"attribute 'onclick' cannot be set dynamically",
	)
	bag.Add(&d)

	tests := []struct {
		name     string
		style    source.PathStyle
		contains string
	}{
		{"Absolute path", source.PathAbsolute, "/home/user/site/templates/link.html:1:4"},
		{"Relative path", source.PathRelative, "templates/link.html:1:4"},
		{"Basename only", source.PathBase, "link.html:1:4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, Paths: tt.style})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "WARNING") {
				t.Error("Expected WARNING in output")
			}
			if !strings.Contains(output, "DIR3001") {
				t.Error("Expected DIR3001 code in output")
			}
		})
	}
}

func TestPrettyCaretUnderSpan(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("page.html", []byte("<p>\n<b data-sly-foo=\"x\">\n</p>"))

	bag := diag.NewBag(1)
	d := diag.New(diag.SevWarning, diag.DirUnknownPlugin, source.Span{File: fileID, Start: 7, End: 19}, "unknown directive")
	bag.Add(&d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Paths: source.PathBase})

	want := "page.html:2:4: WARNING DIR3002: unknown directive\n" +
		"2 | <b data-sly-foo=\"x\">\n" +
		"  |    ^~~~~~~~~~~~\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyWideRunes(t *testing.T) {
	if got := caretLine("日本 ${x}", source.LineCol{Line: 1, Col: 8}, source.LineCol{Line: 1, Col: 12}); got != "     ^~~~" {
		t.Fatalf("unexpected caret line %q", got)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("<div data-sly-attribute.style=\"${css}\"></div>\n")
	fileID := fs.AddVirtual("test.html", content)

	bag := diag.NewBag(4)
	primary := source.Span{File: fileID, Start: 5, End: 29}
	d := diag.New(diag.SevWarning, diag.DirPluginWarning, primary, "attribute 'style' cannot be set dynamically")
	d = d.WithNote(source.Span{File: fileID, Start: 31, End: 37}, "${css}")
	d = d.WithFix("remove directive", diag.FixEdit{Span: source.Span{File: fileID, Start: 4, End: 38}})
	bag.Add(&d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Paths: source.PathBase, ShowNotes: true, ShowFixes: true})
	output := buf.String()

	if !strings.Contains(output, "note: test.html:1:32: ${css}") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}
	if !strings.Contains(output, "fix #1: remove directive") {
		t.Fatalf("expected fix entry, got:\n%s", output)
	}
	if !strings.Contains(output, "at 1:5 apply=\"\"") {
		t.Fatalf("expected fix edit, got:\n%s", output)
	}
}
