package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"slyc/internal/source"
)

// ShortOptions controls FormatShort.
type ShortOptions struct {
	Notes       bool     // notes become their own "note" lines
	MinSeverity Severity // SevWarning pins only warnings and errors in golden files
}

// ShortLine is one line of the short form.
type ShortLine struct {
	Label   string // error, warning, info or note
	Code    string
	Path    string
	Line    uint32
	Column  uint32
	Message string
}

func (l ShortLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.Label, l.Code, l.Path, l.Line, l.Column, l.Message)
}

// ShortLines resolves diagnostics to positions and orders them by path,
// position, code and message. Spans in files unknown to fs are skipped.
func ShortLines(diags []*Diagnostic, fs *source.FileSet, opts ShortOptions) []ShortLine {
	if fs == nil {
		return nil
	}
	var lines []ShortLine
	for _, d := range diags {
		if d == nil || d.Severity < opts.MinSeverity {
			continue
		}
		code := d.Code.ID()
		if l, ok := shortLine(fs, d.Primary, labels[d.Severity], code, d.Message); ok {
			lines = append(lines, l)
		}
		if !opts.Notes {
			continue
		}
		for _, n := range d.Notes {
			if l, ok := shortLine(fs, n.Span, "note", code, n.Msg); ok {
				lines = append(lines, l)
			}
		}
	}
	slices.SortStableFunc(lines, func(a, b ShortLine) int {
		return cmp.Or(
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Column, b.Column),
			cmp.Compare(a.Code, b.Code),
			cmp.Compare(a.Message, b.Message),
		)
	})
	return lines
}

// FormatShort joins ShortLines with newlines, without a trailing one.
func FormatShort(diags []*Diagnostic, fs *source.FileSet, opts ShortOptions) string {
	lines := ShortLines(diags, fs, opts)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

var labels = map[Severity]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

func shortLine(fs *source.FileSet, sp source.Span, label, code, msg string) (ShortLine, bool) {
	file := fs.Get(sp.File)
	if file == nil {
		return ShortLine{}, false
	}
	path := file.Path
	if file.Flags&source.FileVirtual == 0 {
		path = file.Display(source.PathRelative, fs.BaseDir())
	}
	path = filepath.ToSlash(path)
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	start, _ := fs.Resolve(sp)
	return ShortLine{
		Label:   label,
		Code:    code,
		Path:    path,
		Line:    start.Line,
		Column:  start.Col,
		Message: strings.Join(strings.Fields(msg), " "),
	}, true
}
