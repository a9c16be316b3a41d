package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"slyc/internal/diag"
	"slyc/internal/source"
)

type palette struct {
	err, warn, info, note, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue),
		path:   mk(color.Bold),
		gutter: mk(color.FgBlue, color.Bold),
		caret:  mk(color.FgGreen, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	f := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		pal.path.Sprint(displayPath(f, fs, opts.Paths)), start.Line, start.Col,
		pal.severity(d.Severity).Sprint(d.Severity.String()),
		d.Code.ID(), d.Message)

	if f != nil {
		writeSnippet(w, f, start, end, opts, pal)
	}

	if opts.ShowNotes {
		for _, note := range d.Notes {
			nf := fs.Get(note.Span.File)
			nstart, _ := fs.Resolve(note.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"),
				displayPath(nf, fs, opts.Paths), nstart.Line, nstart.Col, note.Msg)
		}
	}

	if opts.ShowFixes {
		for i, fix := range d.Fixes {
			fmt.Fprintf(w, "  fix #%d: %s\n", i+1, fix.Title)
			for _, edit := range fix.Edits {
				estart, _ := fs.Resolve(edit.Span)
				fmt.Fprintf(w, "    at %d:%d apply=%q\n", estart.Line, estart.Col, edit.NewText)
			}
		}
	}
}

func writeSnippet(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts, pal palette) {
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := start.Line
	if first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	last := min(start.Line+ctx, uint32(len(f.LineIdx))+1)
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := strings.ReplaceAll(f.Line(ln), "\t", "    ")
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), text)
		if ln == start.Line {
			fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""),
				pal.caret.Sprint(caretLine(f.Line(ln), start, end)))
		}
	}
}

// caretLine builds "   ^~~~" under the primary span, measuring display width.
func caretLine(line string, start, end source.LineCol) string {
	prefix := clampBytes(line, int(start.Col)-1)
	pad := runewidth.StringWidth(strings.ReplaceAll(prefix, "\t", "    "))

	endCol := int(end.Col) - 1
	if end.Line != start.Line {
		endCol = len(line)
	}
	marked := ""
	if endCol > len(prefix) {
		marked = clampBytes(line, endCol)[len(prefix):]
	}
	width := runewidth.StringWidth(strings.ReplaceAll(marked, "\t", "    "))
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", pad) + "^" + strings.Repeat("~", width-1)
}

func clampBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n > len(s) {
		return s
	}
	return s[:n]
}
