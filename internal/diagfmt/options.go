package diagfmt

import "slyc/internal/source"

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int8
	Paths     source.PathStyle
	Width     uint8 // максимальная ширина строки, 0 - не ограничено
	ShowNotes bool
	ShowFixes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Positions bool // добавить line/col
	Paths     source.PathStyle
	Max       int // обрезает вывод, Bag не трогает
	Notes     bool
	Fixes     bool
}

func displayPath(f *source.File, fs *source.FileSet, style source.PathStyle) string {
	if f == nil {
		return "<unknown>"
	}
	return f.Display(style, fs.BaseDir())
}
