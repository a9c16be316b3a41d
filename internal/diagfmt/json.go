package diagfmt

import (
	"encoding/json"
	"io"

	"slyc/internal/diag"
	"slyc/internal/source"
)

// Pos is a resolved 1-based position.
type Pos struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// Loc points at a byte range of a template. Start and End positions are
// present only when JSONOpts.Positions is set.
type Loc struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	Start     *Pos   `json:"start,omitempty"`
	End       *Pos   `json:"end,omitempty"`
}

type NoteRecord struct {
	Message string `json:"message"`
	Loc     Loc    `json:"location"`
}

type EditRecord struct {
	Loc     Loc    `json:"location"`
	NewText string `json:"new_text"`
}

type FixRecord struct {
	Title string       `json:"title"`
	Edits []EditRecord `json:"edits,omitempty"`
}

// Record is one diagnostic in the JSON report.
type Record struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Loc      Loc          `json:"location"`
	Notes    []NoteRecord `json:"notes,omitempty"`
	Fixes    []FixRecord  `json:"fixes,omitempty"`
}

// Report is the document written by JSON. Counters cover the records
// actually written, not the whole bag.
type Report struct {
	Count       int      `json:"count"`
	Errors      int      `json:"errors"`
	Warnings    int      `json:"warnings"`
	Diagnostics []Record `json:"diagnostics"`
}

type reportBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (b reportBuilder) loc(sp source.Span) Loc {
	l := Loc{
		File:      displayPath(b.fs.Get(sp.File), b.fs, b.opts.Paths),
		StartByte: sp.Start,
		EndByte:   sp.End,
	}
	if b.opts.Positions {
		start, end := b.fs.Resolve(sp)
		l.Start = &Pos{Line: start.Line, Col: start.Col}
		l.End = &Pos{Line: end.Line, Col: end.Col}
	}
	return l
}

func (b reportBuilder) record(d *diag.Diagnostic) Record {
	r := Record{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Loc:      b.loc(d.Primary),
	}
	if b.opts.Notes {
		for _, n := range d.Notes {
			r.Notes = append(r.Notes, NoteRecord{Message: n.Msg, Loc: b.loc(n.Span)})
		}
	}
	if b.opts.Fixes {
		for _, fix := range d.Fixes {
			fr := FixRecord{Title: fix.Title}
			for _, e := range fix.Edits {
				fr.Edits = append(fr.Edits, EditRecord{Loc: b.loc(e.Span), NewText: e.NewText})
			}
			r.Fixes = append(r.Fixes, fr)
		}
	}
	return r
}

// BuildReport assembles the JSON document without encoding it.
func BuildReport(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Report {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	b := reportBuilder{fs: fs, opts: opts}
	rep := Report{Diagnostics: make([]Record, 0, len(items))}
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			rep.Errors++
		case diag.SevWarning:
			rep.Warnings++
		}
		rep.Diagnostics = append(rep.Diagnostics, b.record(d))
	}
	rep.Count = len(rep.Diagnostics)
	return rep
}

// JSON пишет отчёт одним документом с отступами.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(bag, fs, opts))
}
