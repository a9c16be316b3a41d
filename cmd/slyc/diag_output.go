package main

import (
	"fmt"
	"io"
	"strings"

	"slyc/internal/diag"
	"slyc/internal/diagfmt"
	"slyc/internal/driver"
	"slyc/internal/source"
)

type diagFormat string

const (
	diagFormatPretty diagFormat = "pretty"
	diagFormatJSON   diagFormat = "json"
	diagFormatShort  diagFormat = "short"
)

func readDiagFormat(value string) (diagFormat, error) {
	switch f := diagFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case diagFormatPretty, diagFormatJSON, diagFormatShort:
		return f, nil
	case "":
		return diagFormatPretty, nil
	}
	return "", fmt.Errorf("unknown format %q (expected pretty|json|short)", value)
}

type diagOutput struct {
	format    diagFormat
	color     bool
	fullPath  bool
	withNotes bool
	suggest   bool
}

// collectDiagnostics merges per-template bags in template order.
func collectDiagnostics(results []driver.Result) *diag.Bag {
	all := diag.NewBag(0)
	for i := range results {
		if results[i].Bag != nil {
			all.Merge(results[i].Bag)
		}
	}
	return all
}

func printDiagnostics(w io.Writer, results []driver.Result, fs *source.FileSet, opts diagOutput) error {
	bag := collectDiagnostics(results)
	if fs == nil {
		fs = source.NewFileSet()
	}
	paths := source.PathAuto
	if opts.fullPath {
		paths = source.PathAbsolute
	}

	switch opts.format {
	case diagFormatPretty:
		if bag.Len() == 0 {
			return nil
		}
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   2,
			Paths:     paths,
			ShowNotes: opts.withNotes,
			ShowFixes: opts.suggest,
		})
		return nil
	case diagFormatShort:
		output := diag.FormatShort(bag.Items(), fs, diag.ShortOptions{Notes: opts.withNotes})
		if output == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, output)
		return err
	case diagFormatJSON:
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			Positions: true,
			Paths:     paths,
			Notes:     opts.withNotes,
			Fixes:     opts.suggest,
		})
	}
	return fmt.Errorf("unknown format: %s", opts.format)
}
