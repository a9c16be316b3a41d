// Package testkit holds invariant checks shared by package tests.
package testkit

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"slyc/internal/command"
	"slyc/internal/diag"
	"slyc/internal/source"
)

// CheckSpanInvariants checks the spans of every diagnostic in bag against sf:
// 1) spans point at sf and are not reversed
// 2) spans end within the file content
// 3) notes obey the same rules; empty pipeline-level spans are allowed
func CheckSpanInvariants(bag *diag.Bag, sf *source.File) error {
	if bag == nil || sf == nil {
		return fmt.Errorf("nil bag or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	check := func(what string, sp source.Span) error {
		// timings и прочие сводки без позиции
		if sp == (source.Span{}) {
			return nil
		}
		if sp.File != sf.ID {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("%s span is reversed: %v", what, sp)
		}
		if sp.End > lenContent {
			return fmt.Errorf("%s span end beyond content: %d > %d", what, sp.End, lenContent)
		}
		return nil
	}

	var errs []error
	for _, d := range bag.Items() {
		if err := check(d.Code.ID(), d.Primary); err != nil {
			errs = append(errs, err)
		}
		for _, n := range d.Notes {
			if err := check(d.Code.ID()+" note", n.Span); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// CheckProgram checks that prog belongs to sf and that its stream is well formed.
func CheckProgram(prog *command.Program, sf *source.File) error {
	if prog == nil || sf == nil {
		return fmt.Errorf("nil program or file")
	}
	if prog.Path != sf.Path {
		return fmt.Errorf("program path %q, file path %q", prog.Path, sf.Path)
	}
	if prog.Hash != sf.Hash {
		return fmt.Errorf("program hash does not match file content")
	}
	return command.Validate(prog.Instrs)
}

// StaticText concatenates the text instructions of instrs. For a template
// without directives or expressions it equals the source.
func StaticText(instrs []command.Instr) string {
	var out []byte
	for i := range instrs {
		if instrs[i].Kind == command.InstrOutText {
			out = append(out, instrs[i].Text...)
		}
	}
	return string(out)
}
