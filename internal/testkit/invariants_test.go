package testkit

import (
	"testing"

	"slyc/internal/command"
	"slyc/internal/diag"
	"slyc/internal/source"
)

func TestCheckSpanInvariants(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.html", []byte("<p>${x}</p>"))
	sf := fs.Get(id)

	bag := diag.NewBag(0)
	bag.Add(&diag.Diagnostic{Code: diag.ExprSyntax, Primary: source.Span{File: id, Start: 3, End: 7}})
	bag.Add(&diag.Diagnostic{Code: diag.ObsTimings})
	if err := CheckSpanInvariants(bag, sf); err != nil {
		t.Fatal(err)
	}

	bag.Add(&diag.Diagnostic{Code: diag.ExprSyntax, Primary: source.Span{File: id, Start: 3, End: 99}})
	if err := CheckSpanInvariants(bag, sf); err == nil {
		t.Fatal("span beyond content must fail")
	}
}

func TestCheckProgram(t *testing.T) {
	fs := source.NewFileSet()
	sf := fs.Get(fs.AddVirtual("t.html", []byte("<p>hi</p>")))
	prog := &command.Program{Path: sf.Path, Hash: sf.Hash, Instrs: []command.Instr{command.Text("<p>hi</p>")}}
	if err := CheckProgram(prog, sf); err != nil {
		t.Fatal(err)
	}
	if got := StaticText(prog.Instrs); got != "<p>hi</p>" {
		t.Fatalf("StaticText = %q", got)
	}
	prog.Instrs = append(prog.Instrs, command.VarEnd())
	if err := CheckProgram(prog, sf); err == nil {
		t.Fatal("unbalanced stream must fail")
	}
}
