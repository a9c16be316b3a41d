package diag

import (
	"testing"

	"slyc/internal/source"
)

func TestBagLimitAndSeverity(t *testing.T) {
	b := NewBag(2)
	r := BagReporter{Bag: b}

	ReportWarning(r, DirUnknownPlugin, source.Span{Start: 4, End: 8}, "unknown").Emit()
	ReportInfo(r, DirInfo, source.Span{Start: 0, End: 1}, "info").Emit()
	ReportError(r, ExprSyntax, source.Span{Start: 9, End: 9}, "dropped").Emit()

	if b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("expected bag limited to 2 with 1 dropped, got %d/%d", b.Len(), b.Dropped())
	}
	if b.HasErrors() {
		t.Fatal("error must have been rejected by the limit")
	}
	if !b.HasWarnings() {
		t.Fatal("expected warnings")
	}

	b.Sort()
	if b.Items()[0].Code != DirInfo {
		t.Fatalf("expected sort by start offset, got %s first", b.Items()[0].Code.ID())
	}
}

func TestBagDedupAndFilter(t *testing.T) {
	b := NewBag(0)
	sp := source.Span{File: 1, Start: 2, End: 3}
	for range 3 {
		b.Add(&Diagnostic{Severity: SevWarning, Code: DirDuplicateAttribute, Primary: sp, Message: "dup"})
	}
	b.Add(&Diagnostic{Severity: SevInfo, Code: DirInfo, Primary: sp})
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("expected 2 after dedup, got %d", b.Len())
	}
	b.Filter(func(d *Diagnostic) bool { return d.Severity >= SevWarning })
	if b.Len() != 1 || b.Items()[0].Code != DirDuplicateAttribute {
		t.Fatalf("unexpected items after filter: %v", b.Items())
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	counter := &CountingReporter{Next: NewDedupReporter(NopReporter{})}
	rb := ReportWarning(counter, DirPluginWarning, source.Span{}, "style").
		WithNote(source.Span{}, "${value}")
	rb.Emit()
	rb.Emit()

	if got := counter.Count(SevWarning); got != 1 {
		t.Fatalf("expected exactly one warning, got %d", got)
	}
	if notes := rb.Diagnostic().Notes; len(notes) != 1 || notes[0].Msg != "${value}" {
		t.Fatalf("unexpected notes %+v", notes)
	}
}

func TestDedupReporterSuppressesRepeats(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(MultiReporter{BagReporter{Bag: bag}, nil})
	for range 2 {
		r.Report(New(SevWarning, DirUnknownPlugin, source.Span{Start: 1, End: 2}, "data-sly-foo"))
	}
	r.Report(New(SevWarning, DirUnknownPlugin, source.Span{Start: 1, End: 2}, "data-sly-bar"))
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestMergeKeepsEverything(t *testing.T) {
	a, b := NewBag(1), NewBag(0)
	a.Add(&Diagnostic{Code: DirInfo})
	a.Add(&Diagnostic{Code: DirInfo})
	b.Add(&Diagnostic{Code: ExprSyntax, Severity: SevError})
	b.Add(&Diagnostic{Code: ExprSyntax, Severity: SevError, Primary: source.Span{Start: 1}})
	a.Merge(b)
	if a.Len() != 3 || a.Dropped() != 1 || !a.HasErrors() {
		t.Fatalf("merge: len=%d dropped=%d errors=%v", a.Len(), a.Dropped(), a.HasErrors())
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		TplUnclosedExpression: "TPL1001",
		ExprSyntax:            "EXP2001",
		DirPluginWarning:      "DIR3001",
		IOLoadFileError:       "IO4001",
		ProjManifestError:     "PRJ5001",
		UnknownCode:           "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d: got %s, want %s", code, got, want)
		}
	}
	if Code(3999).Title() != "Unknown error" {
		t.Error("unknown codes must fall back to the generic title")
	}
}
