package diag

import (
	"sync"

	"slyc/internal/source"
)

// Reporter receives diagnostics from the compiler phases. Implementations
// may store, count, filter or forward them.
type Reporter interface {
	Report(d Diagnostic)
}

// Draft is a diagnostic being assembled; Emit hands it to the reporter once.
type Draft struct {
	to      Reporter
	d       Diagnostic
	emitted bool
}

func Draw(r Reporter, sev Severity, code Code, primary source.Span, msg string) *Draft {
	return &Draft{to: r, d: New(sev, code, primary, msg)}
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *Draft {
	return Draw(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *Draft {
	return Draw(r, SevWarning, code, primary, msg)
}

func ReportInfo(r Reporter, code Code, primary source.Span, msg string) *Draft {
	return Draw(r, SevInfo, code, primary, msg)
}

func (b *Draft) WithNote(sp source.Span, msg string) *Draft {
	b.d = b.d.WithNote(sp, msg)
	return b
}

func (b *Draft) WithFix(title string, edits ...FixEdit) *Draft {
	b.d = b.d.WithFix(title, edits...)
	return b
}

// Emit is a no-op after the first call.
func (b *Draft) Emit() {
	if b.emitted {
		return
	}
	b.emitted = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}

// Diagnostic returns what Emit would send.
func (b *Draft) Diagnostic() Diagnostic { return b.d }

// BagReporter stores into Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(&d)
	}
}

type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// MultiReporter fans out to every non-nil reporter.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

// CountingReporter counts per severity before forwarding to Next.
// Safe for concurrent use.
type CountingReporter struct {
	Next Reporter

	mu     sync.Mutex
	counts [SevError + 1]int
}

func (r *CountingReporter) Report(d Diagnostic) {
	if d.Severity <= SevError {
		r.mu.Lock()
		r.counts[d.Severity]++
		r.mu.Unlock()
	}
	if r.Next != nil {
		r.Next.Report(d)
	}
}

func (r *CountingReporter) Count(sev Severity) int {
	if sev > SevError {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[sev]
}

type dedupKey struct {
	code Code
	span source.Span
	msg  string
}

func keyOf(d *Diagnostic) dedupKey {
	return dedupKey{code: d.Code, span: d.Primary, msg: d.Message}
}

// DedupReporter forwards each (code, span, message) triple once.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	k := keyOf(&d)
	if _, dup := r.seen[k]; dup {
		return
	}
	r.seen[k] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
