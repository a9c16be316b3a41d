// Package diag defines the diagnostic model shared by every compilation phase.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     the template walker, the expression parser and the directive plugins.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO or CLI integration.
// Rendering lives in internal/diagfmt; the short/golden single-line form is
// kept here because tests of several packages compare against it.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in diagnostic.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form
//     (TPL, EXP, DIR, IO and PRJ families).
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages, e.g. the raw source text of
//     the expression a directive was rejected for.
//   - Fixes – optional plain text edits.
//
// # Emitting diagnostics
//
// Phases emit through a diag.Reporter. Start a Draft with Draw (or
// ReportError/ReportWarning/ReportInfo), chain WithNote / WithFix and call
// Emit. diag.BagReporter aggregates
// diagnostics into a Bag, which supports sorting, deduplication and filtering.
package diag
