// Package diag defines the diagnostic model shared by every stage of a
// documentation check.
//
// # Purpose
//
//   - Provide deterministic data structures for findings produced while
//     scanning comments, validating directives and flushing undocumented
//     declarations.
//   - Offer light-weight utilities (Reporter, Bag) so producers can emit
//     diagnostics without coupling to storage or formatting.
//   - Model fix suggestions as structured edits that internal/fix can apply.
//
// # Scope
//
// Package diag does no formatting, IO or CLI work. Rendering lives in
// internal/diagfmt, application of fixes in internal/fix.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – numeric identifier with a stable string form (SCN, DOC, UND,
//     IO, IDX, OBS ranges; see codes.go).
//   - Message – the exact user-facing text.
//   - Primary – the byte span the diagnostic points at.
//   - Notes – secondary spans, e.g. "previous definition is here".
//   - Fixes – optional Fix records.
//
// # Fix suggestions
//
// A Fix carries a Title, a Kind, an Applicability level, an IsPreferred flag
// and concrete TextEdits. TextEdit.OldText is a guard: the fix engine refuses
// an edit whose target bytes no longer match.
//
// # Emitting diagnostics
//
// Producers take a Reporter and either call Report directly or build the
// diagnostic with ReportError/ReportWarning, chain WithNote/WithFix and
// call Emit. BagReporter collects into a Bag, which supports sorting,
// deduplication, filtering and transformation.
package diag
