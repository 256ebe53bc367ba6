package docparse

import (
	"fmt"

	"github.com/cjdb/schreiber/internal/comment"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/fix"
	"github.com/cjdb/schreiber/internal/lexicon"
	"github.com/cjdb/schreiber/internal/scan"
)

const noDescriptionNote = "this comment has no description before its first directive"

// resolve looks the directive up. A miss is reported and yields nil.
func (s *Session) resolve(raw *comment.Raw, res *scan.Result, d *scan.Directive) *lexicon.Entry {
	if d.Keyword == "" {
		diag.ReportError(s.reporter, diag.ScanLoneEscape, d.Escape,
			"a backslash must be followed by a non-space character").Emit()
		return nil
	}
	if e, ok := s.lex.Lookup(d.Keyword); ok {
		return e
	}
	if s.lex.IsMarker(d.Keyword) {
		return nil
	}

	var b *diag.ReportBuilder
	if legacy, ok := s.lex.LookupLegacy(d.Keyword); ok {
		msg := fmt.Sprintf("'\\%s' is an unsupported Doxygen command and will be ignored", d.Keyword)
		if legacy.Replacement != nil {
			msg += fmt.Sprintf("; use '\\%s' instead", legacy.Replacement.Keyword)
		}
		b = diag.ReportWarning(s.reporter, diag.ScanLegacyDirective, d.Escape, msg)
		if legacy.Replacement != nil && s.fixSafe(raw, d) {
			b.WithFixSuggestion(fix.ReplaceSpan(
				fmt.Sprintf("replace '\\%s' with '\\%s'", d.Keyword, legacy.Replacement.Keyword),
				d.KwSpan, legacy.Replacement.Keyword, d.Keyword,
				fix.WithID(legacyFixID(d)), fix.Preferred(),
			))
		}
	} else {
		b = diag.ReportWarning(s.reporter, diag.ScanUnknownDirective, d.Escape,
			fmt.Sprintf("unknown directive '\\%s'", d.Keyword))
	}
	if res.EmptyDescription && d.Line == 0 {
		b.WithNote(raw.Span(), noDescriptionNote)
	}
	b.Emit()
	return nil
}

// legacyFixID names the fix by keyword and site so that every occurrence
// in a run can be applied.
func legacyFixID(d *scan.Directive) string {
	return fmt.Sprintf("legacy-%s-%d-%d", d.Keyword, d.KwSpan.File, d.KwSpan.Start)
}

// fixSafe holds when the escape offset we computed is the offset the file
// set reports for the line, and the keyword bytes are really there.
func (s *Session) fixSafe(raw *comment.Raw, d *scan.Directive) bool {
	if s.fs == nil {
		return false
	}
	want, ok := s.fs.Offset(raw.File, raw.Lines[d.Line].Begin)
	if !ok || want != d.Escape.Start {
		return false
	}
	file := s.fs.Get(raw.File)
	if file == nil || int(d.KwSpan.End) > len(file.Content) {
		return false
	}
	return string(file.Content[d.Escape.Start:d.KwSpan.End]) == "\\"+d.Keyword
}
