// Package testkit holds invariant checks shared by engine tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/cjdb/schreiber/internal/decl"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/docinfo"
	"github.com/cjdb/schreiber/internal/source"
)

// CheckRecordInvariants runs a minimal set of invariants on a record:
// 1) identity fields match the declaration
// 2) every parameter entry points at a declared parameter of the same name
// 3) a parameter name appears at most once per list
// 4) every non-zero text span lies inside its file
func CheckRecordInvariants(r *docinfo.Record, fs *source.FileSet) error {
	if r == nil || r.Decl == nil {
		return fmt.Errorf("nil record or declaration")
	}
	d := r.Decl

	// 1) identity
	if r.Name != d.Name() || r.CanonicalID != d.CanonicalID() || r.Kind != d.Kind().String() {
		return fmt.Errorf("record identity %q/%q/%q does not match declaration", r.Name, r.CanonicalID, r.Kind)
	}

	// 2) + 3) parameters
	if err := checkParams("param", r.Params, d.Params()); err != nil {
		return err
	}
	if err := checkParams("template param", r.TemplateParams, d.TemplateParams()); err != nil {
		return err
	}

	// 4) spans
	texts := []docinfo.Text{r.Summary}
	if r.Returns != nil {
		texts = append(texts, *r.Returns)
	}
	if r.NoexceptIf != nil {
		texts = append(texts, *r.NoexceptIf)
	}
	for _, p := range r.Params {
		texts = append(texts, p.Text)
	}
	for _, p := range r.TemplateParams {
		texts = append(texts, p.Text)
	}
	texts = append(texts, r.Pre...)
	texts = append(texts, r.Post...)
	texts = append(texts, r.Throws...)
	texts = append(texts, r.ExitsVia...)
	for _, t := range texts {
		if t.Span == (source.Span{}) {
			continue
		}
		if err := checkSpan(fs, t.Span); err != nil {
			return fmt.Errorf("text %q: %w", t.Text, err)
		}
	}
	return nil
}

func checkParams(what string, docs []docinfo.ParamDoc, params []decl.Param) error {
	seen := make(map[string]struct{}, len(docs))
	for _, p := range docs {
		if p.Index < 0 || p.Index >= len(params) {
			return fmt.Errorf("%s %q has index %d outside %d parameters", what, p.Name, p.Index, len(params))
		}
		if params[p.Index].Name != p.Name {
			return fmt.Errorf("%s %q points at %q", what, p.Name, params[p.Index].Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%s %q documented twice", what, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// CheckDiagnosticInvariants checks that primary, note and edit spans are
// well formed and that every edit guard matches the bytes it replaces.
// Diagnostics without a file (timings, index I/O) are skipped.
func CheckDiagnosticInvariants(items []diag.Diagnostic, fs *source.FileSet) error {
	for _, d := range items {
		if fs.Get(d.Primary.File) == nil {
			continue
		}
		if err := checkSpan(fs, d.Primary); err != nil {
			return fmt.Errorf("%s primary: %w", d.Code.ID(), err)
		}
		for _, n := range d.Notes {
			if err := checkSpan(fs, n.Span); err != nil {
				return fmt.Errorf("%s note %q: %w", d.Code.ID(), n.Msg, err)
			}
		}
		for _, f := range d.Fixes {
			for _, e := range f.Edits {
				if err := checkSpan(fs, e.Span); err != nil {
					return fmt.Errorf("%s fix %q: %w", d.Code.ID(), f.ID, err)
				}
				content := fs.Get(e.Span.File).Content
				if e.OldText != "" && string(content[e.Span.Start:e.Span.End]) != e.OldText {
					return fmt.Errorf("%s fix %q: guard %q does not match %q",
						d.Code.ID(), f.ID, e.OldText, content[e.Span.Start:e.Span.End])
				}
			}
		}
	}
	return nil
}

func checkSpan(fs *source.FileSet, sp source.Span) error {
	f := fs.Get(sp.File)
	if f == nil {
		return fmt.Errorf("span %v refers to unknown file", sp)
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End < sp.Start {
		return fmt.Errorf("inverted span: %v", sp)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	return nil
}
