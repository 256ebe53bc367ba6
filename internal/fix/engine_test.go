package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

const legacySource = "/// \\return the quotient\n/// \\a denom\nint div(int num, int denom);\n"

// legacyDiag builds the diagnostic the scanner reports for '\return' at
// offset 5.
func legacyDiag(file source.FileID, id string, start uint32, old, repl string) diag.Diagnostic {
	kw := source.Span{File: file, Start: start, End: start + uint32(len(old))}
	d := diag.NewWarning(diag.ScanLegacyDirective, source.Span{File: file, Start: start - 1, End: start}, "legacy")
	return d.WithFixSuggestion(ReplaceSpan("replace", kw, repl, old, WithID(id), Preferred()))
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGatherCandidatesSkipsDuplicateFixIDs(t *testing.T) {
	span := source.Span{File: 0, Start: 0, End: 0}
	diagnostics := []diag.Diagnostic{{
		Code:    diag.ScanLegacyDirective,
		Message: "legacy",
		Primary: span,
		Fixes: []diag.Fix{
			{ID: "fix-duplicate", Title: "first", Edits: []diag.TextEdit{{Span: span, NewText: "x"}}},
			{ID: "fix-duplicate", Title: "again", Edits: []diag.TextEdit{{Span: span, NewText: "x"}}},
			{ID: "empty", Title: "nothing"},
		},
	}}

	candidates, skips := gatherCandidates(diagnostics)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if len(skips) != 2 {
		t.Fatalf("expected 2 skipped fixes, got %d", len(skips))
	}
	if skips[0].ID != "fix-duplicate" || skips[0].Reason != "duplicate fix id" {
		t.Fatalf("unexpected skip %+v", skips[0])
	}
	if skips[1].Reason != "fix has no edits" {
		t.Fatalf("unexpected skip %+v", skips[1])
	}
}

func TestGatherCandidatesSynthesisesIDs(t *testing.T) {
	span := source.Span{File: 2, Start: 7, End: 8}
	diagnostics := []diag.Diagnostic{{
		Code:    diag.ScanLegacyDirective,
		Primary: span,
		Fixes:   []diag.Fix{{Edits: []diag.TextEdit{{Span: span, NewText: "x"}}}},
	}}
	candidates, _ := gatherCandidates(diagnostics)
	if len(candidates) != 1 || candidates[0].fix.ID != "SCN1003-2-7-0" {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
}

func TestApplyAllWritesFile(t *testing.T) {
	path := writeTemp(t, "div.cc", legacySource)
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	diagnostics := []diag.Diagnostic{
		legacyDiag(id, "legacy-return", 5, "return", "returns"),
		legacyDiag(id, "legacy-a", 30, "a", "param"),
	}
	res, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 2 || len(res.FileChanges) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.FileChanges[0].EditCount != 2 {
		t.Errorf("edit count = %d", res.FileChanges[0].EditCount)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "/// \\returns the quotient\n/// \\param denom\nint div(int num, int denom);\n"
	if string(got) != want {
		t.Fatalf("file content = %q, want %q", got, want)
	}
}

func TestApplyOncePicksFirst(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("div.cc", []byte(legacySource))
	diagnostics := []diag.Diagnostic{
		legacyDiag(id, "legacy-a", 30, "a", "param"),
		legacyDiag(id, "legacy-return", 5, "return", "returns"),
	}

	res, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeOnce, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "legacy-return" {
		t.Fatalf("expected the earliest fix, got %+v", res.Applied)
	}
	want := "/// \\returns the quotient\n/// \\a denom\nint div(int num, int denom);\n"
	if string(res.FileChanges[0].Content) != want {
		t.Fatalf("content = %q", res.FileChanges[0].Content)
	}
}

func TestApplyByID(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("div.cc", []byte(legacySource))
	diagnostics := []diag.Diagnostic{
		legacyDiag(id, "legacy-return", 5, "return", "returns"),
		legacyDiag(id, "legacy-a", 30, "a", "param"),
	}

	res, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeID, TargetID: "legacy-a", DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "legacy-a" {
		t.Fatalf("unexpected applied %+v", res.Applied)
	}

	_, err = Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeID, TargetID: "missing", DryRun: true})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
}

func TestApplyRefusesStaleText(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("div.cc", []byte(legacySource))
	d := legacyDiag(id, "stale", 5, "result", "returns")

	res, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "existing text does not match expected content" {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}
}

func TestApplySkipsConflicts(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("div.cc", []byte(legacySource))
	first := legacyDiag(id, "first", 5, "return", "returns")
	second := legacyDiag(id, "second", 5, "return", "result")

	res, err := Apply(fs, []diag.Diagnostic{first, second}, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "first" {
		t.Fatalf("unexpected applied %+v", res.Applied)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != "second" {
		t.Fatalf("unexpected skipped %+v", res.Skipped)
	}
}

func TestApplySkipsUnsafeInAllMode(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("div.cc", []byte(legacySource))
	d := legacyDiag(id, "risky", 5, "return", "returns")
	d.Fixes[0].Applicability = diag.FixApplicabilityManualReview

	res, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "applicability is manual-review" {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}
}

func TestApplyRefusesVirtualFilesOnWrite(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("div.cc", []byte(legacySource))
	d := legacyDiag(id, "legacy-return", 5, "return", "returns")

	res, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if res.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("unexpected skip %+v", res.Skipped[0])
	}
}

func TestApplyRestoresCRLF(t *testing.T) {
	path := writeTemp(t, "crlf.cc", "/// \\return x\r\nint f();\r\n")
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	d := legacyDiag(id, "legacy-return", 5, "return", "returns")

	if _, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "/// \\returns x\r\nint f();\r\n" {
		t.Fatalf("file content = %q", got)
	}
}

func TestSpansConflict(t *testing.T) {
	edit := func(s, e uint32) diag.TextEdit { return diag.TextEdit{Span: source.Span{Start: s, End: e}} }
	tests := []struct {
		name string
		a, b diag.TextEdit
		want bool
	}{
		{"two insertions", edit(3, 3), edit(3, 3), false},
		{"insertion inside", edit(4, 4), edit(2, 6), true},
		{"insertion at end", edit(6, 6), edit(2, 6), false},
		{"overlap", edit(0, 4), edit(3, 8), true},
		{"adjacent", edit(0, 3), edit(3, 8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spansConflict(tt.a, tt.b); got != tt.want {
				t.Fatalf("spansConflict = %v, want %v", got, tt.want)
			}
		})
	}
}
