package diag

import (
	"testing"

	"github.com/cjdb/schreiber/internal/source"
)

func TestBagLimitAndDropped(t *testing.T) {
	bag := NewBag(2)
	for i := range 3 {
		bag.Add(NewWarning(ScanUnknownDirective, source.At(0, uint32(i)), "unknown directive '\\buggy'"))
	}
	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("Len=%d Dropped=%d, want 2 and 1", bag.Len(), bag.Dropped())
	}
	if bag.HasErrors() {
		t.Error("warnings only, HasErrors must be false")
	}
	if !bag.HasWarnings() {
		t.Error("HasWarnings must be true")
	}
}

func TestBagSortOrdersBySpanThenSeverity(t *testing.T) {
	bag := NewBag(0)
	bag.Add(NewWarning(UndocDecl, source.Span{File: 0, Start: 40, End: 44}, "b"))
	bag.Add(NewWarning(ScanLegacyDirective, source.Span{File: 0, Start: 4, End: 10}, "a"))
	bag.Add(NewError(DocRepeatedReturns, source.Span{File: 0, Start: 4, End: 10}, "c"))

	bag.Sort()
	items := bag.Items()
	if items[0].Code != DocRepeatedReturns || items[1].Code != ScanLegacyDirective || items[2].Code != UndocDecl {
		t.Fatalf("unexpected order: %v %v %v", items[0].Code, items[1].Code, items[2].Code)
	}
}

func TestBagFilterTransformMerge(t *testing.T) {
	a := NewBag(1)
	a.Add(NewWarning(ScanUnknownDirective, source.At(0, 1), "w"))
	b := NewBag(0)
	b.Add(NewError(DocUnknownParam, source.At(0, 2), "e"))

	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("Merge must grow the limit, Len=%d", a.Len())
	}

	a.Transform(func(d Diagnostic) Diagnostic {
		if d.Severity == SevWarning {
			d.Severity = SevError
		}
		return d
	})
	a.Filter(func(d Diagnostic) bool { return d.Code != DocUnknownParam })
	if a.Len() != 1 || a.Items()[0].Severity != SevError {
		t.Fatalf("unexpected items after transform/filter: %+v", a.Items())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, DocRepeatedReturns, source.At(0, 5), "repeated '\\returns' directive for function 'cube'").
		WithNote(source.At(0, 1), "previous definition is here").
		WithFix("rename", TextEdit{Span: source.Span{Start: 5, End: 6}, NewText: "x"})
	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("Emit must be idempotent, got %d diagnostics", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Fatalf("notes=%d fixes=%d", len(d.Notes), len(d.Fixes))
	}
	if d.Fixes[0].Applicability != FixApplicabilityAlwaysSafe || d.Fixes[0].Kind != FixKindQuickFix {
		t.Errorf("WithFix defaults = %v/%v", d.Fixes[0].Applicability, d.Fixes[0].Kind)
	}
}

func TestUniqueReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewUniqueReporter(BagReporter{Bag: bag})
	span := source.Span{File: 0, Start: 6, End: 11}
	r.Report(UndocDecl, SevWarning, span, "class 'yonkō' is not documented", nil, nil)
	r.Report(UndocDecl, SevWarning, span, "class 'yonkō' is not documented", nil, nil)
	MultiReporter{r, NopReporter{}}.Report(UndocDecl, SevWarning, span, "struct 'crew' is not documented", nil, nil)

	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
	if r.Suppressed() != 1 {
		t.Errorf("Suppressed() = %d, want 1", r.Suppressed())
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		ScanLoneEscape:  "SCN1001",
		DocUnknownParam: "DOC2001",
		UndocDecl:       "UND3001",
		IOLoadFileError: "IO4001",
		IdxUnknownKind:  "IDX5001",
		ObsTimings:      "OBS6001",
		UnknownCode:     "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Errorf("unknown code title = %q", Code(9999).Title())
	}
}
