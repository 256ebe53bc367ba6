package docparse

import (
	"fmt"
	"strings"

	"github.com/cjdb/schreiber/internal/decl"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/docinfo"
	"github.com/cjdb/schreiber/internal/lexicon"
	"github.com/cjdb/schreiber/internal/scan"
	"github.com/cjdb/schreiber/internal/source"
)

const previousDefinition = "previous definition is here"

// declState is the per-declaration bookkeeping for uniqueness checks.
type declState struct {
	decl       decl.Declaration
	rec        *docinfo.Record
	singletons map[docinfo.Slot]source.Span
	params     map[string]source.Span
}

func newDeclState(d decl.Declaration, rec *docinfo.Record) *declState {
	return &declState{
		decl:       d,
		rec:        rec,
		singletons: make(map[docinfo.Slot]source.Span),
		params:     make(map[string]source.Span),
	}
}

// subject names the declaration inside messages: "function 'div'".
func (st *declState) subject() string {
	word := st.decl.Kind().Word()
	if word == "" {
		word = "declaration"
	}
	return fmt.Sprintf("%s '%s'", word, st.decl.Name())
}

// validate checks d against the declaration. ok is false when the directive
// was reported and must contribute nothing.
func (s *Session) validate(st *declState, d *scan.Directive, e *lexicon.Entry) (slot docinfo.Slot, p docinfo.Payload, ok bool) {
	slot, known := docinfo.SlotOf(e.Category)
	if !known {
		return slot, p, false
	}
	text := docinfo.Text{Text: d.Description, Span: d.Span}

	switch e.Category {
	case lexicon.CategoryParameter:
		return s.validateParam(st, d, e, text)

	case lexicon.CategoryReturn:
		if st.decl.ReturnsVoid() {
			diag.ReportWarning(s.reporter, diag.DocReturnsOnVoid, d.Escape,
				fmt.Sprintf("'\\%s' is ignored because %s returns void", e.Keyword, st.subject())).Emit()
			return slot, p, false
		}

	case lexicon.CategoryThrows:
		switch st.decl.ExceptionSpec() {
		case decl.ExceptNoexcept:
			diag.ReportWarning(s.reporter, diag.DocThrowsOnNoexcept, d.Escape,
				fmt.Sprintf("'\\%s' is ignored because %s is declared noexcept", e.Keyword, st.subject())).Emit()
			return slot, p, false
		case decl.ExceptNoexceptIf:
			if st.decl.Kind().IsTemplate() {
				slot = docinfo.SlotNoexceptIf
			}
		}

	case lexicon.CategoryHeaderExport, lexicon.CategoryModuleExport:
		return slot, docinfo.Payload{Text: text, List: splitList(d.Description)}, true
	}

	if slot.Singleton() {
		return s.singleton(st, d, e, slot, text)
	}
	return slot, docinfo.Payload{Text: text}, true
}

// repeatedCodes is the error for a second directive in a singleton slot.
var repeatedCodes = map[docinfo.Slot]diag.Code{
	docinfo.SlotReturns:    diag.DocRepeatedReturns,
	docinfo.SlotNoexceptIf: diag.DocRepeatedNoexceptIf,
}

func (s *Session) singleton(st *declState, d *scan.Directive, e *lexicon.Entry, slot docinfo.Slot, text docinfo.Text) (docinfo.Slot, docinfo.Payload, bool) {
	if first, seen := st.singletons[slot]; seen {
		diag.ReportError(s.reporter, repeatedCodes[slot], d.Escape,
			fmt.Sprintf("repeated '\\%s' directive for %s", e.Keyword, st.subject())).
			WithNote(first, previousDefinition).
			Emit()
		return slot, docinfo.Payload{}, false
	}
	st.singletons[slot] = d.Escape
	return slot, docinfo.Payload{Text: text}, true
}

func (s *Session) validateParam(st *declState, d *scan.Directive, e *lexicon.Entry, text docinfo.Text) (docinfo.Slot, docinfo.Payload, bool) {
	name := d.Arg
	slot := docinfo.SlotParam
	idx := decl.FindParam(st.decl.Params(), name)
	template := st.decl.Kind().IsTemplate()
	if idx < 0 && template {
		if idx = decl.FindParam(st.decl.TemplateParams(), name); idx >= 0 {
			slot = docinfo.SlotTemplateParam
		}
	}

	if idx < 0 || name == "" {
		what, which := "a parameter", "parameters"
		if template {
			what, which = "a parameter or template parameter", "parameters or template parameters"
		}
		diag.ReportError(s.reporter, diag.DocUnknownParam, d.ArgSpan,
			fmt.Sprintf("documented parameter '%s' does not map to %s in this declaration of '%s'", name, what, st.decl.Name())).
			WithNote(d.ArgSpan, fmt.Sprintf("the word immediately after '\\%s' must name one of the %s in the %s declaration",
				e.Keyword, which, declNoun(st.decl.Kind()))).
			Emit()
		return slot, docinfo.Payload{}, false
	}

	if first, seen := st.params[name]; seen {
		diag.ReportError(s.reporter, diag.DocRepeatedParam, d.Escape,
			fmt.Sprintf("repeated '\\%s' directive for parameter '%s' in %s", e.Keyword, name, st.subject())).
			WithNote(first, previousDefinition).
			Emit()
		return slot, docinfo.Payload{}, false
	}
	st.params[name] = d.Escape

	text.Text = strings.TrimSpace(strings.TrimPrefix(d.Description, name))
	return slot, docinfo.Payload{Text: text, Name: name, Index: idx}, true
}

func declNoun(k decl.Kind) string {
	if k.IsFunctionLike() {
		return "function"
	}
	if w := k.Word(); w != "" {
		return w
	}
	return "entity"
}

// splitList reads a comma separated export list. Every field is kept,
// trimmed, so "a,,b" has an empty middle entry; a blank list has none.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
