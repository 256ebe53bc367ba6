// Package docinfo holds the structured documentation of one declaration.
package docinfo

import (
	"github.com/cjdb/schreiber/internal/decl"
	"github.com/cjdb/schreiber/internal/lexicon"
	"github.com/cjdb/schreiber/internal/source"
)

// Text is a piece of documentation with the span of the directive that
// produced it.
type Text struct {
	Text string      `json:"text" yaml:"text" msgpack:"text"`
	Span source.Span `json:"-" yaml:"-" msgpack:"-"`
}

// ParamDoc describes one parameter. Index points into the declaration's
// parameter (or template parameter) list.
type ParamDoc struct {
	Name  string `json:"name" yaml:"name" msgpack:"name"`
	Index int    `json:"index" yaml:"index" msgpack:"index"`
	Text  `yaml:",inline"`
}

// Record is the documentation of a single declaration.
type Record struct {
	Decl decl.Declaration `json:"-" yaml:"-" msgpack:"-"`

	Name        string `json:"name" yaml:"name" msgpack:"name"`
	Kind        string `json:"kind" yaml:"kind" msgpack:"kind"`
	CanonicalID string `json:"id" yaml:"id" msgpack:"id"`

	Summary        Text       `json:"summary" yaml:"summary" msgpack:"summary"`
	Returns        *Text      `json:"returns,omitempty" yaml:"returns,omitempty" msgpack:"returns,omitempty"`
	NoexceptIf     *Text      `json:"noexcept_if,omitempty" yaml:"noexcept_if,omitempty" msgpack:"noexcept_if,omitempty"`
	Params         []ParamDoc `json:"params,omitempty" yaml:"params,omitempty" msgpack:"params,omitempty"`
	TemplateParams []ParamDoc `json:"template_params,omitempty" yaml:"template_params,omitempty" msgpack:"template_params,omitempty"`
	Pre            []Text     `json:"pre,omitempty" yaml:"pre,omitempty" msgpack:"pre,omitempty"`
	Post           []Text     `json:"post,omitempty" yaml:"post,omitempty" msgpack:"post,omitempty"`
	Throws         []Text     `json:"throws,omitempty" yaml:"throws,omitempty" msgpack:"throws,omitempty"`
	ExitsVia       []Text     `json:"exits_via,omitempty" yaml:"exits_via,omitempty" msgpack:"exits_via,omitempty"`
	Headers        []string   `json:"headers,omitempty" yaml:"headers,omitempty" msgpack:"headers,omitempty"`
	Modules        []string   `json:"modules,omitempty" yaml:"modules,omitempty" msgpack:"modules,omitempty"`
}

// New starts an empty record for d. A nil declaration is a caller bug.
func New(d decl.Declaration) *Record {
	if d == nil {
		panic("docinfo: record for nil declaration")
	}
	return &Record{
		Decl:        d,
		Name:        d.Name(),
		Kind:        d.Kind().String(),
		CanonicalID: d.CanonicalID(),
	}
}

// Slot names where a validated directive lands. It is finer than
// lexicon.Category: a parameter directive may land in TemplateParams and a
// throws directive may land in NoexceptIf.
type Slot uint8

const (
	SlotSummary Slot = iota
	SlotHeaders
	SlotModules
	SlotParam
	SlotTemplateParam
	SlotReturns
	SlotNoexceptIf
	SlotPre
	SlotPost
	SlotThrows
	SlotExitsVia
)

// SlotOf maps a lexicon category to its default slot.
func SlotOf(c lexicon.Category) (Slot, bool) {
	switch c {
	case lexicon.CategoryHeaderExport:
		return SlotHeaders, true
	case lexicon.CategoryModuleExport:
		return SlotModules, true
	case lexicon.CategoryParameter:
		return SlotParam, true
	case lexicon.CategoryReturn:
		return SlotReturns, true
	case lexicon.CategoryPrecondition:
		return SlotPre, true
	case lexicon.CategoryPostcondition:
		return SlotPost, true
	case lexicon.CategoryThrows:
		return SlotThrows, true
	case lexicon.CategoryExitsVia:
		return SlotExitsVia, true
	}
	return SlotSummary, false
}

// Singleton reports whether the slot holds at most one value.
func (s Slot) Singleton() bool {
	return s == SlotReturns || s == SlotNoexceptIf
}

// Payload is what a validated directive contributes.
type Payload struct {
	Text  Text
	Name  string // parameter name for SlotParam and SlotTemplateParam
	Index int
	List  []string // already split entries for SlotHeaders and SlotModules
}

// Has reports whether a singleton slot is already filled.
func (r *Record) Has(s Slot) bool {
	switch s {
	case SlotReturns:
		return r.Returns != nil
	case SlotNoexceptIf:
		return r.NoexceptIf != nil
	}
	return false
}

// Store appends to repeatable slots and fills singletons. Duplicate checks
// happen before Store is called; a filled singleton is left untouched.
func (r *Record) Store(s Slot, p Payload) {
	switch s {
	case SlotSummary:
		r.Summary = p.Text
	case SlotHeaders:
		r.Headers = append(r.Headers, p.List...)
	case SlotModules:
		r.Modules = append(r.Modules, p.List...)
	case SlotParam:
		r.Params = append(r.Params, ParamDoc{Name: p.Name, Index: p.Index, Text: p.Text})
	case SlotTemplateParam:
		r.TemplateParams = append(r.TemplateParams, ParamDoc{Name: p.Name, Index: p.Index, Text: p.Text})
	case SlotReturns:
		if !r.Has(s) {
			t := p.Text
			r.Returns = &t
		}
	case SlotNoexceptIf:
		if !r.Has(s) {
			t := p.Text
			r.NoexceptIf = &t
		}
	case SlotPre:
		r.Pre = append(r.Pre, p.Text)
	case SlotPost:
		r.Post = append(r.Post, p.Text)
	case SlotThrows:
		r.Throws = append(r.Throws, p.Text)
	case SlotExitsVia:
		r.ExitsVia = append(r.ExitsVia, p.Text)
	}
}
