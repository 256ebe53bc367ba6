// Package decl is the boundary to the declaration provider. Everything the
// engine needs to know about a declaration is read through Declaration and
// never written back.
package decl

import (
	"fmt"

	"github.com/cjdb/schreiber/internal/comment"
	"github.com/cjdb/schreiber/internal/source"
)

// Param is one named parameter or template parameter.
type Param struct {
	Name string
	Span source.Span
}

// ExceptionSpec is the declaration's explicit exception specification.
type ExceptionSpec uint8

const (
	ExceptNone ExceptionSpec = iota
	ExceptNoexcept
	ExceptNoexceptIf
)

func (e ExceptionSpec) String() string {
	switch e {
	case ExceptNone:
		return "none"
	case ExceptNoexcept:
		return "noexcept"
	case ExceptNoexceptIf:
		return "noexcept-if"
	}
	return fmt.Sprintf("except(%d)", e)
}

// ParseExceptionSpec reads the index spelling; "" means none.
func ParseExceptionSpec(s string) (ExceptionSpec, error) {
	switch s {
	case "", "none":
		return ExceptNone, nil
	case "noexcept":
		return ExceptNoexcept, nil
	case "noexcept-if":
		return ExceptNoexceptIf, nil
	}
	return ExceptNone, fmt.Errorf("unknown exception specification %q", s)
}

// Declaration is what the engine consumes from the provider.
type Declaration interface {
	Kind() Kind
	// Name is the spelling used in messages, e.g. "div", "~yonkō", "operator=".
	Name() string
	// Parent is the enclosing record's name, empty at namespace scope.
	Parent() string
	// CanonicalID is identical for every redeclaration of one entity.
	CanonicalID() string
	Location() source.Span
	Params() []Param
	TemplateParams() []Param
	ExceptionSpec() ExceptionSpec
	ReturnsVoid() bool
	// IsLocal reports a function-scope declaration.
	IsLocal() bool
	// Comment is the attached documentation comment, nil when there is none.
	Comment() *comment.Raw
}

// Decl is a plain Declaration used by the index frontend and by tests.
type Decl struct {
	DeclKind    Kind
	DeclName    string
	ParentName  string
	ID          string
	Loc         source.Span
	Parameters  []Param
	TParameters []Param
	Except      ExceptionSpec
	Void        bool
	Local       bool
	Doc         *comment.Raw
}

var _ Declaration = (*Decl)(nil)

func (d *Decl) Kind() Kind                   { return d.DeclKind }
func (d *Decl) Name() string                 { return d.DeclName }
func (d *Decl) Parent() string               { return d.ParentName }
func (d *Decl) Location() source.Span        { return d.Loc }
func (d *Decl) Params() []Param              { return d.Parameters }
func (d *Decl) TemplateParams() []Param      { return d.TParameters }
func (d *Decl) ExceptionSpec() ExceptionSpec { return d.Except }
func (d *Decl) ReturnsVoid() bool            { return d.Void }
func (d *Decl) IsLocal() bool                { return d.Local }
func (d *Decl) Comment() *comment.Raw        { return d.Doc }

// CanonicalID falls back to the name when the provider gave no identity.
func (d *Decl) CanonicalID() string {
	if d.ID != "" {
		return d.ID
	}
	return d.DeclName
}

// FindParam returns the index of the parameter called name, or -1.
func FindParam(params []Param, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Describe renders the subject of an "is not documented" message, e.g.
// "member function 'f'", "move constructor for 'c'" or "class 'c'".
// ok is false for kinds that are never diagnosed.
func Describe(d Declaration) (subject string, ok bool) {
	k := d.Kind()
	if !k.Classified() {
		return "", false
	}
	parent := d.Parent()
	if parent == "" {
		return fmt.Sprintf("%s '%s'", k.Word(), d.Name()), true
	}
	if k.IsSpecialMember() {
		return fmt.Sprintf("%s for '%s'", k.Word(), parent), true
	}
	if prefix := k.MemberPrefix(); prefix != "" {
		return fmt.Sprintf("%s %s '%s'", prefix, k.Word(), d.Name()), true
	}
	return fmt.Sprintf("%s '%s'", k.Word(), d.Name()), true
}
