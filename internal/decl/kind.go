package decl

import "fmt"

// Kind is the closed set of declaration categories. The provider translates
// its native kinds into this set once, at the boundary.
type Kind uint8

const (
	// KindOther is a valid declaration the engine does not classify.
	KindOther Kind = iota
	KindClass
	KindStruct
	KindUnion
	KindClassTemplate
	KindEnum
	KindEnumerator
	KindConcept
	KindFunction
	KindFunctionTemplate
	KindVariable
	KindVariableTemplate
	KindDataMember
	KindTypeAlias
	KindTypeAliasTemplate
	KindTypedef
	KindConstructor
	KindDefaultConstructor
	KindCopyConstructor
	KindMoveConstructor
	KindCopyAssignment
	KindMoveAssignment
	KindDestructor
	KindConversion
	KindDeductionGuide
)

var kindNames = [...]string{
	KindOther:              "other",
	KindClass:              "class",
	KindStruct:             "struct",
	KindUnion:              "union",
	KindClassTemplate:      "class-template",
	KindEnum:               "enum",
	KindEnumerator:         "enumerator",
	KindConcept:            "concept",
	KindFunction:           "function",
	KindFunctionTemplate:   "function-template",
	KindVariable:           "variable",
	KindVariableTemplate:   "variable-template",
	KindDataMember:         "data-member",
	KindTypeAlias:          "type-alias",
	KindTypeAliasTemplate:  "type-alias-template",
	KindTypedef:            "typedef",
	KindConstructor:        "constructor",
	KindDefaultConstructor: "default-constructor",
	KindCopyConstructor:    "copy-constructor",
	KindMoveConstructor:    "move-constructor",
	KindCopyAssignment:     "copy-assignment",
	KindMoveAssignment:     "move-assignment",
	KindDestructor:         "destructor",
	KindConversion:         "conversion",
	KindDeductionGuide:     "deduction-guide",
}

// message nouns; KindOther has none and is never diagnosed
var kindWords = [...]string{
	KindClass:              "class",
	KindStruct:             "struct",
	KindUnion:              "union",
	KindClassTemplate:      "class template",
	KindEnum:               "enum",
	KindEnumerator:         "enumerator",
	KindConcept:            "concept",
	KindFunction:           "function",
	KindFunctionTemplate:   "function template",
	KindVariable:           "variable",
	KindVariableTemplate:   "variable template",
	KindDataMember:         "data member",
	KindTypeAlias:          "type alias",
	KindTypeAliasTemplate:  "type alias template",
	KindTypedef:            "typedef",
	KindConstructor:        "constructor",
	KindDefaultConstructor: "default constructor",
	KindCopyConstructor:    "copy constructor",
	KindMoveConstructor:    "move constructor",
	KindCopyAssignment:     "copy assignment operator",
	KindMoveAssignment:     "move assignment operator",
	KindDestructor:         "destructor",
	KindConversion:         "conversion function",
	KindDeductionGuide:     "deduction guide",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind reads the index spelling of a kind. "namespace" is accepted and
// maps to KindOther.
func ParseKind(s string) (Kind, error) {
	if s == "namespace" {
		return KindOther, nil
	}
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindOther, fmt.Errorf("unknown declaration kind %q", s)
}

// Word is the noun used in messages, empty for unclassified kinds.
func (k Kind) Word() string {
	if int(k) < len(kindWords) {
		return kindWords[k]
	}
	return ""
}

// Classified reports whether undocumented declarations of this kind are diagnosed.
func (k Kind) Classified() bool {
	return k.Word() != ""
}

// IsFunctionLike reports whether the declaration has a parameter list.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunction, KindFunctionTemplate,
		KindConstructor, KindDefaultConstructor, KindCopyConstructor, KindMoveConstructor,
		KindCopyAssignment, KindMoveAssignment, KindDestructor, KindConversion, KindDeductionGuide:
		return true
	}
	return false
}

// IsTemplate reports whether the declaration introduces template parameters.
func (k Kind) IsTemplate() bool {
	switch k {
	case KindClassTemplate, KindFunctionTemplate, KindVariableTemplate, KindTypeAliasTemplate, KindConcept:
		return true
	}
	return false
}

// IsSpecialMember reports constructors, assignment operators and destructors.
func (k Kind) IsSpecialMember() bool {
	switch k {
	case KindConstructor, KindDefaultConstructor, KindCopyConstructor, KindMoveConstructor,
		KindCopyAssignment, KindMoveAssignment, KindDestructor:
		return true
	}
	return false
}

// MemberPrefix is the word put before a member's noun: "member function",
// "nested class". Kinds that read fine on their own return "".
func (k Kind) MemberPrefix() string {
	switch k {
	case KindFunction, KindFunctionTemplate, KindTypeAlias, KindTypeAliasTemplate, KindTypedef:
		return "member"
	case KindClass, KindClassTemplate, KindEnum, KindStruct, KindUnion, KindVariableTemplate:
		return "nested"
	}
	return ""
}
