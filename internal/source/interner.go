package source

import (
	"slices"
)

// StringID is a compact handle for an interned string.
type StringID uint32

const NoStringID StringID = 0

// Interner maps strings to dense ids. Not safe for concurrent use.
type Interner struct {
	byID  []string            // byID[0] = "" для NoStringID
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern returns the id of s, allocating one on first sight.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}

	// собственная копия, чтобы не держать исходный буфер
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Find returns the id of s without interning it.
func (i *Interner) Find(s string) (StringID, bool) {
	id, ok := i.index[s]
	return id, ok
}

// Lookup возвращает строку по ID.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup паникует, если ID не валиден.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len counts NoStringID too, so it is never below 1.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of every interned string, indexed by id.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
