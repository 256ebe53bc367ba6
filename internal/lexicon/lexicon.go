// Package lexicon holds the fixed table of documentation directives.
//
// The table is decoded once from the embedded lexicon.toml and is read-only
// afterwards, so lookups are safe from any goroutine.
package lexicon

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed lexicon.toml
var defaultData []byte

// Category is the closed set of directive kinds.
type Category uint8

const (
	CategoryInvalid Category = iota
	CategoryHeaderExport
	CategoryModuleExport
	CategoryParameter
	CategoryReturn
	CategoryPrecondition
	CategoryPostcondition
	CategoryThrows
	CategoryExitsVia
)

var categoryNames = map[Category]string{
	CategoryHeaderExport:  "header-export",
	CategoryModuleExport:  "module-export",
	CategoryParameter:     "parameter",
	CategoryReturn:        "return",
	CategoryPrecondition:  "precondition",
	CategoryPostcondition: "postcondition",
	CategoryThrows:        "throws",
	CategoryExitsVia:      "exits-via",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "invalid"
}

// ParseCategory maps the data-file spelling of a category to its value.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return CategoryInvalid, fmt.Errorf("unknown directive category %q", s)
}

// Entry is one recognised directive.
type Entry struct {
	Keyword  string
	Category Category
	Summary  string
	Aliases  []string
}

// Legacy describes a Doxygen command the table refuses. Replacement is nil
// when no directive supersedes it.
type Legacy struct {
	Keyword     string
	Replacement *Entry
}

// Table is an immutable directive lexicon.
type Table struct {
	entries  map[string]*Entry
	markers  map[string]string
	legacy   map[string]Legacy
	keywords []string
}

type fileFormat struct {
	Directive []struct {
		Keyword  string   `toml:"keyword"`
		Category string   `toml:"category"`
		Summary  string   `toml:"summary"`
		Aliases  []string `toml:"aliases"`
	} `toml:"directive"`
	Marker []struct {
		Keyword string `toml:"keyword"`
		Summary string `toml:"summary"`
	} `toml:"marker"`
	Unsupported struct {
		Keywords []string `toml:"keywords"`
	} `toml:"unsupported"`
}

// Parse builds a Table from TOML data in the lexicon.toml layout.
func Parse(data []byte) (*Table, error) {
	var raw fileFormat
	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("lexicon: failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("lexicon: unknown key %q", undecoded[0].String())
	}

	t := &Table{
		entries: make(map[string]*Entry, len(raw.Directive)),
		markers: make(map[string]string, len(raw.Marker)),
		legacy:  make(map[string]Legacy),
	}
	taken := func(kw string) bool {
		_, e := t.entries[kw]
		_, m := t.markers[kw]
		_, l := t.legacy[kw]
		return e || m || l
	}

	for _, d := range raw.Directive {
		if err := checkKeyword(d.Keyword); err != nil {
			return nil, err
		}
		if taken(d.Keyword) {
			return nil, fmt.Errorf("lexicon: keyword %q listed twice", d.Keyword)
		}
		cat, err := ParseCategory(d.Category)
		if err != nil {
			return nil, fmt.Errorf("lexicon: directive %q: %w", d.Keyword, err)
		}
		t.entries[d.Keyword] = &Entry{
			Keyword:  d.Keyword,
			Category: cat,
			Summary:  d.Summary,
			Aliases:  append([]string(nil), d.Aliases...),
		}
		t.keywords = append(t.keywords, d.Keyword)
	}

	for _, m := range raw.Marker {
		if err := checkKeyword(m.Keyword); err != nil {
			return nil, err
		}
		if taken(m.Keyword) {
			return nil, fmt.Errorf("lexicon: keyword %q listed twice", m.Keyword)
		}
		t.markers[m.Keyword] = m.Summary
	}

	for _, kw := range t.keywords {
		entry := t.entries[kw]
		for _, alias := range entry.Aliases {
			if err := checkKeyword(alias); err != nil {
				return nil, err
			}
			if taken(alias) {
				return nil, fmt.Errorf("lexicon: alias %q of %q clashes with another keyword", alias, kw)
			}
			t.legacy[alias] = Legacy{Keyword: alias, Replacement: entry}
		}
	}

	for _, kw := range raw.Unsupported.Keywords {
		if err := checkKeyword(kw); err != nil {
			return nil, err
		}
		if taken(kw) {
			return nil, fmt.Errorf("lexicon: unsupported command %q is already a keyword or alias", kw)
		}
		t.legacy[kw] = Legacy{Keyword: kw}
	}

	return t, nil
}

func checkKeyword(kw string) error {
	if kw == "" || strings.IndexFunc(kw, isSpace) >= 0 || strings.HasPrefix(kw, `\`) {
		return fmt.Errorf("lexicon: invalid keyword %q", kw)
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

var loadDefault = sync.OnceValue(func() *Table {
	t, err := Parse(defaultData)
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the built-in table.
func Default() *Table {
	return loadDefault()
}

// Lookup resolves a keyword against the built-in table.
func Lookup(keyword string) (*Entry, bool) {
	return Default().Lookup(keyword)
}

// Lookup resolves keyword exactly. Aliases never match here.
func (t *Table) Lookup(keyword string) (*Entry, bool) {
	e, ok := t.entries[keyword]
	return e, ok
}

// IsMarker reports whether keyword is accepted without producing content.
func (t *Table) IsMarker(keyword string) bool {
	_, ok := t.markers[keyword]
	return ok
}

// LookupLegacy reports whether keyword is a refused Doxygen command.
func (t *Table) LookupLegacy(keyword string) (Legacy, bool) {
	l, ok := t.legacy[keyword]
	return l, ok
}

// Entries returns the directives in table order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.keywords))
	for _, kw := range t.keywords {
		e := *t.entries[kw]
		e.Aliases = append([]string(nil), e.Aliases...)
		out = append(out, e)
	}
	return out
}

// Markers returns marker keywords sorted by name.
func (t *Table) Markers() []string {
	out := make([]string, 0, len(t.markers))
	for kw := range t.markers {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// Legacies returns every refused command sorted by keyword.
func (t *Table) Legacies() []Legacy {
	out := make([]Legacy, 0, len(t.legacy))
	for _, l := range t.legacy {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keyword < out[j].Keyword })
	return out
}
