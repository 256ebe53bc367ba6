// Package frontend stands in for the declaration provider. It reads a
// declaration index (YAML, or JSON, which YAML accepts), loads the source
// files it names and attaches each declaration's documentation comment.
package frontend

import (
	"errors"
	"fmt"
	"os"

	"fortio.org/safecast"
	"gopkg.in/yaml.v3"

	"github.com/cjdb/schreiber/internal/source"
)

// ErrNoDeclarations is returned for an index that lists nothing.
var ErrNoDeclarations = errors.New("declaration index lists no declarations")

// ParamEntry is a parameter as the index spells it. Line and Column are
// optional.
type ParamEntry struct {
	Name   string `yaml:"name" json:"name"`
	Line   uint32 `yaml:"line,omitempty" json:"line,omitempty"`
	Column uint32 `yaml:"column,omitempty" json:"column,omitempty"`
}

// Entry is one declaration of the index. Line and Column locate the name;
// BeginLine is the first line of the whole declaration (a template header,
// say) and defaults to Line. The comment is looked up above BeginLine.
type Entry struct {
	Kind           string       `yaml:"kind" json:"kind"`
	Name           string       `yaml:"name" json:"name"`
	ID             string       `yaml:"id,omitempty" json:"id,omitempty"`
	File           string       `yaml:"file" json:"file"`
	Line           uint32       `yaml:"line" json:"line"`
	Column         uint32       `yaml:"column" json:"column"`
	BeginLine      uint32       `yaml:"begin_line,omitempty" json:"begin_line,omitempty"`
	Parent         string       `yaml:"parent,omitempty" json:"parent,omitempty"`
	Local          bool         `yaml:"local,omitempty" json:"local,omitempty"`
	ReturnsVoid    bool         `yaml:"returns_void,omitempty" json:"returns_void,omitempty"`
	Exception      string       `yaml:"exception,omitempty" json:"exception,omitempty"`
	Params         []ParamEntry `yaml:"params,omitempty" json:"params,omitempty"`
	TemplateParams []ParamEntry `yaml:"template_params,omitempty" json:"template_params,omitempty"`

	// Pos is where the entry starts inside the index file.
	Pos source.LineCol `yaml:"-" json:"-"`
}

// Index is a decoded declaration index.
type Index struct {
	Path    string // "" for in-memory indexes
	Data    []byte
	Root    string // directory the entry paths are relative to
	Entries []Entry
}

type indexDoc struct {
	Root         string      `yaml:"root"`
	Declarations []yaml.Node `yaml:"declarations"`
}

// ReadIndex loads and decodes the index at path.
func ReadIndex(path string) (*Index, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read declaration index: %w", err)
	}
	idx, err := ParseIndex(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	idx.Path = path
	return idx, nil
}

// ParseIndex decodes index data. Every entry remembers its own position so
// problems can be reported against the index file.
func ParseIndex(data []byte) (*Index, error) {
	var doc indexDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode declaration index: %w", err)
	}
	if len(doc.Declarations) == 0 {
		return nil, ErrNoDeclarations
	}

	idx := &Index{Data: data, Root: doc.Root, Entries: make([]Entry, 0, len(doc.Declarations))}
	for i := range doc.Declarations {
		node := &doc.Declarations[i]
		var e Entry
		if err := node.Decode(&e); err != nil {
			return nil, fmt.Errorf("declaration %d (line %d): %w", i, node.Line, err)
		}
		e.Pos = source.LineCol{Line: toU32(node.Line), Col: toU32(node.Column)}
		idx.Entries = append(idx.Entries, e)
	}
	return idx, nil
}

// Files returns the distinct entry paths in first-seen order.
func (idx *Index) Files() []string {
	seen := make(map[string]struct{}, len(idx.Entries))
	var out []string
	for _, e := range idx.Entries {
		if _, ok := seen[e.File]; ok || e.File == "" {
			continue
		}
		seen[e.File] = struct{}{}
		out = append(out, e.File)
	}
	return out
}

func toU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0
	}
	return v
}
