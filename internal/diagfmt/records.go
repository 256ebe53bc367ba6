package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/cjdb/schreiber/internal/docinfo"
	"github.com/cjdb/schreiber/internal/source"
)

// RecordFormat selects how documentation records are serialised.
type RecordFormat uint8

const (
	RecordsJSON RecordFormat = iota
	RecordsYAML
	RecordsMsgpack
)

func ParseRecordFormat(s string) (RecordFormat, error) {
	switch s {
	case "", "json":
		return RecordsJSON, nil
	case "yaml", "yml":
		return RecordsYAML, nil
	case "msgpack", "mp":
		return RecordsMsgpack, nil
	}
	return RecordsJSON, fmt.Errorf("unknown records format %q", s)
}

// RecordJSON is one record with the location of its declaration.
type RecordJSON struct {
	docinfo.Record `yaml:",inline" msgpack:",inline"`

	File   string `json:"file,omitempty" yaml:"file,omitempty" msgpack:"file,omitempty"`
	Line   uint32 `json:"line,omitempty" yaml:"line,omitempty" msgpack:"line,omitempty"`
	Column uint32 `json:"column,omitempty" yaml:"column,omitempty" msgpack:"column,omitempty"`
}

// RecordsOutput is the root of every records document.
type RecordsOutput struct {
	Records []RecordJSON `json:"records" yaml:"records" msgpack:"records"`
	Count   int          `json:"count" yaml:"count" msgpack:"count"`
}

// BuildRecordsOutput attaches declaration locations to records.
func BuildRecordsOutput(records []*docinfo.Record, fs *source.FileSet, mode PathMode) RecordsOutput {
	out := RecordsOutput{Records: make([]RecordJSON, 0, len(records))}
	for _, r := range records {
		entry := RecordJSON{Record: *r}
		if r.Decl != nil && fs != nil {
			loc := r.Decl.Location()
			if f := fs.Get(loc.File); f != nil {
				start, _ := fs.Resolve(loc)
				entry.File = formatPath(fs, f, mode)
				entry.Line = start.Line
				entry.Column = start.Col
			}
		}
		out.Records = append(out.Records, entry)
	}
	out.Count = len(out.Records)
	return out
}

// Records writes records in the requested format.
func Records(w io.Writer, records []*docinfo.Record, fs *source.FileSet, mode PathMode, format RecordFormat) error {
	out := BuildRecordsOutput(records, fs, mode)
	switch format {
	case RecordsYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case RecordsMsgpack:
		return msgpack.NewEncoder(w).Encode(out)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}
