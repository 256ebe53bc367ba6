package diagfmt

import (
	"fmt"
	"strings"

	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

// fixEditPreview holds the lines an edit touches, before and after it.
type fixEditPreview struct {
	before []string
	after  []string
}

func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	size := len(file.Content)
	if int(edit.Span.End) > size || edit.Span.Start > edit.Span.End {
		return fixEditPreview{}, fmt.Errorf("edit span %d..%d outside %s", edit.Span.Start, edit.Span.End, file.Path)
	}

	start, end := fs.Resolve(edit.Span)
	from, ok := file.LineStart(start.Line)
	if !ok {
		return fixEditPreview{}, fmt.Errorf("line %d outside %s", start.Line, file.Path)
	}
	to := size
	if next, ok := file.LineStart(max(end.Line, start.Line) + 1); ok {
		to = int(next)
	}

	block := string(file.Content[from:to])
	rel := int(edit.Span.Start - from)
	relEnd := int(edit.Span.End - from)
	after := block[:rel] + edit.NewText + block[relEnd:]

	return fixEditPreview{
		before: previewLines(block),
		after:  previewLines(after),
	}, nil
}

func previewLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
