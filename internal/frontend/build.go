package frontend

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cjdb/schreiber/internal/comment"
	"github.com/cjdb/schreiber/internal/decl"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

// builder turns index entries into declarations.
type builder struct {
	fs     *source.FileSet
	res    *Result
	ids    map[string]source.FileID
	failed map[string]error
	cache  *lru.Cache[blockKey, *comment.Raw]
	format comment.FormatOptions
	seen   map[string]source.LineCol
}

func (b *builder) reporter() diag.Reporter {
	return diag.BagReporter{Bag: b.res.Bag}
}

// at points into the index file.
func (b *builder) at(pos source.LineCol) source.Span {
	off, ok := b.fs.Offset(b.res.IndexID, pos)
	if !ok {
		return source.At(b.res.IndexID, 0)
	}
	return source.At(b.res.IndexID, off)
}

func (b *builder) build(e *Entry) *decl.Decl {
	here := b.at(e.Pos)
	r := b.reporter()

	if e.File == "" {
		diag.ReportError(r, diag.IdxMissingFile, here,
			fmt.Sprintf("declaration '%s' does not name a file", e.Name)).Emit()
		return nil
	}
	if err, ok := b.failed[e.File]; ok {
		if err != nil {
			diag.ReportError(r, diag.IOLoadFileError, here, fmt.Sprintf("failed to load file: %v", err)).Emit()
			b.failed[e.File] = nil // once per file
		}
		return nil
	}
	file, ok := b.ids[e.File]
	if !ok {
		diag.ReportError(r, diag.IdxMissingFile, here,
			fmt.Sprintf("declaration '%s' refers to '%s', which was not loaded", e.Name, e.File)).Emit()
		return nil
	}

	kind, err := decl.ParseKind(e.Kind)
	if err != nil {
		diag.ReportError(r, diag.IdxUnknownKind, here,
			fmt.Sprintf("declaration '%s': %v", e.Name, err)).Emit()
		return nil
	}
	except, err := decl.ParseExceptionSpec(e.Exception)
	if err != nil {
		diag.ReportError(r, diag.IdxUnknownKind, here,
			fmt.Sprintf("declaration '%s': %v", e.Name, err)).Emit()
		return nil
	}

	pos := source.LineCol{Line: e.Line, Col: e.Column}
	off, ok := b.fs.Offset(file, pos)
	if !ok {
		diag.ReportError(r, diag.IdxBadLocation, here,
			fmt.Sprintf("declaration '%s' is at %s, outside %s", e.Name, pos, e.File)).Emit()
		return nil
	}

	key := fmt.Sprintf("%s\x00%s\x00%s", e.ID, e.File, pos)
	if first, dup := b.seen[key]; dup {
		diag.ReportWarning(r, diag.IdxDuplicateKey, here,
			fmt.Sprintf("declaration '%s' is listed more than once", e.Name)).
			WithNote(b.at(first), "first listed here").
			Emit()
		return nil
	}
	b.seen[key] = e.Pos

	begin := e.BeginLine
	if begin == 0 || begin > e.Line {
		begin = e.Line
	}
	raw, err := b.comment(file, begin)
	if err != nil {
		diag.ReportError(r, diag.IdxBadLocation, here,
			fmt.Sprintf("declaration '%s': %v", e.Name, err)).Emit()
		return nil
	}

	return &decl.Decl{
		DeclKind:    kind,
		DeclName:    e.Name,
		ParentName:  e.Parent,
		ID:          e.ID,
		Loc:         b.nameSpan(file, off, e.Name),
		Parameters:  b.params(file, off, e.Params),
		TParameters: b.params(file, off, e.TemplateParams),
		Except:      except,
		Void:        e.ReturnsVoid,
		Local:       e.Local,
		Doc:         raw,
	}
}

// comment returns the block above line, shared between declarations that
// sit on the same line.
func (b *builder) comment(file source.FileID, line uint32) (*comment.Raw, error) {
	key := blockKey{file: file, line: line}
	if raw, ok := b.cache.Get(key); ok {
		return raw, nil
	}
	raw, err := comment.Attach(b.fs, file, line, b.format)
	if err != nil {
		return nil, err
	}
	b.cache.Add(key, raw)
	return raw, nil
}

// nameSpan covers the name when the source spells it at off.
func (b *builder) nameSpan(file source.FileID, off uint32, name string) source.Span {
	content := b.fs.Get(file).Content
	end := int(off) + len(name)
	if name != "" && end <= len(content) && string(content[off:end]) == name {
		return source.Span{File: file, Start: off, End: off + uint32(len(name))}
	}
	return source.At(file, off)
}

func (b *builder) params(file source.FileID, declOff uint32, entries []ParamEntry) []decl.Param {
	if len(entries) == 0 {
		return nil
	}
	out := make([]decl.Param, 0, len(entries))
	for _, p := range entries {
		sp := source.At(file, declOff)
		if p.Line > 0 && p.Column > 0 {
			if off, ok := b.fs.Offset(file, source.LineCol{Line: p.Line, Col: p.Column}); ok {
				sp = b.nameSpan(file, off, p.Name)
			}
		}
		out = append(out, decl.Param{Name: p.Name, Span: sp})
	}
	return out
}
