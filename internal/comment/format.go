package comment

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"github.com/cjdb/schreiber/internal/source"
)

// IsDocLine reports whether a source line is a documentation comment line.
// Four or more slashes form an ordinary comment.
func IsDocLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, Marker) && !strings.HasPrefix(trimmed, Marker+"/")
}

// BlockAbove finds the contiguous run of documentation lines that ends on
// the line right above anchor. ok is false when there is none.
func BlockAbove(file *source.File, anchor uint32) (first, last uint32, ok bool) {
	if file == nil || anchor <= 1 {
		return 0, 0, false
	}
	last = anchor - 1
	if !IsDocLine(file.GetLine(last)) {
		return 0, 0, false
	}
	first = last
	for first > 1 && IsDocLine(file.GetLine(first-1)) {
		first--
	}
	return first, last, true
}

// FormatOptions controls indentation measurement.
type FormatOptions struct {
	TabWidth int
}

func (o FormatOptions) tabWidth() int {
	if o.TabWidth <= 0 {
		return DefaultTabWidth
	}
	return o.TabWidth
}

type rawLine struct {
	number uint32
	rest   string // text after the marker
	col    uint32 // column of rest's first byte
}

// Format turns source lines first..last into a Raw comment. The marker is
// stripped, then the indentation shared by every non-blank line is removed.
// Tabs count up to the next multiple of TabWidth.
func Format(fs *source.FileSet, id source.FileID, first, last uint32, opts FormatOptions) (*Raw, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, fmt.Errorf("comment: unknown file %d", id)
	}
	if first == 0 || last < first || last > file.LineCount() {
		return nil, fmt.Errorf("comment: line range %d-%d outside %s", first, last, file.Path)
	}

	lines := make([]rawLine, 0, last-first+1)
	for n := first; n <= last; n++ {
		text := file.GetLine(n)
		at := strings.Index(text, Marker)
		if at < 0 || !IsDocLine(text) {
			return nil, fmt.Errorf("comment: %s:%d is not a documentation line", file.Path, n)
		}
		restAt := at + len(Marker)
		col, err := safecast.Conv[uint32](restAt + 1)
		if err != nil {
			return nil, fmt.Errorf("comment: column overflow: %w", err)
		}
		lines = append(lines, rawLine{number: n, rest: text[restAt:], col: col})
	}

	tw := opts.tabWidth()
	indent := -1
	for _, ln := range lines {
		if strings.TrimSpace(ln.rest) == "" {
			continue
		}
		w := leadingWidth(ln.rest, tw)
		if indent < 0 || w < indent {
			indent = w
		}
	}
	if indent < 0 {
		indent = 0
	}

	markerCol := lines[0].col - uint32(len(Marker))
	offset, ok := fs.Offset(id, source.LineCol{Line: first, Col: markerCol})
	if !ok {
		return nil, fmt.Errorf("comment: cannot resolve %s:%d:%d", file.Path, first, markerCol)
	}

	raw := &Raw{
		File:   id,
		Begin:  source.LineCol{Line: first, Col: markerCol},
		Offset: offset,
		Lines:  make([]Line, 0, len(lines)),
	}
	for _, ln := range lines {
		skip := skipIndent(ln.rest, indent, tw)
		body := ln.rest[skip:]
		width, err := safecast.Conv[uint32](len(body))
		if err != nil {
			return nil, fmt.Errorf("comment: line width overflow: %w", err)
		}
		skip32, err := safecast.Conv[uint32](skip)
		if err != nil {
			return nil, fmt.Errorf("comment: indent overflow: %w", err)
		}
		raw.Lines = append(raw.Lines, Line{
			Text:  strings.TrimRight(body, " \t\v\f\r"),
			Begin: source.LineCol{Line: ln.number, Col: ln.col + skip32},
			Width: width,
		})
	}
	return raw, nil
}

// leadingWidth measures the visual width of s's leading blanks.
func leadingWidth(s string, tabWidth int) int {
	w := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			w++
		case '\t':
			w += tabWidth - w%tabWidth
		default:
			return w
		}
	}
	return w
}

// skipIndent returns how many leading bytes of s fit inside indent columns.
// A tab that would cross the boundary stays in the text.
func skipIndent(s string, indent, tabWidth int) int {
	w := 0
	i := 0
	for i < len(s) {
		next := w
		switch s[i] {
		case ' ':
			next++
		case '\t':
			next += tabWidth - w%tabWidth
		default:
			return i
		}
		if next > indent {
			return i
		}
		w = next
		i++
	}
	return i
}

// Attach formats the documentation block that sits right above line. It
// returns nil without error when there is none.
func Attach(fs *source.FileSet, id source.FileID, line uint32, opts FormatOptions) (*Raw, error) {
	first, last, ok := BlockAbove(fs.Get(id), line)
	if !ok {
		return nil, nil
	}
	return Format(fs, id, first, last, opts)
}
