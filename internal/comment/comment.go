// Package comment models raw documentation comments as the scanner sees them.
package comment

import (
	"strings"

	"github.com/cjdb/schreiber/internal/source"
)

// Marker opens every documentation comment line.
const Marker = "///"

// DefaultTabWidth is the tab stop used when measuring comment indentation.
const DefaultTabWidth = 8

// Line is one formatted comment line. Text has the marker and the block's
// common indentation removed and trailing blanks trimmed.
type Line struct {
	Text  string
	Begin source.LineCol // position of Text's first byte
	Width uint32         // bytes from Begin to the end of the source line
}

// Raw is a documentation comment attached to one declaration.
type Raw struct {
	File   source.FileID
	Begin  source.LineCol // position of the first marker
	Offset uint32         // byte offset of the first marker
	Lines  []Line
}

// Empty reports whether the comment has no lines at all.
func (r *Raw) Empty() bool {
	return r == nil || len(r.Lines) == 0
}

// Span covers the comment from its first marker to the end of its last line.
func (r *Raw) Span() source.Span {
	if r.Empty() {
		return source.At(r.fileOrZero(), r.offsetOrZero())
	}
	end := r.Offset
	for i, ln := range r.Lines {
		end = r.LineOffset(i) + ln.Width
	}
	return source.Span{File: r.File, Start: r.Offset, End: end}
}

// LineOffset returns the byte offset of Lines[i].Text by walking the block
// from the first marker: every step adds the previous line's width, its
// newline and the next line's column.
func (r *Raw) LineOffset(i int) uint32 {
	off := r.Offset + r.Lines[0].Begin.Col - r.Begin.Col
	for j := 1; j <= i; j++ {
		off += r.Lines[j-1].Width + r.Lines[j].Begin.Col
	}
	return off
}

// Text joins every line with '\n'.
func (r *Raw) Text() string {
	if r.Empty() {
		return ""
	}
	parts := make([]string, len(r.Lines))
	for i, ln := range r.Lines {
		parts[i] = ln.Text
	}
	return strings.Join(parts, "\n")
}

func (r *Raw) fileOrZero() source.FileID {
	if r == nil {
		return 0
	}
	return r.File
}

func (r *Raw) offsetOrZero() uint32 {
	if r == nil {
		return 0
	}
	return r.Offset
}
