// Package scan splits a formatted documentation comment into its leading
// description and the directive blocks that follow it.
//
// Scanning is pure: the same comment always yields the same Result. Every
// position is computed from comment.Raw.LineOffset, so the spans point at
// the real bytes in the source file.
package scan

import (
	"strings"

	"fortio.org/safecast"

	"github.com/cjdb/schreiber/internal/comment"
	"github.com/cjdb/schreiber/internal/source"
)

// Escape opens a directive line.
const Escape = '\\'

// Directive is one directive block, unresolved.
type Directive struct {
	// Keyword is the run of non-blank bytes after the escape; empty for a
	// lone escape.
	Keyword string
	Line    int            // index into comment.Raw.Lines
	Begin   source.LineCol // position of the escape
	Escape  source.Span    // the escape byte itself
	KwSpan  source.Span    // keyword bytes, empty at Escape.End for a lone escape
	Span    source.Span    // escape through the end of the block's last line

	// Description is the inline remainder plus continuation lines, joined
	// with '\n' and trimmed.
	Description string
	// Arg is the first blank-separated token of Description.
	Arg     string
	ArgSpan source.Span
}

// Result is a scanned comment.
type Result struct {
	Description      string
	DescriptionSpan  source.Span
	EmptyDescription bool
	Directives       []Directive
}

// IsDirectiveLine reports whether a formatted line opens a directive.
func IsDirectiveLine(text string) bool {
	return len(text) > 0 && text[0] == Escape
}

// Scan splits raw. A nil or empty comment yields an empty Result.
func Scan(raw *comment.Raw) Result {
	var res Result
	if raw.Empty() {
		res.EmptyDescription = true
		return res
	}

	i := 0
	for i < len(raw.Lines) && !IsDirectiveLine(raw.Lines[i].Text) {
		i++
	}
	res.Description = joinTrim(raw.Lines[:i])
	res.EmptyDescription = res.Description == ""
	if i > 0 {
		res.DescriptionSpan = blockSpan(raw, i-1, raw.LineOffset(0))
	} else {
		res.DescriptionSpan = source.At(raw.File, raw.LineOffset(0))
	}

	for i < len(raw.Lines) {
		end := i + 1
		for end < len(raw.Lines) && !IsDirectiveLine(raw.Lines[end].Text) {
			end++
		}
		res.Directives = append(res.Directives, extract(raw, i, end))
		i = end
	}
	return res
}

// extract reads the directive opened on line first; lines first+1..end-1
// continue it.
func extract(raw *comment.Raw, first, end int) Directive {
	line := raw.Lines[first]
	at := raw.LineOffset(first)

	kwLen := 1
	for kwLen < len(line.Text) && !isBlank(line.Text[kwLen]) {
		kwLen++
	}
	kw := line.Text[1:kwLen]
	inline := line.Text[kwLen:]

	d := Directive{
		Keyword: kw,
		Line:    first,
		Begin:   line.Begin,
		Escape:  source.Span{File: raw.File, Start: at, End: at + 1},
		KwSpan:  source.Span{File: raw.File, Start: at + 1, End: at + 1 + mustU32(len(kw))},
		Span:    blockSpan(raw, end-1, at),
	}

	parts := make([]string, 0, end-first)
	parts = append(parts, inline)
	for j := first + 1; j < end; j++ {
		parts = append(parts, raw.Lines[j].Text)
	}
	d.Description = strings.TrimSpace(strings.Join(parts, "\n"))

	d.Arg, d.ArgSpan = firstToken(raw, first, end, kwLen)
	return d
}

// firstToken locates the first blank-separated token after the keyword,
// looking past the keyword's own line when the inline part is empty.
func firstToken(raw *comment.Raw, first, end, skip int) (string, source.Span) {
	for j := first; j < end; j++ {
		text := raw.Lines[j].Text
		from := 0
		if j == first {
			from = skip
		}
		start := from
		for start < len(text) && isBlank(text[start]) {
			start++
		}
		if start == len(text) {
			continue
		}
		stop := start
		for stop < len(text) && !isBlank(text[stop]) {
			stop++
		}
		base := raw.LineOffset(j)
		return text[start:stop], source.Span{
			File:  raw.File,
			Start: base + mustU32(start),
			End:   base + mustU32(stop),
		}
	}
	return "", source.At(raw.File, raw.LineOffset(first)+mustU32(skip))
}

func joinTrim(lines []comment.Line) string {
	parts := make([]string, 0, len(lines))
	for _, ln := range lines {
		parts = append(parts, ln.Text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// blockSpan runs from start to the end of the trimmed text of line last.
func blockSpan(raw *comment.Raw, last int, start uint32) source.Span {
	end := raw.LineOffset(last) + mustU32(len(raw.Lines[last].Text))
	if end < start {
		end = start
	}
	return source.Span{File: raw.File, Start: start, End: end}
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f' || b == '\r' || b == '\n'
}

// comment lines are bounded by file size, which FileSet already checked
func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(err)
	}
	return v
}
