package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

type palette struct {
	err, warn, info, note, loc, caret, gutter func(a ...interface{}) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		loc:    mk(color.Bold),
		caret:  mk(color.FgGreen, color.Bold),
		gutter: mk(color.FgBlue),
	}
}

func (p palette) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.err(s.String())
	case diag.SevWarning:
		return p.warn(s.String())
	default:
		return p.info(s.String())
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	f := fs.Get(d.Primary.File)
	if f == nil {
		fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity), d.Code.ID(), d.Message)
		return
	}
	start, _ := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.loc(fmt.Sprintf("%s:%d:%d", formatPath(fs, f, opts.PathMode), start.Line, start.Col)),
		p.severity(d.Severity), d.Code.ID(), d.Message)

	if d.Severity != diag.SevInfo {
		writeContext(w, fs, f, d.Primary, opts, p)
	}

	// заметки таймингов всегда нужны целиком
	if opts.ShowNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			if nf == nil || d.Code == diag.ObsTimings {
				fmt.Fprintf(w, "  %s %s\n", p.note("note:"), n.Msg)
				continue
			}
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s: %s\n", p.note("note:"),
				fmt.Sprintf("%s:%d:%d", formatPath(fs, nf, opts.PathMode), ns.Line, ns.Col), n.Msg)
		}
	}

	if opts.ShowFixes {
		for i, fix := range sortedFixes(d.Fixes) {
			writeFix(w, fs, i+1, &fix, opts, p)
		}
	}
}

func writeContext(w io.Writer, fs *source.FileSet, f *source.File, span source.Span, opts PrettyOpts, p palette) {
	start, end := fs.Resolve(span)
	ctx := uint32(max(opts.Context, 0))
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := min(start.Line+ctx, f.LineCount())
	if last < start.Line {
		last = start.Line
	}
	gw := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		shown := text
		if opts.Width > 0 {
			shown = runewidth.Truncate(shown, int(opts.Width), "...")
		}
		fmt.Fprintf(w, "%s %s\n", p.gutter(fmt.Sprintf("%*d |", gw, ln)), shown)
		if ln != start.Line {
			continue
		}

		col := min(int(start.Col-1), len(text))
		stop := len(text)
		if end.Line == start.Line {
			stop = min(int(end.Col-1), len(text))
		}
		if stop < col {
			stop = col
		}
		fmt.Fprintf(w, "%s %s%s\n",
			p.gutter(fmt.Sprintf("%*s |", gw, "")),
			caretIndent(text[:col]),
			p.caret(underline(text[col:stop])))
	}
}

// caretIndent keeps tabs so the caret lines up with the terminal's own tab
// stops.
func caretIndent(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func underline(text string) string {
	n := runewidth.StringWidth(text)
	if n <= 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", n-1)
}

func writeFix(w io.Writer, fs *source.FileSet, n int, fix *diag.Fix, opts PrettyOpts, p palette) {
	var attrs []string
	attrs = append(attrs, fix.Kind.String(), fix.Applicability.String())
	if fix.IsPreferred {
		attrs = append(attrs, "preferred")
	}
	line := fmt.Sprintf("  fix #%d: %s (%s)", n, fix.Title, strings.Join(attrs, ", "))
	if fix.ID != "" {
		line += " id=" + fix.ID
	}
	fmt.Fprintln(w, line)

	for _, edit := range fix.Edits {
		ef := fs.Get(edit.Span.File)
		if ef == nil {
			continue
		}
		es, _ := fs.Resolve(edit.Span)
		fmt.Fprintf(w, "    edit %s:%d:%d: apply=%q", formatPath(fs, ef, opts.PathMode), es.Line, es.Col, edit.NewText)
		if edit.OldText != "" {
			fmt.Fprintf(w, " replace=%q", edit.OldText)
		}
		fmt.Fprintln(w)

		if !opts.ShowPreview {
			continue
		}
		preview, err := buildFixEditPreview(fs, edit)
		if err != nil {
			continue
		}
		fmt.Fprintln(w, "    preview:")
		for _, l := range preview.before {
			fmt.Fprintf(w, "      %s\n", p.err("- "+l))
		}
		for _, l := range preview.after {
			fmt.Fprintf(w, "      %s\n", p.caret("+ "+l))
		}
	}
}
