package diagfmt

import (
	"fmt"
	"io"

	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

// Short prints one line per diagnostic in the form compilers and editors
// parse: "path:line:col: severity: message [CODE]". Notes follow as
// "note:" lines when enabled.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts ShortOpts) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s: %s [%s]\n", shortLocation(fs, d.Primary, opts.PathMode), d.Severity.Label(), d.Message, d.Code.ID())
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "%s: note: %s\n", shortLocation(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
}

func shortLocation(fs *source.FileSet, span source.Span, mode PathMode) string {
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, f, mode), start.Line, start.Col)
}
