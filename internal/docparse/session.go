package docparse

import (
	"github.com/cjdb/schreiber/internal/decl"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/docinfo"
	"github.com/cjdb/schreiber/internal/lexicon"
	"github.com/cjdb/schreiber/internal/scan"
	"github.com/cjdb/schreiber/internal/source"
	"github.com/cjdb/schreiber/internal/undoc"
)

// Options tune a Session.
type Options struct {
	// Lexicon defaults to lexicon.Default().
	Lexicon *lexicon.Table
	// SkipUndocumented turns the undocumented-declaration report off.
	SkipUndocumented bool
}

// Stats counts what a session has seen so far.
type Stats struct {
	Declarations int
	Documented   int
	Undocumented int
	Directives   int
	Stored       int
	Rejected     int
}

// Session owns the run-wide state of a documentation check. Not safe for
// concurrent use.
type Session struct {
	fs       *source.FileSet
	reporter diag.Reporter
	lex      *lexicon.Table
	tracker  *undoc.Tracker
	opts     Options
	stats    Stats
	closed   bool
}

// NewSession binds a session to fs, which is only read to verify fix-its,
// and to r, which receives every diagnostic.
func NewSession(fs *source.FileSet, r diag.Reporter, opts Options) *Session {
	if r == nil {
		r = diag.NopReporter{}
	}
	lex := opts.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Session{
		fs:       fs,
		reporter: r,
		lex:      lex,
		tracker:  undoc.New(),
		opts:     opts,
	}
}

// Parse builds the documentation record of d. It returns nil for
// function-local declarations and for declarations without a comment.
func (s *Session) Parse(d decl.Declaration) *docinfo.Record {
	if d == nil {
		panic("docparse: Parse called with a nil declaration")
	}
	if s.closed {
		panic("docparse: Parse called after Shutdown")
	}
	if d.IsLocal() {
		return nil
	}
	s.stats.Declarations++

	raw := d.Comment()
	if raw.Empty() {
		s.tracker.Undocumented(d)
		return nil
	}
	s.tracker.Documented(d)
	s.stats.Documented++

	res := scan.Scan(raw)
	rec := docinfo.New(d)
	rec.Store(docinfo.SlotSummary, docinfo.Payload{
		Text: docinfo.Text{Text: res.Description, Span: res.DescriptionSpan},
	})

	st := newDeclState(d, rec)
	for i := range res.Directives {
		dir := &res.Directives[i]
		s.stats.Directives++
		entry := s.resolve(raw, &res, dir)
		if entry == nil {
			s.stats.Rejected++
			continue
		}
		slot, payload, ok := s.validate(st, dir, entry)
		if !ok {
			s.stats.Rejected++
			continue
		}
		rec.Store(slot, payload)
		s.stats.Stored++
	}
	return rec
}

// Shutdown reports every declaration that stayed undocumented and closes
// the session. Later calls do nothing. It returns the number of warnings.
func (s *Session) Shutdown() int {
	if s.closed {
		return 0
	}
	s.closed = true
	if s.opts.SkipUndocumented {
		return 0
	}
	n := s.tracker.Flush(s.reporter)
	s.stats.Undocumented = n
	return n
}

// Stats returns a snapshot of the counters.
func (s *Session) Stats() Stats {
	return s.stats
}
