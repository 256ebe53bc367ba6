// Package undoc remembers which declarations were seen without a
// documentation comment and reports them once the run is over.
package undoc

import (
	"fmt"
	"sort"

	"github.com/cjdb/schreiber/internal/decl"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

// Tracker is owned by a single session. Not safe for concurrent use.
//
// Every identity is in at most one of documented and pending.
type Tracker struct {
	ids        *source.Interner
	documented map[source.StringID]struct{}
	pending    map[source.StringID]decl.Declaration
	flushed    bool
}

func New() *Tracker {
	return &Tracker{
		ids:        source.NewInterner(),
		documented: make(map[source.StringID]struct{}),
		pending:    make(map[source.StringID]decl.Declaration),
	}
}

// Undocumented records that d was seen without a comment. An identity that
// some redeclaration already documented stays documented.
func (t *Tracker) Undocumented(d decl.Declaration) {
	id := t.ids.Intern(d.CanonicalID())
	if _, ok := t.documented[id]; ok {
		return
	}
	if prev, ok := t.pending[id]; ok && !d.Location().Less(prev.Location()) {
		return
	}
	t.pending[id] = d
}

// Documented records that d carries a comment.
func (t *Tracker) Documented(d decl.Declaration) {
	id := t.ids.Intern(d.CanonicalID())
	delete(t.pending, id)
	t.documented[id] = struct{}{}
}

// IsDocumented reports the state of d's identity.
func (t *Tracker) IsDocumented(d decl.Declaration) bool {
	id, ok := t.ids.Find(d.CanonicalID())
	if !ok {
		return false
	}
	_, ok = t.documented[id]
	return ok
}

// Pending returns the undocumented declarations in source order.
func (t *Tracker) Pending() []decl.Declaration {
	out := make([]decl.Declaration, 0, len(t.pending))
	for _, d := range t.pending {
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].Location(), out[j].Location()
		if li != lj {
			return li.Less(lj)
		}
		return out[i].CanonicalID() < out[j].CanonicalID()
	})
	return out
}

// Flush reports every pending declaration to r and empties the tracker.
// Only the first call reports anything. It returns the number of warnings.
func (t *Tracker) Flush(r diag.Reporter) int {
	if t.flushed {
		return 0
	}
	t.flushed = true

	n := 0
	for _, d := range t.Pending() {
		subject, ok := decl.Describe(d)
		if !ok {
			continue
		}
		loc := d.Location()
		diag.ReportWarning(r, diag.UndocDecl, loc, subject+" is not documented").
			WithNote(loc, fmt.Sprintf("use '\\undocumented' to indicate that '%s' is intentionally undocumented", d.Name())).
			Emit()
		n++
	}
	clear(t.pending)
	return n
}

// Flushed reports whether Flush already ran.
func (t *Tracker) Flushed() bool {
	return t.flushed
}
