package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cjdb/schreiber/internal/decl"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/docinfo"
	"github.com/cjdb/schreiber/internal/docparse"
	"github.com/cjdb/schreiber/internal/frontend"
	"github.com/cjdb/schreiber/internal/observ"
	"github.com/cjdb/schreiber/internal/source"
	"github.com/cjdb/schreiber/internal/trace"
)

// Options configure a check run.
type Options struct {
	Frontend       frontend.Options
	Parse          docparse.Options
	MaxDiagnostics int
	// Timings adds an OBS6001 diagnostic with phase durations.
	Timings  bool
	Logger   *slog.Logger
	Progress ProgressSink
	Observer PhaseObserver
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Result is the outcome of a check.
type Result struct {
	FileSet *source.FileSet
	Bag     *diag.Bag
	Records []*docinfo.Record
	Stats   docparse.Stats
	Timing  observ.Report
}

// Check reads the declaration index at indexPath and checks every
// declaration it lists.
func Check(ctx context.Context, indexPath string, opts Options) (*Result, error) {
	idx, err := frontend.ReadIndex(indexPath)
	if err != nil {
		return nil, err
	}
	return CheckIndex(ctx, idx, opts)
}

// CheckIndex checks an already decoded index. Diagnostics about the comments
// and the index go into Result.Bag; the returned error is reserved for
// failures that stop the run.
func CheckIndex(ctx context.Context, idx *frontend.Index, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	log := opts.logger()
	timer := observ.NewTimer()

	runSpan := trace.Start(ctx, trace.ScopeRun, "check")
	defer runSpan.End("")

	// load
	emit(opts.Progress, Event{Stage: StageLoad, Status: StatusWorking})
	ph := beginPhase(timer, opts.Observer, "load")
	loadSpan := trace.Begin(tracer, trace.ScopeRun, "load", runSpan.ID())
	fe, err := frontend.Load(ctx, idx, opts.Frontend)
	if err != nil {
		loadSpan.End("failed")
		runSpan.Point(trace.ScopeRun, "error", err.Error())
		endPhase(timer, opts.Observer, ph, "failed")
		emit(opts.Progress, Event{Stage: StageLoad, Status: StatusError, Err: err})
		return nil, err
	}
	loadSpan.Attr("files", strconv.Itoa(len(fe.Files))).
		Attr("decls", strconv.Itoa(len(fe.Decls))).
		End("")
	endPhase(timer, opts.Observer, ph, fmt.Sprintf("%d files", len(fe.Files)))
	log.Debug("declaration index loaded",
		"index", idx.Path, "files", len(fe.Files), "declarations", len(fe.Decls), "problems", fe.Bag.Len())

	for _, id := range fe.Files {
		emit(opts.Progress, Event{File: displayName(fe.FileSet, id), Stage: StageLoad, Status: StatusQueued})
	}

	bag := diag.NewBag(opts.MaxDiagnostics)
	bag.Merge(fe.Bag)
	unique := diag.NewUniqueReporter(diag.BagReporter{Bag: bag})
	session := docparse.NewSession(fe.FileSet, unique, opts.Parse)
	res := &Result{FileSet: fe.FileSet, Bag: bag}

	// parse
	ph = beginPhase(timer, opts.Observer, "parse")
	parseSpan := trace.Begin(tracer, trace.ScopeRun, "parse", runSpan.ID())
	byFile := groupByFile(fe.Decls)
	for _, id := range fe.Files {
		if err := ctx.Err(); err != nil {
			parseSpan.End(err.Error())
			endPhase(timer, opts.Observer, ph, "cancelled")
			return nil, err
		}
		res.Records = append(res.Records, checkFile(tracer, parseSpan.ID(), opts.Progress, fe.FileSet, id, byFile[id], session, bag)...)
	}
	parseSpan.End("")
	endPhase(timer, opts.Observer, ph, fmt.Sprintf("%d declarations", len(fe.Decls)))

	// flush
	ph = beginPhase(timer, opts.Observer, "flush")
	flushSpan := trace.Begin(tracer, trace.ScopeRun, "flush", runSpan.ID())
	undocumented := session.Shutdown()
	flushSpan.Attr("undocumented", strconv.Itoa(undocumented)).End("")
	endPhase(timer, opts.Observer, ph, fmt.Sprintf("%d undocumented", undocumented))
	emit(opts.Progress, Event{Stage: StageFlush, Status: StatusDone})

	res.Stats = session.Stats()
	res.Timing = timer.Report()
	if opts.Timings {
		appendTimingDiagnostic(bag, timingPayload{Path: idx.Path, TotalMS: res.Timing.TotalMS, Phases: res.Timing.Phases})
	}
	bag.Sort()

	log.Info("check finished",
		"declarations", res.Stats.Declarations,
		"documented", res.Stats.Documented,
		"undocumented", undocumented,
		"diagnostics", bag.Len(),
		"repeats", unique.Suppressed(),
		"dropped", bag.Dropped())
	return res, nil
}

func checkFile(
	tracer trace.Tracer,
	parent uint64,
	sink ProgressSink,
	fs *source.FileSet,
	id source.FileID,
	decls []*decl.Decl,
	session *docparse.Session,
	bag *diag.Bag,
) []*docinfo.Record {
	name := displayName(fs, id)
	start := time.Now()
	emit(sink, Event{File: name, Stage: StageParse, Status: StatusWorking})

	fileSpan := trace.Begin(tracer, trace.ScopeFile, "file:"+name, parent)
	errorsBefore := countErrors(bag)

	var records []*docinfo.Record
	for i, d := range decls {
		declSpan := trace.Begin(tracer, trace.ScopeDecl, "decl:"+d.Name(), fileSpan.ID())
		rec := session.Parse(d)
		if rec != nil {
			records = append(records, rec)
			declSpan.Attr("documented", "true")
		}
		declSpan.End(d.Kind().String())
		if (i+1)%64 == 0 {
			emit(sink, Event{File: name, Stage: StageParse, Status: StatusWorking, Decls: i + 1})
		}
	}
	fileSpan.Attr("decls", strconv.Itoa(len(decls))).End("")

	status := StatusDone
	if countErrors(bag) > errorsBefore {
		status = StatusError
	}
	emit(sink, Event{File: name, Stage: StageParse, Status: status, Decls: len(decls), Elapsed: time.Since(start)})
	return records
}

func displayName(fs *source.FileSet, id source.FileID) string {
	return fs.Get(id).FormatPath("relative", fs.BaseDir())
}

func groupByFile(decls []*decl.Decl) map[source.FileID][]*decl.Decl {
	out := make(map[source.FileID][]*decl.Decl)
	for _, d := range decls {
		id := d.Location().File
		out[id] = append(out[id], d)
	}
	return out
}

func countErrors(bag *diag.Bag) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			n++
		}
	}
	return n
}

func beginPhase(t *observ.Timer, obs PhaseObserver, name string) *observ.Phase {
	if obs != nil {
		obs(PhaseEvent{Name: name, Status: PhaseStart})
	}
	return t.Start(name)
}

func endPhase(t *observ.Timer, obs PhaseObserver, p *observ.Phase, note string) {
	elapsed := t.Stop(p, note)
	if obs != nil {
		obs(PhaseEvent{Name: p.Name, Status: PhaseEnd, Elapsed: elapsed})
	}
}
