package trace

import "time"

// Kind is what an event marks.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindBegin:     "begin",
	KindEnd:       "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; smaller is coarser.
type Scope uint8

const (
	// ScopeRun covers a whole check and its phases.
	ScopeRun Scope = iota + 1
	// ScopeFile covers one source file.
	ScopeFile
	// ScopeDecl covers one declaration.
	ScopeDecl
)

var scopeNames = [...]string{
	ScopeRun:  "run",
	ScopeFile: "file",
	ScopeDecl: "decl",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time   time.Time
	Seq    uint64 // assigned by the sink that stores the event
	Kind   Kind
	Scope  Scope
	Span   uint64
	Parent uint64 // 0 for a root span
	Name   string // "check", "parse", "file:src/div.hpp", "decl:div"
	Detail string
	Attrs  map[string]string
}
