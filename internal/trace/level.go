package trace

import (
	"fmt"
	"strings"
)

// Level controls how fine-grained the recorded events are.
type Level uint8

const (
	LevelOff Level = iota
	LevelPhase
	LevelDetail
	LevelDebug
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// finest scope each level lets through
var levelScope = [...]Scope{
	LevelOff:    0,
	LevelPhase:  ScopeRun,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeDecl,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel reads a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(s)
	if want == "" {
		return LevelOff, nil
	}
	for l, name := range levelNames {
		if name == want {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected off|phase|detail|debug)", s)
}

// Allows reports whether events of scope are recorded at this level.
func (l Level) Allows(scope Scope) bool {
	if int(l) >= len(levelScope) {
		return false
	}
	return scope != 0 && scope <= levelScope[l]
}
