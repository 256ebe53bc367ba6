package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool              `json:"tool"`
	Invocations       []sarifInvocation      `json:"invocations,omitempty"`
	AutomationDetails sarifAutomationDetails `json:"automationDetails"`
	Results           []sarifResult          `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifAutomationDetails struct {
	GUID string `json:"guid"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations,omitempty"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
	Fixes            []sarifFix      `json:"fixes,omitempty"`
}

type sarifLocation struct {
	ID               int                   `json:"id,omitempty"`
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func sarifLocate(fs *source.FileSet, span source.Span, mode PathMode) (sarifPhysicalLocation, bool) {
	f := fs.Get(span.File)
	if f == nil {
		return sarifPhysicalLocation{}, false
	}
	start, end := fs.Resolve(span)
	return sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(formatPath(fs, f, mode))},
		Region: sarifRegion{
			StartLine:   start.Line,
			StartColumn: start.Col,
			EndLine:     end.Line,
			EndColumn:   end.Col,
			ByteOffset:  span.Start,
			ByteLength:  span.Len(),
		},
	}, true
}

// buildSarif формирует SARIF-лог без сериализации. Пути выводятся
// относительно базовой директории FileSet.
func buildSarif(bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) sarifLog {
	items := bag.Items()

	ruleIndex := make(map[diag.Code]int)
	var codes []diag.Code
	for _, d := range items {
		if _, ok := ruleIndex[d.Code]; !ok {
			ruleIndex[d.Code] = 0
			codes = append(codes, d.Code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	rules := make([]sarifRule, len(codes))
	for i, c := range codes {
		ruleIndex[c] = i
		rules[i] = sarifRule{ID: c.ID(), ShortDescription: sarifMessage{Text: c.Title()}}
	}

	guid := meta.RunID
	if guid == "" {
		guid = uuid.NewString()
	}
	name := meta.ToolName
	if name == "" {
		name = "schreiber"
	}

	results := make([]sarifResult, 0, len(items))
	for _, d := range items {
		r := sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: ruleIndex[d.Code],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
		}
		if d.Code != diag.ObsTimings {
			if loc, ok := sarifLocate(fs, d.Primary, PathModeRelative); ok {
				r.Locations = []sarifLocation{{PhysicalLocation: loc}}
			}
		}
		for i, n := range d.Notes {
			loc, ok := sarifLocate(fs, n.Span, PathModeRelative)
			if !ok {
				continue
			}
			r.RelatedLocations = append(r.RelatedLocations, sarifLocation{
				ID:               i + 1,
				PhysicalLocation: loc,
				Message:          &sarifMessage{Text: n.Msg},
			})
		}
		for _, fix := range sortedFixes(d.Fixes) {
			if sf, ok := sarifFixOf(fs, &fix); ok {
				r.Fixes = append(r.Fixes, sf)
			}
		}
		results = append(results, r)
	}

	return sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           name,
				Version:        meta.ToolVersion,
				InformationURI: meta.InformationURI,
				Rules:          rules,
			}},
			Invocations: []sarifInvocation{{
				Arguments:           meta.InvocationArgs,
				ExecutionSuccessful: true,
			}},
			AutomationDetails: sarifAutomationDetails{GUID: guid},
			Results:           results,
		}},
	}
}

func sarifFixOf(fs *source.FileSet, fix *diag.Fix) (sarifFix, bool) {
	changes := make(map[string]*sarifArtifactChange)
	var order []string
	for _, edit := range fix.Edits {
		loc, ok := sarifLocate(fs, edit.Span, PathModeRelative)
		if !ok {
			return sarifFix{}, false
		}
		uri := loc.ArtifactLocation.URI
		ch, ok := changes[uri]
		if !ok {
			ch = &sarifArtifactChange{ArtifactLocation: loc.ArtifactLocation}
			changes[uri] = ch
			order = append(order, uri)
		}
		rep := sarifReplacement{DeletedRegion: loc.Region}
		if edit.NewText != "" {
			rep.InsertedContent = &sarifMessage{Text: edit.NewText}
		}
		ch.Replacements = append(ch.Replacements, rep)
	}
	if len(order) == 0 {
		return sarifFix{}, false
	}
	out := sarifFix{Description: sarifMessage{Text: fix.Title}}
	for _, uri := range order {
		out.ArtifactChanges = append(out.ArtifactChanges, *changes[uri])
	}
	return out, true
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0)
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildSarif(bag, fs, meta))
}
