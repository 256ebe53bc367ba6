package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs, _ := unknownParamBag(t, "/home/user/project/src/div.cc")
	fs.SetBaseDir("/home/user/project")

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/div.cc:1:12"},
		{"Relative path", PathModeRelative, "src/div.cc:1:12"},
		{"Basename only", PathModeBasename, "div.cc:1:12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR") {
				t.Error("Expected ERROR in output")
			}
			if !strings.Contains(output, "DOC2001") {
				t.Error("Expected DOC2001 code in output")
			}
		})
	}
}

// TestPathModeAuto проверяет авто-режим выбора пути
func TestPathModeAuto(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Short path - as is", "div.cc", "div.cc:1:12"},
		{"Long absolute path - basename", "/very/long/absolute/path/to/some/nested/directory/div.cc", "div.cc:1:12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag, fs, _ := unknownParamBag(t, tt.path)
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			output := buf.String()
			if !strings.HasPrefix(output, tt.expected) {
				t.Errorf("Expected output to start with %q, got:\n%s", tt.expected, output)
			}
		})
	}
}

func TestPrettyCaretUnderlinesSpan(t *testing.T) {
	bag, fs, _ := unknownParamBag(t, "div.cc")
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})

	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected header, context and caret, got:\n%s", buf.String())
	}
	if lines[1] != "1 | /// \\param denominator Bottom" {
		t.Errorf("unexpected context line %q", lines[1])
	}
	if lines[2] != "  |            ^~~~~~~~~~~" {
		t.Errorf("unexpected caret line %q", lines[2])
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	bag, fs := legacyBag(t)
	items := bag.Items()
	d := items[0].WithNote(items[0].Primary, "see the directive table")
	bag = diag.NewBag(1)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{
		PathMode:  PathModeBasename,
		ShowNotes: true,
		ShowFixes: true,
	})
	output := buf.String()

	if !strings.Contains(output, "note: div.cc:2:5: see the directive table") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}
	if !strings.Contains(output, "fix #1: replace '\\return' with '\\returns' (quickfix, always-safe, preferred) id=legacy-return") {
		t.Fatalf("expected fix entry, got:\n%s", output)
	}
	if !strings.Contains(output, `apply="returns" replace="return"`) {
		t.Fatalf("expected fix edit, got:\n%s", output)
	}
}

func TestPrettyFixPreview(t *testing.T) {
	bag, fs := legacyBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{
		PathMode:    PathModeBasename,
		ShowFixes:   true,
		ShowPreview: true,
	})

	output := buf.String()
	if !strings.Contains(output, "preview:") {
		t.Fatalf("expected preview header in output, got:\n%s", output)
	}
	if !strings.Contains(output, "- /// \\return the quotient") {
		t.Fatalf("expected before line in preview, got:\n%s", output)
	}
	if !strings.Contains(output, "+ /// \\returns the quotient") {
		t.Fatalf("expected after line in preview, got:\n%s", output)
	}
}

func TestShort(t *testing.T) {
	bag, fs, _ := unknownParamBag(t, "div.cc")
	var buf bytes.Buffer
	Short(&buf, bag, fs, ShortOpts{PathMode: PathModeBasename, ShowNotes: true})

	want := "div.cc:1:12: error: documented parameter 'denominator' does not map to a parameter in this declaration of 'div' [DOC2001]\n" +
		"div.cc:1:12: note: the word immediately after '\\param' must name one of the parameters in the function declaration\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{
		"":         PathModeAuto,
		"auto":     PathModeAuto,
		"absolute": PathModeAbsolute,
		"relative": PathModeRelative,
		"basename": PathModeBasename,
	} {
		got, err := ParsePathMode(in)
		if err != nil || got != want {
			t.Errorf("ParsePathMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePathMode("short"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPrettyWithoutFile(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IOLoadIndex, source.Span{File: 7}, "cannot read index"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if buf.String() != "ERROR IO4002: cannot read index\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
