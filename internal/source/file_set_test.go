package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("lib.hpp", []byte("int f();"), 0)
	id2 := fs.Add("lib.hpp", []byte("int g();"), 0)
	if id1 == id2 {
		t.Fatalf("expected a new FileID for the second Add")
	}

	latest, ok := fs.GetLatest("lib.hpp")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v; want %d,true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "int f();" {
		t.Errorf("first version content = %q", got)
	}
	if fs.Get(id1).Path != fs.Get(id2).Path {
		t.Errorf("expected both versions to share a path")
	}
}

// TestAddVirtualLineIdx проверяет правильность построения LineIdx для AddVirtual
func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.hpp", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("LineIdx length = %d, want %d", len(file.LineIdx), len(expected))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], val)
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
	if got := file.LineCount(); got != 2 {
		t.Errorf("LineCount = %d, want 2", got)
	}
}

func TestNormalize(t *testing.T) {
	content, flags := Normalize([]byte("\xEF\xBB\xBF/// a\r\nint f();\r\n"))
	if string(content) != "/// a\nint f();\n" {
		t.Fatalf("normalized content = %q", content)
	}
	if flags&FileHadBOM == 0 || flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF bits", flags)
	}

	lone, changed := normalizeCRLF([]byte("a\rb"))
	if changed || string(lone) != "a\rb" {
		t.Errorf("lone CR must survive, got %q changed=%v", lone, changed)
	}
}

// TestResolveUTF8 проверяет, что колонки считаются в байтах
func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("yonko.hpp", []byte("class yonkō;\n"))

	start, end := fs.Resolve(Span{File: id, Start: 6, End: 12})
	if start != (LineCol{Line: 1, Col: 7}) {
		t.Errorf("start = %v", start)
	}
	if end != (LineCol{Line: 1, Col: 13}) {
		t.Errorf("end = %v", end)
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("div.hpp", []byte("/// \\param x\n  int f(int x);\nlast"))

	cases := []struct {
		pos  LineCol
		want uint32
		ok   bool
	}{
		{LineCol{Line: 1, Col: 1}, 0, true},
		{LineCol{Line: 1, Col: 5}, 4, true},
		{LineCol{Line: 2, Col: 3}, 15, true},
		{LineCol{Line: 3, Col: 5}, 33, true},
		{LineCol{Line: 3, Col: 6}, 0, false},
		{LineCol{Line: 4, Col: 1}, 0, false},
		{LineCol{Line: 0, Col: 1}, 0, false},
	}
	for _, tc := range cases {
		got, ok := fs.Offset(id, tc.pos)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("Offset(%v) = %d,%v; want %d,%v", tc.pos, got, ok, tc.want, tc.ok)
			continue
		}
		if ok {
			back, _ := fs.Resolve(At(id, got))
			if back != tc.pos {
				t.Errorf("Resolve(Offset(%v)) = %v", tc.pos, back)
			}
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.hpp", []byte("one\n\nthree"))
	file := fs.Get(id)

	for line, want := range map[uint32]string{1: "one", 2: "", 3: "three", 4: "", 0: ""} {
		if got := file.GetLine(line); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", line, got, want)
		}
	}
}

func TestGetOutOfRange(t *testing.T) {
	fs := NewFileSet()
	if fs.Get(3) != nil {
		t.Fatal("expected nil for unknown FileID")
	}
}

func TestLoadNormalizesOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.hpp")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("content = %q", file.Content)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b", file.Flags)
	}
	if got := file.FormatPath("relative", dir); got != "crlf.hpp" {
		t.Errorf("relative path = %q", got)
	}
	if got := file.FormatPath("basename", ""); got != "crlf.hpp" {
		t.Errorf("basename = %q", got)
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.hpp")); err == nil {
		t.Error("expected error for missing file")
	}
}
