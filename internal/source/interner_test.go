package source

import "testing"

func TestInternerBasic(t *testing.T) {
	in := NewInterner()
	if in.Len() != 1 {
		t.Fatalf("fresh interner Len = %d, want 1", in.Len())
	}

	a := in.Intern("c:@N@new_world@S@yonkō")
	b := in.Intern("c:@F@div#I#I#")
	if a == b || a == NoStringID || b == NoStringID {
		t.Fatalf("unexpected ids %d %d", a, b)
	}
	if again := in.Intern("c:@N@new_world@S@yonkō"); again != a {
		t.Errorf("re-intern = %d, want %d", again, a)
	}
	if s := in.MustLookup(b); s != "c:@F@div#I#I#" {
		t.Errorf("MustLookup = %q", s)
	}
	if id, ok := in.Find("missing"); ok || id != NoStringID {
		t.Errorf("Find(missing) = %d,%v", id, ok)
	}
	if in.Len() != 3 {
		t.Errorf("Len = %d, want 3", in.Len())
	}
}

func TestInternerStringCopy(t *testing.T) {
	in := NewInterner()
	buf := []byte("param")
	id := in.Intern(string(buf))
	buf[0] = 'P'
	if s, _ := in.Lookup(id); s != "param" {
		t.Errorf("interned string changed with its source buffer: %q", s)
	}
}

func TestInternerLookupInvalid(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup(StringID(9)); ok {
		t.Fatal("expected invalid id lookup to fail")
	}
	defer func() {
		if recover() == nil {
			t.Error("MustLookup on invalid id must panic")
		}
	}()
	in.MustLookup(StringID(9))
}

func TestInternerSnapshot(t *testing.T) {
	in := NewInterner()
	in.Intern("x")
	snap := in.Snapshot()
	snap[1] = "mutated"
	if s, _ := in.Lookup(1); s != "x" {
		t.Errorf("snapshot aliases interner storage")
	}
}
