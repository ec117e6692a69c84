package profit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	st := NewStore(dir)
	if err := st.Merge("ACME",
		Point(day("2023-01-02"), 100),
		Unavailable(day("2023-01-03")),
	); err != nil {
		t.Fatal(err)
	}
	if err := st.Flush("ACME"); err != nil {
		t.Fatal(err)
	}

	// A fresh store reads the same history back.
	st2 := NewStore(dir)
	s, err := st2.Load("ACME")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("got %d points after reload, want 2", s.Len())
	}
	if p, ok := s.Price(day("2023-01-02")); !ok || p != 100 {
		t.Errorf("got %v,%v want 100,true", p, ok)
	}
	if _, ok := s.Price(day("2023-01-03")); ok {
		t.Error("the unavailable marker was lost on reload")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := NewStore(t.TempDir())
	s, err := st.Load("NEVER-SEEN")
	if err != nil {
		t.Fatalf("a missing history must load as empty, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("got %d points, want 0", s.Len())
	}
}

func TestStoreFileFormat(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)
	if err := st.Merge("VT.US", Point(day("2023-01-03"), 91.5), Point(day("2023-01-02"), 90.0)); err != nil {
		t.Fatal(err)
	}
	if err := st.Flush("VT.US"); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "VT.US.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"on":"2023-01-02","price":90}
{"on":"2023-01-03","price":91.5}
`
	if string(content) != want {
		t.Errorf("file content:\n%s\nwant:\n%s", content, want)
	}
}

func TestStoreFilenameSanitized(t *testing.T) {
	st := NewStore("cache")
	got := st.filename("A/B C")
	if strings.ContainsAny(filepath.Base(got), "/ ") {
		t.Errorf("filename %q is not sanitized", got)
	}
}

func TestStoreFilenameCollisionFree(t *testing.T) {
	st := NewStore("cache")
	// Symbols that a lossy sanitization would fold onto the same file.
	symbols := []string{"A/B", "A_B", "A%2FB", "A B", "A.B"}
	seen := make(map[string]string)
	for _, symbol := range symbols {
		f := st.filename(symbol)
		if prev, ok := seen[f]; ok {
			t.Errorf("symbols %q and %q share the cache file %q", prev, symbol, f)
		}
		seen[f] = symbol
	}
}

func TestStoreFlushAtomicLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)
	if err := st.Merge("ACME", Point(day("2023-01-02"), 100)); err != nil {
		t.Fatal(err)
	}
	if err := st.Flush("ACME"); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temp file %q left behind after flush", e.Name())
		}
	}
}

func TestStoreMergeConflictSurfaced(t *testing.T) {
	st := NewStore(t.TempDir())
	if err := st.Merge("ACME", Point(day("2023-01-02"), 100)); err != nil {
		t.Fatal(err)
	}
	if err := st.Merge("ACME", Point(day("2023-01-02"), 101)); err == nil {
		t.Error("expected a conflict error")
	}
}
