package store

import (
	"path/filepath"
	"testing"
)

// TestCheckExistingAll_AllEmpty is spec.md §4.6's happy path: a fresh set
// of paths that have never been formatted reports no existing data.
func TestCheckExistingAll_AllEmpty(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "file0"),
		filepath.Join(dir, "file1"),
		filepath.Join(dir, "file2"),
	}
	found, err := CheckExistingAll(paths)
	if err != nil {
		t.Fatalf("CheckExistingAll() = %v", err)
	}
	if found {
		t.Fatal("CheckExistingAll() = true over never-formatted paths, want false")
	}
}

// TestCheckExistingAll_OneNonEmpty covers the all-of aggregation of
// spec.md §4.6 ("success = all OK"): if only one of several backing
// files already holds data, the aggregate is still false, exactly
// reproducing check_existing_fsm_t's `is_ok = is_ok && ok`.
func TestCheckExistingAll_OneNonEmpty(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "file0"),
		filepath.Join(dir, "file1"),
	}

	s, err := CreateSerializer(paths[1])
	if err != nil {
		t.Fatalf("CreateSerializer() = %v", err)
	}
	if err := s.put("s", []byte("k"), []byte("v")); err != nil {
		t.Fatalf("put() = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	found, err := CheckExistingAll(paths)
	if err != nil {
		t.Fatalf("CheckExistingAll() = %v", err)
	}
	if found {
		t.Fatal("CheckExistingAll() = true with only one non-empty backing file, want false")
	}
}

// TestCheckExistingAll_AllNonEmpty is the guard path a caller actually
// relies on before refusing a destructive format: only when every
// backing file already holds data does the aggregate report true.
func TestCheckExistingAll_AllNonEmpty(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "file0"),
		filepath.Join(dir, "file1"),
	}
	for _, p := range paths {
		s, err := CreateSerializer(p)
		if err != nil {
			t.Fatalf("CreateSerializer() = %v", err)
		}
		if err := s.put("s", []byte("k"), []byte("v")); err != nil {
			t.Fatalf("put() = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close() = %v", err)
		}
	}

	found, err := CheckExistingAll(paths)
	if err != nil {
		t.Fatalf("CheckExistingAll() = %v", err)
	}
	if !found {
		t.Fatal("CheckExistingAll() = false with every backing file non-empty, want true")
	}
}
