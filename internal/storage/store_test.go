package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/readtrack/internal/storage"
)

func TestOpen_MissingFile(t *testing.T) {
	s, err := storage.Open(filepath.Join(t.TempDir(), "library.json"))
	if err != nil {
		t.Fatalf("Open missing file: %v", err)
	}
	var v string
	ok, err := s.Get("anything", &v)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("Get on empty store reported a hit")
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	s, err := storage.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	type rec struct {
		Title string `json:"title"`
		Pages int    `json:"pages"`
	}
	want := rec{Title: "Dune", Pages: 412}
	if err := s.Set("book", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Re-open to prove the write was synchronous.
	s2, err := storage.Open(path)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	var got rec
	ok, err := s2.Get("book", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get missed a persisted key")
	}
	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	s, _ := storage.Open(path)
	if err := s.Set("k", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Has("k") {
		t.Error("key still present after Delete")
	}
	// Deleting again is a no-op.
	if err := s.Delete("k"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestKeys_Sorted(t *testing.T) {
	s, _ := storage.Open(filepath.Join(t.TempDir(), "library.json"))
	for _, k := range []string{"b", "a", "c"} {
		if err := s.Set(k, k); err != nil {
			t.Fatal(err)
		}
	}
	keys := s.Keys()
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.Open(path); err == nil {
		t.Error("expected error opening corrupt data file")
	}
}
