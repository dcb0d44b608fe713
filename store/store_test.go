package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "programs.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTemp(t)
	doc := []byte("meta:\n  name: demo\nblocks: []\n")

	if err := s.Save("demo", doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load("demo")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != string(doc) {
		t.Fatalf("Load() = %q, want %q", got, doc)
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	s := openTemp(t)
	if err := s.Save("demo", []byte("v1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save("demo", []byte("v2")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load("demo")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("Load() = %q, want v2", got)
	}
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesDocument(t *testing.T) {
	s := openTemp(t)
	if err := s.Save("demo", []byte("v1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Delete("demo"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Load("demo"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestListOrdersByName(t *testing.T) {
	s := openTemp(t)
	if err := s.Save("zeta", []byte("z")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save("alpha", []byte("a")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
	if records[0].Name != "alpha" || records[1].Name != "zeta" {
		t.Fatalf("List() order = [%s, %s], want [alpha, zeta]", records[0].Name, records[1].Name)
	}
}
