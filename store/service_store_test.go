package store

import (
	"path/filepath"
	"testing"

	"github.com/spidybot/mediagrab/types"
)

func TestServiceCRUD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.json")
	s := NewServiceStore(path)

	err := s.Add("num_lookup", types.ServiceEntry{Emoji: "🔍", Name: "Number Lookup", Note: "test"})
	if err != nil {
		t.Fatal(err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := all["num_lookup"]
	if !ok {
		t.Fatal("expected service to be stored")
	}
	if entry.Name != "Number Lookup" || entry.CreatedAt == "" {
		t.Errorf("entry = %+v", entry)
	}

	// Round trip through a fresh store.
	all2, err := NewServiceStore(path).All()
	if err != nil {
		t.Fatal(err)
	}
	if all2["num_lookup"] != entry {
		t.Errorf("round trip mismatch: %+v != %+v", all2["num_lookup"], entry)
	}

	deleted, err := s.Delete("num_lookup")
	if err != nil {
		t.Fatal(err)
	}
	if deleted.Name != "Number Lookup" {
		t.Errorf("deleted = %+v", deleted)
	}

	if _, err := s.Delete("num_lookup"); err != ErrNotFound {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}
