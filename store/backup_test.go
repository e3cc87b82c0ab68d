package store

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestBackupZipsExistingDocuments(t *testing.T) {
	dataDir := t.TempDir()
	for _, name := range []string{"users.json", "config.json", "logs.txt"} {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// services.json deliberately absent; Backup must skip it.

	zipPath, err := Backup(dataDir)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()

	got := map[string]bool{}
	for _, f := range zr.File {
		got[f.Name] = true
	}
	for _, want := range []string{"users.json", "config.json", "logs.txt"} {
		if !got[want] {
			t.Errorf("zip missing %s (have %v)", want, got)
		}
	}
	if got["services.json"] {
		t.Error("zip must not contain absent services.json")
	}
}
