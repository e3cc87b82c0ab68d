package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ErrCorrupt marks a document that exists on disk but failed to parse.
// The broken file is quarantined next to the original path so that the
// bytes survive; callers start over from an empty document.
var ErrCorrupt = errors.New("document corrupt")

var ErrNotFound = errors.New("not found")

// LoadJSON reads and unmarshals the document at path.
// An absent file is reported via fs.ErrNotExist; a file that fails to
// parse is quarantined and reported via ErrCorrupt.
func LoadJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		quarantine := fmt.Sprintf("%s.corrupt.%s", path, time.Now().Format("20060102_150405"))
		if renameErr := os.Rename(path, quarantine); renameErr != nil {
			log.Printf("Corrupt document %s could not be quarantined: %v (parse error: %v)", path, renameErr, err)
		} else {
			log.Printf("Corrupt document %s quarantined to %s: %v", path, quarantine, err)
		}
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return nil
}

// SaveJSON marshals v and replaces the document at path atomically:
// a temp file in the same directory is written in full, then renamed
// over the target.
func SaveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// loadOrEmpty loads path into dest, tolerating an absent or quarantined
// document. Only I/O errors other than absence are returned.
func loadOrEmpty(path string, dest interface{}) error {
	err := LoadJSON(path, dest)
	if err == nil || os.IsNotExist(err) || errors.Is(err, ErrCorrupt) {
		return nil
	}
	return err
}
