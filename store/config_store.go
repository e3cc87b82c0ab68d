package store

import (
	"sync"

	"github.com/spidybot/mediagrab/types"
)

// ConfigStore keeps the role map and custom message overrides in a
// single JSON document with lazily initialized sub-maps.
type ConfigStore struct {
	path string
	mu   sync.Mutex
}

func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

func (s *ConfigStore) load() (types.ConfigDocument, error) {
	var doc types.ConfigDocument
	if err := loadOrEmpty(s.path, &doc); err != nil {
		return doc, err
	}
	if doc.Roles == nil {
		doc.Roles = map[string]string{}
	}
	if doc.Messages == nil {
		doc.Messages = map[string]string{}
	}
	return doc, nil
}

func (s *ConfigStore) Document() (types.ConfigDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *ConfigStore) Roles() (map[string]string, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	return doc.Roles, nil
}

// SetRole assigns admin/mod to a user id; the empty role or "none"
// removes the assignment.
func (s *ConfigStore) SetRole(userID string, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if role == "" || role == string(types.RoleNone) {
		delete(doc.Roles, userID)
	} else {
		doc.Roles[userID] = role
	}
	return SaveJSON(s.path, doc)
}

// Message returns the override for key, or fallback when none is set
// or the document cannot be read.
func (s *ConfigStore) Message(key, fallback string) string {
	doc, err := s.Document()
	if err != nil {
		return fallback
	}
	if v, ok := doc.Messages[key]; ok && v != "" {
		return v
	}
	return fallback
}

func (s *ConfigStore) SetMessage(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Messages[key] = value
	return SaveJSON(s.path, doc)
}
