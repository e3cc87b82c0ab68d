package store

import (
	"sync"

	"github.com/spidybot/mediagrab/types"
)

// ServiceStore keeps the descriptive service catalog in a JSON document.
type ServiceStore struct {
	path string
	mu   sync.Mutex
}

func NewServiceStore(path string) *ServiceStore {
	return &ServiceStore{path: path}
}

func (s *ServiceStore) load() (map[string]types.ServiceEntry, error) {
	services := map[string]types.ServiceEntry{}
	if err := loadOrEmpty(s.path, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *ServiceStore) Add(key string, entry types.ServiceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	services, err := s.load()
	if err != nil {
		return err
	}
	if entry.CreatedAt == "" {
		entry.CreatedAt = types.Now()
	}
	services[key] = entry
	return SaveJSON(s.path, services)
}

func (s *ServiceStore) All() (map[string]types.ServiceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *ServiceStore) Delete(key string) (*types.ServiceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	services, err := s.load()
	if err != nil {
		return nil, err
	}
	entry, ok := services[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(services, key)
	if err := SaveJSON(s.path, services); err != nil {
		return nil, err
	}
	return &entry, nil
}
