package storage

import (
	"sync"

	"github.com/dekarrin/yarnspinner/internal/yarn"
)

// MemoryStorage is a guarded in-memory yarn.VariableStorage, the default
// backend.
type MemoryStorage struct {
	mu   sync.RWMutex
	vars map[string]yarn.Value
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{vars: make(map[string]yarn.Value)}
}

func (s *MemoryStorage) Get(name string) (yarn.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

func (s *MemoryStorage) Set(name string, v yarn.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = v
	return nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars = make(map[string]yarn.Value)
	return nil
}
