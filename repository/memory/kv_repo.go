package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

// Store keeps profile storage in process memory. Used in development and tests.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

var _ repository.KeyValueStore = (*Store)(nil)

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

func (s *Store) SetMany(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.data[k] = v
	}
	return nil
}

func (s *Store) Replace(_ context.Context, values map[string]string, drop []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range drop {
		delete(s.data, k)
	}
	for k, v := range values {
		s.data[k] = v
	}
	return nil
}

func (s *Store) Advance(_ context.Context, key string, value int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.data[key]; ok && !repository.AdvanceAllowed(cur, value) {
		return false, nil
	}
	s.data[key] = strconv.FormatInt(value, 10)
	return true, nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// Keys returns a snapshot of every stored key.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
