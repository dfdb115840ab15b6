package kv

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
)

// MemStore: implementasi in-memory untuk test dan demo lokal.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]json.RawMessage{}}
}

func (s *MemStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return cp, nil
}

func (s *MemStore) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = b
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *MemStore) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.data[k])
	}
	return out, nil
}

func (s *MemStore) Update(ctx context.Context, key string, fn func(cur json.RawMessage) (any, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.data[key])
	if err != nil {
		return err
	}
	b, err := json.Marshal(next)
	if err != nil {
		return err
	}
	s.data[key] = b
	return nil
}
