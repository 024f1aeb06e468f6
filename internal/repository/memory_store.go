package repository

import (
	"context"
	"sync"
)

// MemoryRecordStore keeps records in process memory. Nothing survives a restart.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]string
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]string)}
}

func (s *MemoryRecordStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	return v, ok, nil
}

func (s *MemoryRecordStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	return nil
}

func (s *MemoryRecordStore) SetMany(_ context.Context, records map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range records {
		s.records[k] = v
	}
	return nil
}
