package service

import (
	"context"
	"sync"
)

//go:generate go run go.uber.org/mock/mockgen -source=user_cache.go -destination=mock_user_cache_store_test.go -package=service

// UserCacheStore is a hash-structured cache: one namespace key holding one field per user id.
type UserCacheStore interface {
	// BatchGet returns the payloads found for fields; absent fields are omitted from the map.
	BatchGet(ctx context.Context, namespace string, fields []string) (map[string][]byte, error)
	Get(ctx context.Context, namespace, field string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, field string, value []byte) error
	Delete(ctx context.Context, namespace, field string) error
}

type NoopUserCacheStore struct{}

func NewNoopUserCacheStore() *NoopUserCacheStore {
	return &NoopUserCacheStore{}
}

func (s *NoopUserCacheStore) BatchGet(context.Context, string, []string) (map[string][]byte, error) {
	return map[string][]byte{}, nil
}

func (s *NoopUserCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopUserCacheStore) Set(context.Context, string, string, []byte) error {
	return nil
}

func (s *NoopUserCacheStore) Delete(context.Context, string, string) error {
	return nil
}

type InMemoryUserCacheStore struct {
	mu    sync.RWMutex
	store map[string]map[string][]byte
}

func NewInMemoryUserCacheStore() *InMemoryUserCacheStore {
	return &InMemoryUserCacheStore{
		store: make(map[string]map[string][]byte),
	}
}

func (s *InMemoryUserCacheStore) BatchGet(_ context.Context, namespace string, fields []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(fields))
	ns := s.store[namespace]
	for _, f := range fields {
		if v, ok := ns[f]; ok {
			out[f] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (s *InMemoryUserCacheStore) Get(_ context.Context, namespace, field string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.store[namespace][field]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *InMemoryUserCacheStore) Set(_ context.Context, namespace, field string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string][]byte)
		s.store[namespace] = ns
	}
	ns[field] = append([]byte(nil), value...)
	return nil
}

func (s *InMemoryUserCacheStore) Delete(_ context.Context, namespace, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.store[namespace]; ok {
		delete(ns, field)
		if len(ns) == 0 {
			delete(s.store, namespace)
		}
	}
	return nil
}
