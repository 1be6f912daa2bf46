package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps the document tree in a mutex-guarded map. It backs
// demo mode (running without Redis or MySQL) and the test suite.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, ErrNoDocument
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (s *MemoryStore) GetAll(_ context.Context, collection string) (map[string][]byte, error) {
	prefix := strings.TrimSuffix(collection, "/") + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte)
	for path, doc := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		id := strings.TrimPrefix(path, prefix)
		// Children of nested collections are not part of this one.
		if strings.Contains(id, "/") {
			continue
		}
		cp := make([]byte, len(doc))
		copy(cp, doc)
		out[id] = cp
	}
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, path string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = body
	return nil
}

func (s *MemoryStore) Push(ctx context.Context, collection string, doc any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, strings.TrimSuffix(collection, "/")+"/"+id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
	return nil
}
