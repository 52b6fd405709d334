package store

import (
	"context"
	"sync"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
)

// MemoryStore keeps the document in process memory. It stores the encoded
// form so callers never share slices with the stored copy.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeDocument(s.data)
}

func (s *MemoryStore) Save(_ context.Context, doc domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}
