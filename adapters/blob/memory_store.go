package blob

import (
	"context"
	"sync"

	"github.com/ecodao/sigil/core"
	"github.com/ecodao/sigil/ports"
)

var _ ports.BlobStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory content-addressed blob store for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores a blob under its derived CID.
func (s *MemoryStore) Put(ctx context.Context, data []byte) (string, error) {
	cid := ComputeCID(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[cid] = cp
	return cid, nil
}

// Get fetches a blob by CID.
func (s *MemoryStore) Get(ctx context.Context, cid string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[cid]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Has checks whether a blob exists.
func (s *MemoryStore) Has(ctx context.Context, cid string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blobs[cid]
	return ok, nil
}
