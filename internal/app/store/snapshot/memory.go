// internal/app/store/snapshot/memory.go
package snapshot

import (
	"context"
	"sync"

	"github.com/dalemusser/classhub/internal/app/policy/rules"
)

// MemoryStore is an in-memory document tree keyed by canonical path. Tests
// and embedded deployments use it in place of the MongoDB mirror.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]rules.Document
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]rules.Document)}
}

// Put stores a document at the given path, replacing any existing one.
func (s *MemoryStore) Put(path string, doc rules.Document) error {
	p, err := rules.ParsePath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[p.String()] = doc
	return nil
}

// Delete removes the document at the given path if present.
func (s *MemoryStore) Delete(path string) error {
	p, err := rules.ParsePath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, p.String())
	return nil
}

// View copies the current document map so the returned snapshot is immune
// to concurrent writes. This is also what makes role grant/revoke take
// effect on the next decision with no residual caching: each View starts
// from live state.
func (s *MemoryStore) View(_ context.Context) (rules.Snapshot, func(), error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make(map[string]rules.Document, len(s.docs))
	for k, v := range s.docs {
		copied[k] = v
	}
	return memoryView(copied), func() {}, nil
}

// memoryView is one frozen view of the store.
type memoryView map[string]rules.Document

func (v memoryView) Lookup(_ context.Context, p rules.Path) (rules.Document, error) {
	return v[p.String()], nil
}
