package identity

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/chattrust/internal/common"
)

// InMemoryStore is a concurrency-safe map-backed Store. It is the default
// for tests and for the local CLI.
type InMemoryStore struct {
	mu         sync.RWMutex
	identities map[string]*Identity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{identities: make(map[string]*Identity)}
}

func (s *InMemoryStore) Get(ctx context.Context, username string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.identities[username]
	if !ok {
		return nil, common.ErrNotFound
	}

	cp := *id
	return &cp, nil
}

func (s *InMemoryStore) Put(ctx context.Context, identity *Identity) error {
	if identity == nil || identity.Username == "" {
		return common.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *identity
	s.identities[identity.Username] = &cp
	return nil
}
