package store

import (
	"context"
	"sync"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
	"github.com/Yarielito06/Pearfect-Trading-App/ports"
)

// MemoryStore is an in-memory implementation of the TokenStore interface.
// A single lock covers both the per-wallet map and the latest pair, so a
// reader never sees a pair mixed from two logins.
type MemoryStore struct {
	pairs     map[string]core.TokenPair
	latest    core.TokenPair
	hasLatest bool
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.TokenStore {
	return &MemoryStore{
		pairs: make(map[string]core.TokenPair),
	}
}

// Save replaces the pair stored for address and the latest pair.
func (s *MemoryStore) Save(ctx context.Context, address string, pair core.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pairs[walletKey(address)] = pair
	s.latest = pair
	s.hasLatest = true

	return nil
}

// Get returns the pair last saved for address.
func (s *MemoryStore) Get(ctx context.Context, address string) (core.TokenPair, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pair, ok := s.pairs[walletKey(address)]
	return pair, ok, nil
}

// Latest returns the pair saved by the most recent login of any wallet.
func (s *MemoryStore) Latest(ctx context.Context) (core.TokenPair, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest, s.hasLatest, nil
}
