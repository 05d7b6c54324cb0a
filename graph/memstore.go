package graph

import "sync"

// Store accepts one compilation pass as a single atomic transaction and
// returns a live handle over the committed graph. A store either commits
// the whole entity list or nothing.
type Store interface {
	// Transact commits the full entity list and returns a queryable handle.
	Transact(entities []Entity) (*Handle, error)
	// Close releases the store. Transacting on a closed store returns ErrClosed.
	Close() error
}

// Compile-time check: both stores satisfy Store.
var (
	_ Store = (*MemStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// MemStoreConfig specifies in-memory store behavior.
type MemStoreConfig struct {
	// EnforceRefs rejects transactions containing references to identities
	// with no backing record. Off by default: dangling references are an
	// expected product of permissive symbol resolution.
	EnforceRefs bool
}

// MemStore holds committed graphs in memory. It is the default store for
// compilation and for tests.
type MemStore struct {
	specs  []AttrSpec
	config MemStoreConfig

	mu     sync.Mutex
	closed bool
}

// NewMemStore creates an in-memory store constrained by the given
// attribute specs.
func NewMemStore(specs []AttrSpec, config MemStoreConfig) *MemStore {
	return &MemStore{specs: specs, config: config}
}

// Transact commits the entity list and returns a handle over it.
func (s *MemStore) Transact(entities []Entity) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return assemble(s.specs, entities, s.config.EnforceRefs)
}

// Close marks the store closed. Handles already returned stay usable.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
