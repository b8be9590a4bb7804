// Package mem implements an in-memory baseline store.
package mem

import (
	"context"
	"sync"

	"github.com/bobg/fic"
	"github.com/bobg/fic/store"
)

var _ fic.Store = &Store{}

// Store is a memory-based implementation of a baseline store.
type Store struct {
	mu    sync.Mutex
	table fic.Table // nil until the first Save
}

// New produces a new, empty Store.
func New() *Store {
	return &Store{}
}

// Load implements fic.Store.
func (s *Store) Load(_ context.Context) (fic.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, fic.ErrNotFound
	}
	return copyTable(s.table), nil
}

// Save implements fic.Store.
func (s *Store) Save(_ context.Context, t fic.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = copyTable(t)
	return nil
}

func copyTable(t fic.Table) fic.Table {
	result := make(fic.Table, len(t))
	for path, d := range t {
		result[path] = d
	}
	return result
}

func init() {
	store.Register("mem", func(context.Context, map[string]interface{}) (fic.Store, error) {
		return New(), nil
	})
}
