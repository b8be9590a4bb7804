// Package replica implements a baseline store that keeps copies in several nested stores.
package replica

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/fic"
	"github.com/bobg/fic/config"
	"github.com/bobg/fic/store"
)

var _ fic.Store = (*Store)(nil)

// Store is a baseline store that delegates reads and writes to a set of nested stores.
// Writes to all of these must succeed before a call to Save returns,
// and an error from any will cause Save to fail.
// Load reads every replica and fails unless they all agree.
// A replica that has drifted from the others is treated as tampering, not repaired.
type Store struct {
	stores []fic.Store
}

// New produces a new Store.
// The set of nested stores must be non-empty.
func New(stores ...fic.Store) *Store {
	return &Store{stores: stores}
}

// MismatchError is the error produced by Load when replicas disagree.
type MismatchError struct {
	// Replica is the index of the first nested store that differs from replica 0.
	Replica int
}

func (e MismatchError) Error() string {
	return fmt.Sprintf("replica %d differs from replica 0", e.Replica)
}

// Save implements fic.Store.
func (s *Store) Save(ctx context.Context, t fic.Table) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, nested := range s.stores {
		i, nested := i, nested
		g.Go(func() error {
			return errors.Wrapf(nested.Save(ctx, t), "saving to replica %d", i)
		})
	}
	return g.Wait()
}

// Load implements fic.Store.
// It reports fic.ErrNotFound only when no replica has a baseline.
func (s *Store) Load(ctx context.Context) (fic.Table, error) {
	var (
		tables = make([]fic.Table, len(s.stores))
		mu     sync.Mutex
		found  int
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, nested := range s.stores {
		i, nested := i, nested
		g.Go(func() error {
			t, err := nested.Load(ctx)
			if errors.Is(err, fic.ErrNotFound) {
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "loading from replica %d", i)
			}
			tables[i] = t

			mu.Lock()
			found++
			mu.Unlock()

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if found == 0 {
		return nil, fic.ErrNotFound
	}
	for i := 1; i < len(tables); i++ {
		if tables[i] == nil || tables[0] == nil || !tables[i].Equal(tables[0]) {
			return nil, MismatchError{Replica: i}
		}
	}
	return tables[0], nil
}

func init() {
	store.Register("replica", func(ctx context.Context, conf map[string]interface{}) (fic.Store, error) {
		nested, err := config.Maps(conf, "stores")
		if err != nil {
			return nil, err
		}
		if len(nested) == 0 {
			return nil, errors.New(`missing "stores" parameter`)
		}

		var stores []fic.Store
		for i, nconf := range nested {
			s, err := store.FromConfig(ctx, nconf)
			if err != nil {
				return nil, errors.Wrapf(err, "creating replica %d", i)
			}
			stores = append(stores, s)
		}
		return New(stores...), nil
	})
}
