// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/fic"
	"github.com/bobg/fic/config"
	"github.com/bobg/fic/store"
)

var _ fic.Store = &Store{}

// Store wraps a nested fic.Store.
type Store struct {
	s      fic.Store
	logger *log.Logger
}

// New produces a new Store logging to the given logger.
// A nil logger means the standard logger.
func New(s fic.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{s: s, logger: logger}
}

// Load implements fic.Store.
func (s *Store) Load(ctx context.Context) (fic.Table, error) {
	start := time.Now()
	t, err := s.s.Load(ctx)
	switch {
	case errors.Is(err, fic.ErrNotFound):
		s.logger.Printf("Load: no baseline")
	case err != nil:
		s.logger.Printf("ERROR in Load: %s", err)
	default:
		s.logger.Printf("Load: %d entries (%s)", len(t), time.Since(start))
	}
	return t, err
}

// Save implements fic.Store.
func (s *Store) Save(ctx context.Context, t fic.Table) error {
	start := time.Now()
	err := s.s.Save(ctx, t)
	if err != nil {
		s.logger.Printf("ERROR in Save: %s", err)
	} else {
		s.logger.Printf("Save: %d entries (%s)", len(t), time.Since(start))
	}
	return err
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (fic.Store, error) {
		nested := config.Map(conf, "nested")
		if nested == nil {
			return nil, errors.New(`missing "nested" parameter`)
		}
		nestedStore, err := store.FromConfig(ctx, nested)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nestedStore, log.New(os.Stderr, "", log.LstdFlags)), nil
	})
}
