// Package file implements a baseline store as a JSON file.
package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bobg/flock"
	"github.com/pkg/errors"

	"github.com/bobg/fic"
	"github.com/bobg/fic/config"
	"github.com/bobg/fic/store"
)

var _ fic.Store = &Store{}

// Store keeps a baseline in a single file,
// in the format written by fic.EncodeBaseline.
type Store struct {
	path    string
	flocker flock.Locker
}

// New produces a new Store keeping its baseline at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path is the location of the baseline file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) lockPath() string {
	return s.path + ".lock"
}

func (s *Store) lock() error {
	return s.flocker.Lock(s.lockPath())
}

func (s *Store) unlock() error {
	return s.flocker.Unlock(s.lockPath())
}

// Load implements fic.Store.
func (s *Store) Load(_ context.Context) (fic.Table, error) {
	// Check before locking, so a missing directory reads as a missing baseline.
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, fic.ErrNotFound
	}

	err := s.lock()
	if err != nil {
		return nil, errors.Wrapf(err, "locking %s", s.lockPath())
	}
	defer s.unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fic.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.path)
	}
	defer f.Close()

	return fic.DecodeBaseline(f, s.path)
}

// Save implements fic.Store.
// The new baseline is written to a temporary file that is then renamed over the old one,
// so a crash in the middle of Save leaves the previous baseline intact.
func (s *Store) Save(_ context.Context, t fic.Table) error {
	dir := filepath.Dir(s.path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	err = s.lock()
	if err != nil {
		return errors.Wrapf(err, "locking %s", s.lockPath())
	}
	defer s.unlock()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrapf(err, "creating temp file in %s", dir)
	}
	tmpname := tmp.Name()

	err = func() error {
		defer tmp.Close()

		if err := fic.EncodeBaseline(tmp, t); err != nil {
			return errors.Wrapf(err, "writing %s", tmpname)
		}
		if err := tmp.Chmod(0644); err != nil {
			return errors.Wrapf(err, "setting mode of %s", tmpname)
		}
		return errors.Wrapf(tmp.Sync(), "syncing %s", tmpname)
	}()
	if err != nil {
		os.Remove(tmpname)
		return err
	}

	if err = os.Rename(tmpname, s.path); err != nil {
		os.Remove(tmpname)
		return errors.Wrapf(err, "renaming %s to %s", tmpname, s.path)
	}
	return nil
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (fic.Store, error) {
		path := config.String(conf, "path")
		if path == "" {
			return nil, errors.New(`missing "path" parameter`)
		}
		return New(path), nil
	})
}
