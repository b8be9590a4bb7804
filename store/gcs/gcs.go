// Package gcs implements a baseline store on Google Cloud Storage.
package gcs

import (
	"context"
	stderrs "errors"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/bobg/fic"
	"github.com/bobg/fic/config"
	"github.com/bobg/fic/store"
)

var _ fic.Store = &Store{}

// DefaultObject is the object name used when none is configured.
const DefaultObject = "baseline.json"

// Store keeps a baseline as a single object in a Google Cloud Storage bucket,
// in the format written by fic.EncodeBaseline.
type Store struct {
	obj *storage.ObjectHandle
}

// New produces a new Store keeping its baseline in the object with the given name.
func New(bucket *storage.BucketHandle, name string) *Store {
	if name == "" {
		name = DefaultObject
	}
	return &Store{obj: bucket.Object(name)}
}

// Load implements fic.Store.
func (s *Store) Load(ctx context.Context) (fic.Table, error) {
	name := s.obj.ObjectName()

	r, err := s.obj.NewReader(ctx)
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return nil, fic.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening object %s", name)
	}
	defer r.Close()

	return fic.DecodeBaseline(r, "gs://"+s.obj.BucketName()+"/"+name)
}

// Save implements fic.Store.
// The object is replaced only when the writer closes successfully,
// so readers never see a partial baseline.
func (s *Store) Save(ctx context.Context, t fic.Table) error {
	name := s.obj.ObjectName()

	w := s.obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if err := fic.EncodeBaseline(w, t); err != nil {
		w.CloseWithError(err)
		return errors.Wrapf(err, "writing object %s", name)
	}
	return errors.Wrapf(w.Close(), "closing object %s", name)
}

func init() {
	store.Register("gcs", func(ctx context.Context, conf map[string]interface{}) (fic.Store, error) {
		creds := config.String(conf, "creds")
		if creds == "" {
			return nil, errors.New(`missing "creds" parameter`)
		}
		bucketName := config.String(conf, "bucket")
		if bucketName == "" {
			return nil, errors.New(`missing "bucket" parameter`)
		}
		c, err := storage.NewClient(ctx, option.WithCredentialsFile(creds))
		if err != nil {
			return nil, errors.Wrap(err, "creating cloud storage client")
		}
		return New(c.Bucket(bucketName), config.String(conf, "object")), nil
	})
}
