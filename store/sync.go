package store

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/fic"
)

// Sync copies the baseline in src to each of the stores in dsts,
// replacing whatever they hold.
// It is an error for src to have no baseline.
func Sync(ctx context.Context, src fic.Store, dsts ...fic.Store) (fic.Table, error) {
	t, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading source baseline")
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i, dst := range dsts {
		i, dst := i, dst
		eg.Go(func() error {
			return errors.Wrapf(dst.Save(ctx, t), "saving to destination %d", i)
		})
	}
	return t, eg.Wait()
}
