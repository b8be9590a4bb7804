package store_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/bobg/fic"
	"github.com/bobg/fic/store"
	"github.com/bobg/fic/store/mem"
	"github.com/bobg/fic/testutil"
)

func TestSync(t *testing.T) {
	var (
		ctx  = context.Background()
		src  = mem.New()
		dst1 = mem.New()
		dst2 = mem.New()
		want = testutil.BigTable(20)
	)

	if _, err := store.Sync(ctx, src, dst1, dst2); !errors.Is(err, fic.ErrNotFound) {
		t.Errorf("got %v, want %v", err, fic.ErrNotFound)
	}

	if err := src.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	if err := dst2.Save(ctx, fic.Table{"stale": fic.Digest{1}}); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Sync(ctx, src, dst1, dst2); err != nil {
		t.Fatal(err)
	}

	for i, dst := range []fic.Store{dst1, dst2} {
		got, err := dst.Load(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("destination %d: mismatch (-want +got):\n%s", i, diff)
		}
	}
}
