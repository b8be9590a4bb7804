package replica

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

func TestStore(t *testing.T) {
	var (
		ctx = context.Background()
		m1  = mem.New()
		m2  = mem.New()
	)
	testutil.Baseline(ctx, t, New(m1, m2))

	// Both replicas hold the last saved table.
	for i, m := range []*mem.Store{m1, m2} {
		got, err := m.Load(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("replica %d: got %d entries, want 0", i, len(got))
		}
	}
}

func TestMismatch(t *testing.T) {
	var (
		ctx = context.Background()
		m1  = mem.New()
		m2  = mem.New()
		s   = New(m1, m2)
	)

	if err := m2.Save(ctx, fic.Table{"a": fic.Digest{1}}); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load(ctx)
	var merr MismatchError
	if !errors.As(err, &merr) {
		t.Fatalf("got %v, want MismatchError", err)
	}
	if merr.Replica != 1 {
		t.Errorf("got replica %d, want 1", merr.Replica)
	}

	if err = m1.Save(ctx, fic.Table{"a": fic.Digest{2}}); err != nil {
		t.Fatal(err)
	}
	if _, err = s.Load(ctx); !errors.As(err, &merr) {
		t.Errorf("got %v, want MismatchError", err)
	}

	want := fic.Table{"a": fic.Digest{3}}
	if err = s.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFromConfig(t *testing.T) {
	ctx := context.Background()
	conf := map[string]interface{}{
		"type": "replica",
		"stores": []interface{}{
			map[string]interface{}{"type": "mem"},
			map[string]interface{}{"type": "mem"},
		},
	}
	s, err := store.FromConfig(ctx, conf)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.(*Store).stores); n != 2 {
		t.Errorf("got %d replicas, want 2", n)
	}

	if _, err = store.FromConfig(ctx, map[string]interface{}{"type": "replica"}); err == nil {
		t.Error("expected error for replica store with no nested stores")
	}
}
