package sqlite3

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/bobg/fic"
	"github.com/bobg/fic/testutil"
)

func TestStore(t *testing.T) {
	withTestStore(t, func(ctx context.Context, s *Store) {
		testutil.Baseline(ctx, t, s)
	})
}

func TestCorrupt(t *testing.T) {
	withTestStore(t, func(ctx context.Context, s *Store) {
		if err := s.Save(ctx, fic.Table{"a": fic.Digest{1}}); err != nil {
			t.Fatal(err)
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE baseline SET digest = 'xyzzy'`); err != nil {
			t.Fatal(err)
		}
		_, err := s.Load(ctx)
		if !fic.IsFormatError(err) {
			t.Errorf("got %v, want a format error", err)
		}
	})
}

func TestReopen(t *testing.T) {
	var (
		ctx  = context.Background()
		path = filepath.Join(t.TempDir(), "baseline.db")
		want = testutil.BigTable(50)
	)

	func() {
		db, err := sql.Open("sqlite3", path)
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		s, err := New(ctx, db)
		if err != nil {
			t.Fatal(err)
		}
		if err = s.Save(ctx, want); err != nil {
			t.Fatal(err)
		}
	}()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Error("baseline changed across reopen")
	}
}

func withTestStore(t *testing.T, fn func(context.Context, *Store)) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "fictest.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}

	fn(ctx, s)
}
