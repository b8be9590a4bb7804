// Package testutil holds checks shared by the tests of baseline store implementations.
package testutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/fic"
)

// BigTable produces a Table of n entries with varied path strings.
func BigTable(n int) fic.Table {
	t := make(fic.Table, n)
	for i := 0; i < n; i++ {
		var path string
		switch i % 4 {
		case 0:
			path = fmt.Sprintf("/var/www/html/wp-content/plugins/p%d/index.php", i)
		case 1:
			path = fmt.Sprintf("relative/dir %d/file with spaces.txt", i)
		case 2:
			path = fmt.Sprintf("/srv/ünïcödé/%d/日本語.html", i)
		default:
			path = fmt.Sprintf(`/odd/"quoted"\back\slash/%d`, i)
		}
		t[path] = sha256.Sum256([]byte(path))
	}
	return t
}

// Baseline permits testing a fic.Store implementation.
// The store must not yet hold a baseline.
// Baseline checks that loading reports fic.ErrNotFound,
// that tables of various sizes survive a save and load
// (including paths that are not valid UTF-8),
// and that each save fully replaces the one before.
func Baseline(ctx context.Context, t *testing.T, s fic.Store) {
	_, err := s.Load(ctx)
	if !errors.Is(err, fic.ErrNotFound) {
		t.Fatalf("got %v loading from new store, want %v", err, fic.ErrNotFound)
	}

	cases := []struct {
		name string
		t    fic.Table
	}{
		{"empty", fic.Table{}},
		{"single", fic.Table{"a.txt": fic.Digest{0xa}}},
		{"thousand", BigTable(1000)},
		{"non_utf8", fic.Table{"a\xff.php": fic.Digest{1}, "a\xfe.php": fic.Digest{2}, "a\ufffd.php": fic.Digest{3}}},
		{"replaced", fic.Table{"b.txt": fic.Digest{0xb}, "c.txt": fic.Digest{0xc}}},
		{"empty_again", fic.Table{}},
	}

	for _, c := range cases {
		if err := s.Save(ctx, c.t); err != nil {
			t.Fatalf("saving %s: %s", c.name, err)
		}
		got, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("loading %s: %s", c.name, err)
		}
		if got == nil {
			t.Fatalf("loading %s: got nil table", c.name)
		}
		if diff := cmp.Diff(c.t, got); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", c.name, diff)
		}
	}
}
