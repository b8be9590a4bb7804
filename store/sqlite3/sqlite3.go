// Package sqlite3 implements a baseline store in a Sqlite database.
package sqlite3

import (
	"context"
	"database/sql"
	stderrs "errors"
	"time"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/bobg/fic"
	"github.com/bobg/fic/config"
	"github.com/bobg/fic/store"
)

var _ fic.Store = &Store{}

// Store is a Sqlite-based baseline store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `baseline_meta` and `baseline` tables if they do not exist.
// (If they do exist, they must have the columns and constraints described here.)
// A row in baseline_meta means a baseline has been saved, even an empty one.
const Schema = `
CREATE TABLE IF NOT EXISTS baseline_meta (
  saved_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS baseline (
  path TEXT PRIMARY KEY NOT NULL,
  digest TEXT NOT NULL
);
`

// New produces a new Store using `db` for storage.
// (See variable Schema.)
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, errors.Wrap(err, "creating schema")
}

// Load implements fic.Store.
func (s *Store) Load(ctx context.Context) (fic.Table, error) {
	const q = `SELECT saved_at FROM baseline_meta LIMIT 1`

	var savedAt string
	err := s.db.QueryRowContext(ctx, q).Scan(&savedAt)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, fic.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying baseline_meta")
	}

	const q2 = `SELECT path, digest FROM baseline`

	result := make(fic.Table)
	err = sqlutil.ForQueryRows(ctx, s.db, q2, func(path, digest string) error {
		d, err := fic.DigestFromHex(digest)
		if err != nil {
			return &fic.FormatError{Source: "sqlite3 baseline", Err: errors.Wrapf(err, "digest of %s", path)}
		}
		result[path] = d
		return nil
	})
	if fic.IsFormatError(err) {
		return nil, err
	}
	return result, errors.Wrap(err, "querying baseline")
}

// Save implements fic.Store.
// The old baseline is replaced in a single transaction.
func (s *Store) Save(ctx context.Context, t fic.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM baseline`); err != nil {
		return errors.Wrap(err, "clearing baseline")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM baseline_meta`); err != nil {
		return errors.Wrap(err, "clearing baseline_meta")
	}

	const q = `INSERT INTO baseline_meta (saved_at) VALUES ($1)`
	if _, err = tx.ExecContext(ctx, q, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return errors.Wrap(err, "inserting into baseline_meta")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO baseline (path, digest) VALUES ($1, $2)`)
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	for _, path := range t.Paths() {
		if _, err = stmt.ExecContext(ctx, path, t[path].String()); err != nil {
			return errors.Wrapf(err, "inserting %s", path)
		}
	}

	return errors.Wrap(tx.Commit(), "committing transaction")
}

func init() {
	store.Register("sqlite3", func(ctx context.Context, conf map[string]interface{}) (fic.Store, error) {
		conn := config.String(conf, "conn")
		if conn == "" {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("sqlite3", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
