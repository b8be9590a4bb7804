// Package pg implements a baseline store in a Postgresql database.
package pg

import (
	"context"
	"database/sql"
	stderrs "errors"
	"time"

	"github.com/bobg/sqlutil"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bobg/fic"
	"github.com/bobg/fic/config"
	"github.com/bobg/fic/store"
)

var _ fic.Store = &Store{}

// Store is a Postgresql-based baseline store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `baseline_meta` and `baseline` tables if they do not exist.
// (If they do exist, they must have the columns and constraints described here.)
// Paths are BYTEA because file names need not be valid UTF-8.
const Schema = `
CREATE TABLE IF NOT EXISTS baseline_meta (
  saved_at TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE TABLE IF NOT EXISTS baseline (
  path BYTEA PRIMARY KEY NOT NULL,
  digest TEXT NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create tables `baseline_meta` and `baseline`,
// or for those tables already to exist with the correct schema.
// (See variable Schema.)
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, errors.Wrap(err, "creating schema")
}

// Load implements fic.Store.
func (s *Store) Load(ctx context.Context) (fic.Table, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	var savedAt time.Time
	err = tx.QueryRowContext(ctx, `SELECT saved_at FROM baseline_meta LIMIT 1`).Scan(&savedAt)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, fic.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying baseline_meta")
	}

	result := make(fic.Table)
	err = sqlutil.ForQueryRows(ctx, tx, `SELECT path, digest FROM baseline`, func(path []byte, digest string) error {
		d, err := fic.DigestFromHex(digest)
		if err != nil {
			return &fic.FormatError{Source: "pg baseline", Err: errors.Wrapf(err, "digest of %q", path)}
		}
		result[string(path)] = d
		return nil
	})
	if fic.IsFormatError(err) {
		return nil, err
	}
	return result, errors.Wrap(err, "querying baseline")
}

// Save implements fic.Store.
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
	if _, err = tx.ExecContext(ctx, `INSERT INTO baseline_meta (saved_at) VALUES ($1)`, time.Now()); err != nil {
		return errors.Wrap(err, "inserting into baseline_meta")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO baseline (path, digest) VALUES ($1, $2)`)
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	for _, path := range t.Paths() {
		if _, err = stmt.ExecContext(ctx, []byte(path), t[path].String()); err != nil {
			return errors.Wrapf(err, "inserting %q", path)
		}
	}

	return errors.Wrap(tx.Commit(), "committing transaction")
}

func init() {
	store.Register("pg", func(ctx context.Context, conf map[string]interface{}) (fic.Store, error) {
		conn := config.String(conf, "conn")
		if conn == "" {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("postgres", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
