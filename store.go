package fic

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Store holds a baseline: the Table that later snapshots are checked against.
type Store interface {
	// Load gets the baseline.
	// It returns ErrNotFound if no baseline has been saved,
	// and a *FormatError if the stored baseline cannot be decoded.
	// It never substitutes an empty Table for a missing one.
	Load(context.Context) (Table, error)

	// Save replaces the baseline with t.
	Save(ctx context.Context, t Table) error
}

// ErrNotFound is the error returned
// when a Store has no baseline.
var ErrNotFound = errors.New("baseline not found")

// FormatError is the error returned
// when a stored baseline does not match the expected schema,
// e.g. because it was corrupted or edited by hand.
type FormatError struct {
	Source string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed baseline %s: %s", e.Source, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError tells whether err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var e *FormatError
	return errors.As(err, &e)
}
