// Package run ties the fingerprinter, a baseline store, and a notifier
// together into the checker's modes of operation.
package run

import (
	"context"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bobg/fic"
	"github.com/bobg/fic/fingerprint"
	"github.com/bobg/fic/notify"
)

// Runner performs integrity checks of one directory tree.
type Runner struct {
	Root     string
	Store    fic.Store
	Notifier notify.Notifier // nil means notify.None

	// Client and Host identify the checked site in notifications.
	Client, Host string

	Logger  *log.Logger // nil means the standard logger
	Options []fingerprint.Option
}

// Check compares the tree against the saved baseline
// and sends a notification if anything differs.
// A missing baseline is an error satisfying errors.Is(err, fic.ErrNotFound).
//
// If the notification cannot be sent,
// the (non-empty) result is returned along with the error.
func (r *Runner) Check(ctx context.Context) (fic.Result, error) {
	id := runID()
	r.logf(id, "Starting check of %s", r.Root)

	baseline, err := r.load(ctx, id)
	if err != nil {
		return fic.Result{}, err
	}
	return r.check(ctx, id, baseline)
}

// UpdateBaseline replaces the saved baseline with a fresh snapshot of the tree.
// If the snapshot fails, nothing is saved.
// If announce is true, a notification reports the update.
func (r *Runner) UpdateBaseline(ctx context.Context, announce bool) (fic.Table, error) {
	id := runID()
	r.logf(id, "Generating baseline for %s", r.Root)
	return r.update(ctx, id, announce)
}

// Auto is Check, except that a missing baseline is first created from the current tree.
// A freshly created baseline matches the tree by construction,
// so that case reports no changes without scanning again.
func (r *Runner) Auto(ctx context.Context) (fic.Result, error) {
	id := runID()
	r.logf(id, "Starting check of %s", r.Root)

	baseline, err := r.load(ctx, id)
	if errors.Is(err, fic.ErrNotFound) {
		r.logf(id, "No baseline for %s, creating one", r.Root)
		if _, err = r.update(ctx, id, false); err != nil {
			return fic.Result{}, err
		}
		return fic.Result{}, nil
	}
	if err != nil {
		return fic.Result{}, err
	}
	return r.check(ctx, id, baseline)
}

func (r *Runner) load(ctx context.Context, id string) (fic.Table, error) {
	baseline, err := r.Store.Load(ctx)
	if errors.Is(err, fic.ErrNotFound) {
		r.logf(id, "No baseline found")
		return nil, errors.Wrap(err, "loading baseline")
	}
	if err != nil {
		r.logf(id, "ERROR loading baseline: %s", err)
		return nil, errors.Wrap(err, "loading baseline")
	}
	return baseline, nil
}

func (r *Runner) check(ctx context.Context, id string, baseline fic.Table) (fic.Result, error) {
	current, err := r.snapshot(ctx, id)
	if err != nil {
		return fic.Result{}, err
	}

	res := fic.Diff(current, baseline)
	if res.Empty() {
		r.logf(id, "No changes detected")
		return res, nil
	}

	r.logf(id, "Changes detected: %d modified, %d new, %d deleted", len(res.Modified), len(res.New), len(res.Deleted))
	err = r.send(ctx, id, notify.Changes(r.Client, r.Host, res))
	return res, err
}

func (r *Runner) update(ctx context.Context, id string, announce bool) (fic.Table, error) {
	t, err := r.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = r.Store.Save(ctx, t); err != nil {
		r.logf(id, "ERROR saving baseline: %s", err)
		return nil, errors.Wrap(err, "saving baseline")
	}
	r.logf(id, "Baseline saved")

	if announce {
		err = r.send(ctx, id, notify.BaselineUpdated(r.Client, r.Host))
	}
	return t, err
}

func (r *Runner) snapshot(ctx context.Context, id string) (fic.Table, error) {
	start := time.Now()
	t, err := fingerprint.Snapshot(ctx, r.Root, r.Options...)
	if err != nil {
		r.logf(id, "ERROR scanning %s: %s", r.Root, err)
		return nil, errors.Wrapf(err, "scanning %s", r.Root)
	}
	r.logf(id, "Fingerprinted %s files in %s", humanize.Comma(int64(len(t))), time.Since(start).Round(time.Millisecond))
	return t, nil
}

func (r *Runner) send(ctx context.Context, id string, msg notify.Message) error {
	n := r.Notifier
	if n == nil {
		n = notify.None{}
	}
	if err := n.Send(ctx, msg); err != nil {
		r.logf(id, "ERROR sending notification: %s", err)
		return errors.Wrap(err, "sending notification")
	}
	r.logf(id, "Notification sent")
	return nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

func (r *Runner) logf(id, format string, args ...interface{}) {
	r.logger().Printf("[%s] "+format, append([]interface{}{id}, args...)...)
}

func runID() string {
	return uuid.Must(uuid.NewV7()).String()
}
