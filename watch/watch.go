// Package watch runs an action whenever a directory tree changes.
package watch

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 2 * time.Second

// Options control Run.
type Options struct {
	// Debounce is how long the tree must be quiet after a change before the action runs.
	Debounce time.Duration

	// Exclude holds filepath.Match patterns for the base names of directories not to watch.
	Exclude []string

	// Ignore holds paths whose changes never trigger the action,
	// such as a baseline file or log file kept inside the tree.
	Ignore []string

	Logger *log.Logger

	onReady func() // for tests
}

// Run watches every directory under root,
// adding new directories as they appear,
// and calls action after each burst of changes.
// Errors from action are logged and do not stop the watch.
// Run returns when ctx is canceled or the watcher fails.
func Run(ctx context.Context, root string, opts Options, action func(context.Context) error) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ignored := make(map[string]bool)
	for _, p := range opts.Ignore {
		ignored[absPath(p)] = true
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer w.Close()

	if err = addTree(w, root, opts.Exclude, logger); err != nil {
		return err
	}
	logger.Printf("Watching %s", root)
	if opts.onReady != nil {
		opts.onReady()
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if ignored[absPath(ev.Name)] || ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				// Errors are logged by addTree; a vanished directory is not fatal.
				_ = addTree(w, ev.Name, opts.Exclude, logger)
			}
			pending = time.After(opts.Debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			logger.Printf("ERROR watching %s: %s", root, err)

		case <-pending:
			pending = nil
			if err := action(ctx); err != nil {
				logger.Printf("ERROR in triggered run: %s", err)
			}
		}
	}
}

// addTree adds dir and every directory below it to w.
// A non-directory is ignored.
func addTree(w *fsnotify.Watcher, dir string, exclude []string, logger *log.Logger) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return errors.Wrapf(err, "walking %s", dir)
			}
			logger.Printf("ERROR walking %s: %s", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && excluded(d.Name(), exclude) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			logger.Printf("ERROR watching %s: %s", path, err)
		}
		return nil
	})
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
