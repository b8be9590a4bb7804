// Package fingerprint computes the digests of files and directory trees.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/fic"
)

// DigestOf computes the digest of the content of the file at path.
// The file is streamed, not read into memory.
func DigestOf(path string) (fic.Digest, error) {
	return digestOf(path, openFile)
}

// DigestReader computes the digest of everything read from r.
func DigestReader(r io.Reader) (fic.Digest, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return fic.Zero, err
	}
	var d fic.Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

func digestOf(path string, open OpenFunc) (fic.Digest, error) {
	f, err := open(path)
	if err != nil {
		return fic.Zero, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	d, err := DigestReader(f)
	if err != nil {
		return fic.Zero, errors.Wrapf(err, "reading %s", path)
	}
	return d, nil
}

// OpenFunc opens a file for reading its content.
type OpenFunc func(path string) (io.ReadCloser, error)

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

type options struct {
	workers   int
	cacheSize int
	exclude   []string
	open      OpenFunc
}

// Option configures Snapshot.
type Option func(*options)

// WithWorkers sets the number of files hashed concurrently.
// The default is runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithCacheSize bounds the number of hard-linked files whose digests
// are remembered during one Snapshot.
// The default is 1024.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithExclude skips every directory and file whose base name matches
// one of the given filepath.Match patterns.
func WithExclude(patterns ...string) Option {
	return func(o *options) { o.exclude = append(o.exclude, patterns...) }
}

// WithOpen replaces os.Open as the way file content is read.
func WithOpen(open OpenFunc) Option {
	return func(o *options) { o.open = open }
}

func (o *options) defaults() {
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}
	if o.cacheSize <= 0 {
		o.cacheSize = 1024
	}
	if o.open == nil {
		o.open = openFile
	}
}

func (o *options) excluded(name string) bool {
	for _, pattern := range o.exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

type job struct {
	path   string
	key    fileKey
	linked bool
}

// Snapshot computes the digest of every regular file beneath root.
// The keys of the result are the paths produced by the walk:
// root joined with each file's path relative to root.
// Scanning an unchanged tree from the same root string
// always produces an identical Table.
//
// Symbolic links inside the tree are not followed and not recorded,
// nor are directories, devices, pipes, and sockets.
// If root itself is a symbolic link to a directory,
// the directory it points to is scanned.
//
// Any error reading the tree or one of its files aborts the snapshot.
// No partial Table is ever returned.
func Snapshot(ctx context.Context, root string, opts ...Option) (fic.Table, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.defaults()

	for _, pattern := range o.exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, errors.Wrapf(err, "checking exclude pattern %q", pattern)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "statting root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("root %s is not a directory", root)
	}

	walkRoot := root
	if linfo, err := os.Lstat(root); err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		// A trailing separator makes the walk resolve the link.
		walkRoot = strings.TrimRight(root, string(filepath.Separator)) + string(filepath.Separator)
	}

	links, err := lru.New(o.cacheSize) // fileKey -> fic.Digest
	if err != nil {
		return nil, errors.Wrap(err, "creating hard-link cache")
	}

	var (
		mu    sync.Mutex
		table = make(fic.Table)
		jobs  = make(chan job)
	)

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(jobs)

		return filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return errors.Wrapf(err, "walking %s", path)
			}
			if path != walkRoot && o.excluded(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			j := job{path: path}
			info, err := d.Info()
			if err != nil {
				return errors.Wrapf(err, "statting %s", path)
			}
			j.key, j.linked = keyOf(info)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- j:
				return nil
			}
		})
	})

	for i := 0; i < o.workers; i++ {
		eg.Go(func() error {
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}

				var (
					d      fic.Digest
					cached bool
				)
				if j.linked {
					var got interface{}
					if got, cached = links.Get(j.key); cached {
						d = got.(fic.Digest)
					}
				}
				if !cached {
					var err error
					d, err = digestOf(j.path, o.open)
					if err != nil {
						return err
					}
					if j.linked {
						links.Add(j.key, d)
					}
				}

				mu.Lock()
				table[j.path] = d
				mu.Unlock()
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}
