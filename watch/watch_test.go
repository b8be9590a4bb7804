package watch

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestRun(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "baseline.json"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		ready = make(chan struct{})
		runs  = make(chan struct{}, 10)
		done  = make(chan error, 1)
		buf   bytes.Buffer
	)

	opts := Options{
		Debounce: 50 * time.Millisecond,
		Ignore:   []string{filepath.Join(root, "baseline.json")},
		Logger:   log.New(&buf, "", 0),
		onReady:  func() { close(ready) },
	}
	go func() {
		done <- Run(ctx, root, opts, func(context.Context) error {
			runs <- struct{}{}
			return nil
		})
	}()

	select {
	case <-ready:
	case err := <-done:
		t.Fatal(err)
	}

	wait := func(what string) {
		t.Helper()
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatalf("no run after %s", what)
		}
	}

	// Several quick writes coalesce into one run.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	wait("writing a file")

	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	wait("creating a directory")

	// The new directory is watched too.
	if err := os.WriteFile(filepath.Join(sub, "b.txt"), []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	wait("writing in a new directory")

	// Ignored paths trigger nothing.
	if err := os.WriteFile(filepath.Join(root, "baseline.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-runs:
		t.Error("run triggered by an ignored path")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want %v", err, context.Canceled)
	}
}

func TestRunMissingRoot(t *testing.T) {
	err := Run(context.Background(), filepath.Join(t.TempDir(), "nonesuch"), Options{}, func(context.Context) error {
		return nil
	})
	if err == nil {
		t.Error("expected error")
	}
}
