package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/fic/notify"
	"github.com/bobg/fic/store/file"
)

func TestSetup(t *testing.T) {
	var (
		dir  = t.TempDir()
		conf = filepath.Join(dir, "ficconf.yaml")
		root = filepath.Join(dir, "www")
	)
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatal(err)
	}
	err := os.WriteFile(conf, []byte(`
general:
  client_name: Acme
  server_name: web-1
  wordpress_dir: `+root+`
  baseline_file: `+filepath.Join(dir, "baseline.json")+`
  log_file: `+filepath.Join(dir, "fic.log")+`
notifications:
  send_via: none
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	r, c, cleanup, err := maincmd{configFile: conf}.setup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	if r.Root != root {
		t.Errorf("got root %s, want %s", r.Root, root)
	}
	if _, ok := r.Store.(*file.Store); !ok {
		t.Errorf("got store %T, want *file.Store", r.Store)
	}
	if _, ok := r.Notifier.(notify.None); !ok {
		t.Errorf("got notifier %T, want notify.None", r.Notifier)
	}

	if _, err = r.Auto(ctx); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(c.LogFile); err != nil || info.Size() == 0 {
		t.Errorf("log file not written (err %v)", err)
	}

	want := []string{
		filepath.Join(dir, "fic.log"),
		filepath.Join(dir, "baseline.json"),
		filepath.Join(dir, "baseline.json.lock"),
	}
	if diff := cmp.Diff(want, ignoredPaths(c)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSetupErrors(t *testing.T) {
	ctx := context.Background()
	if _, _, _, err := (maincmd{}).setup(ctx); err == nil {
		t.Error("expected error with no config file")
	}

	conf := filepath.Join(t.TempDir(), "ficconf.json")
	err := os.WriteFile(conf, []byte(`{"root": "/tmp", "baseline_file": "/tmp/b.json", "notify": {"send_via": "pager"}}`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, err = (maincmd{configFile: conf}).setup(ctx); err == nil {
		t.Error("expected error for unknown notification method")
	}
}
