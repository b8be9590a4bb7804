// Command fic checks a directory tree against a saved baseline of file digests
// and reports modified, new, and deleted files.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/bobg/subcmd"
	"github.com/pkg/errors"

	"github.com/bobg/fic/config"
	"github.com/bobg/fic/fingerprint"
	"github.com/bobg/fic/notify"
	_ "github.com/bobg/fic/notify/slack"
	_ "github.com/bobg/fic/notify/smtp"
	"github.com/bobg/fic/run"
	"github.com/bobg/fic/store"
	_ "github.com/bobg/fic/store/file"
	_ "github.com/bobg/fic/store/gcs"
	_ "github.com/bobg/fic/store/logging"
	_ "github.com/bobg/fic/store/mem"
	_ "github.com/bobg/fic/store/pg"
	_ "github.com/bobg/fic/store/replica"
	_ "github.com/bobg/fic/store/sqlite3"
)

type maincmd struct {
	configFile string
}

func main() {
	configFile := flag.String("config", "ficconf.json", "path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := subcmd.Run(ctx, maincmd{configFile: *configFile}, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() map[string]subcmd.Subcmd {
	return map[string]subcmd.Subcmd{
		"check":           c.check,
		"copy-baseline":   c.copyBaseline,
		"update-baseline": c.updateBaseline,
		"watch":           c.watch,
		"snapshot":        c.snapshot,
		"diff":            c.diff,
		"digest":          c.digest,
	}
}

// setup loads the config file and builds a Runner from it.
// The returned function closes the log file.
func (c maincmd) setup(ctx context.Context) (*run.Runner, *config.Config, func(), error) {
	if c.configFile == "" {
		return nil, nil, nil, errors.New("config file not set")
	}
	conf, err := config.Load(c.configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		w       io.Writer = os.Stderr
		cleanup           = func() {}
	)
	if conf.LogFile != "" {
		f, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "opening log file %s", conf.LogFile)
		}
		w = io.MultiWriter(os.Stderr, f)
		cleanup = func() { f.Close() }
	}
	logger := log.New(w, "", log.LstdFlags)

	s, err := store.FromConfig(ctx, conf.Baseline)
	if err != nil {
		cleanup()
		return nil, nil, nil, errors.Wrap(err, "creating baseline store")
	}

	n, err := notify.Create(conf.SendVia(), conf.NotifierConfig())
	if err != nil {
		cleanup()
		return nil, nil, nil, errors.Wrap(err, "creating notifier")
	}

	opts := []fingerprint.Option{fingerprint.WithExclude(conf.Exclude...)}
	if conf.Workers > 0 {
		opts = append(opts, fingerprint.WithWorkers(conf.Workers))
	}
	if conf.HardlinkCache > 0 {
		opts = append(opts, fingerprint.WithCacheSize(conf.HardlinkCache))
	}

	r := &run.Runner{
		Root:     conf.Root,
		Store:    s,
		Notifier: n,
		Client:   conf.ClientName,
		Host:     conf.ServerName,
		Logger:   logger,
		Options:  opts,
	}
	return r, conf, cleanup, nil
}
