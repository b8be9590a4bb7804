package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"

	"github.com/bobg/fic/config"
	"github.com/bobg/fic/watch"
)

func (c maincmd) check(ctx context.Context, fs *flag.FlagSet, args []string) error {
	strict := fs.Bool("strict", false, "fail when there is no baseline instead of creating one")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	r, _, cleanup, err := c.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if *strict {
		_, err = r.Check(ctx)
	} else {
		_, err = r.Auto(ctx)
	}
	return err
}

func (c maincmd) updateBaseline(ctx context.Context, fs *flag.FlagSet, args []string) error {
	announce := fs.Bool("notify", false, "send a notification after updating")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	r, _, cleanup, err := c.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = r.UpdateBaseline(ctx, *announce)
	return err
}

func (c maincmd) watch(ctx context.Context, fs *flag.FlagSet, args []string) error {
	debounce := fs.Duration("debounce", watch.DefaultDebounce, "quiet period after a change before checking")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	r, conf, cleanup, err := c.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err = r.Auto(ctx); err != nil {
		r.Logger.Printf("ERROR in initial check: %s", err)
	}

	opts := watch.Options{
		Debounce: *debounce,
		Exclude:  conf.Exclude,
		Ignore:   ignoredPaths(conf),
		Logger:   r.Logger,
	}
	err = watch.Run(ctx, conf.Root, opts, func(ctx context.Context) error {
		_, err := r.Check(ctx)
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ignoredPaths are files the checker itself writes,
// which must not trigger a check if they live inside the watched tree.
func ignoredPaths(conf *config.Config) []string {
	var result []string
	add := func(path string) {
		if path == "" {
			return
		}
		result = append(result, path)
	}
	add(conf.LogFile)
	switch config.String(conf.Baseline, "type") {
	case "file":
		path := config.String(conf.Baseline, "path")
		add(path)
		add(path + ".lock")
	case "sqlite3":
		add(config.String(conf.Baseline, "conn"))
	}
	return result
}
