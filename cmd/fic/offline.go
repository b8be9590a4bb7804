package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/fic"
	"github.com/bobg/fic/fingerprint"
	"github.com/bobg/fic/store/file"
)

// The subcommands in this file need no config file.

func (c maincmd) snapshot(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		out     = fs.String("o", "", "write the baseline document to this file (default: stdout)")
		workers = fs.Int("workers", 0, "number of hashing workers (default: number of CPUs)")
		exclude = fs.String("exclude", "", "comma-separated base-name patterns to skip")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	root := "."
	switch fs.NArg() {
	case 0:
	case 1:
		root = fs.Arg(0)
	default:
		return errors.New("usage: snapshot [-o FILE] [DIR]")
	}

	var opts []fingerprint.Option
	if *workers > 0 {
		opts = append(opts, fingerprint.WithWorkers(*workers))
	}
	if *exclude != "" {
		opts = append(opts, fingerprint.WithExclude(strings.Split(*exclude, ",")...))
	}

	t, err := fingerprint.Snapshot(ctx, root, opts...)
	if err != nil {
		return err
	}

	if *out == "" {
		return fic.EncodeBaseline(os.Stdout, t)
	}
	return file.New(*out).Save(ctx, t)
}

func (c maincmd) diff(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 2 {
		return errors.New("usage: diff OLD NEW")
	}

	baseline, err := file.New(fs.Arg(0)).Load(ctx)
	if err != nil {
		return errors.Wrapf(err, "loading %s", fs.Arg(0))
	}
	current, err := file.New(fs.Arg(1)).Load(ctx)
	if err != nil {
		return errors.Wrapf(err, "loading %s", fs.Arg(1))
	}

	res := fic.Diff(current, baseline)
	for _, p := range res.Modified {
		fmt.Printf("M %s\n", p)
	}
	for _, p := range res.New {
		fmt.Printf("A %s\n", p)
	}
	for _, p := range res.Deleted {
		fmt.Printf("D %s\n", p)
	}
	return nil
}

func (c maincmd) digest(_ context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	for _, path := range fs.Args() {
		d, err := fingerprint.DigestOf(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", d, path)
	}
	return nil
}
