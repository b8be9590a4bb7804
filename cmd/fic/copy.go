package main

import (
	"context"
	"encoding/json"
	"flag"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/fic"
	"github.com/bobg/fic/store"
)

// copyBaseline copies the configured baseline to other stores,
// e.g. when moving from a local file to a database.
func (c maincmd) copyBaseline(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() == 0 {
		return errors.New(`usage: copy-baseline STORECONF... (e.g. '{"type": "sqlite3", "conn": "fic.db"}')`)
	}

	r, _, cleanup, err := c.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var dsts []fic.Store
	for _, arg := range fs.Args() {
		dec := json.NewDecoder(strings.NewReader(arg))
		dec.UseNumber()

		var conf map[string]interface{}
		if err := dec.Decode(&conf); err != nil {
			return errors.Wrapf(err, "decoding store config %s", arg)
		}
		dst, err := store.FromConfig(ctx, conf)
		if err != nil {
			return errors.Wrapf(err, "creating store from %s", arg)
		}
		dsts = append(dsts, dst)
	}

	t, err := store.Sync(ctx, r.Store, dsts...)
	if err != nil {
		return err
	}
	r.Logger.Printf("Copied baseline of %d entries to %d store(s)", len(t), len(dsts))
	return nil
}
