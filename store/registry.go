// Package store is a registry of baseline store backends.
// Each backend registers a Factory in its init function;
// import it for its side effects to make it available to Create.
package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobg/fic"
)

// Factory creates a store from a config map.
type Factory func(context.Context, map[string]interface{}) (fic.Store, error)

var registry = make(map[string]Factory)

func Register(key string, f Factory) {
	registry[key] = f
}

func Create(ctx context.Context, key string, conf map[string]interface{}) (fic.Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("store type %s not found in registry", key)
	}
	return f(ctx, conf)
}

// FromConfig creates a store from a config map whose "type" entry names the backend.
func FromConfig(ctx context.Context, conf map[string]interface{}) (fic.Store, error) {
	typ, ok := conf["type"].(string)
	if !ok {
		return nil, fmt.Errorf("store config missing `type` parameter")
	}
	return Create(ctx, typ, conf)
}

// Types lists the registered backends.
func Types() []string {
	var keys []string
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
