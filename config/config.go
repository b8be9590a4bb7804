// Package config loads the settings of a file integrity checker.
//
// A config file is JSON,
// or YAML if its name ends in .yaml or .yml.
// Example:
//
//	{
//	  "client_name": "Acme",
//	  "server_name": "web-1",
//	  "root": "/var/www/html",
//	  "baseline": {"type": "file", "path": "/var/lib/fic/baseline.json"},
//	  "notify": {
//	    "send_via": "slack",
//	    "slack": {"webhook_url": "https://hooks.slack.com/services/..."}
//	  },
//	  "log_file": "/var/log/fic.log"
//	}
//
// The layout with "general", "notifications", "slack", and "email" sections
// is also accepted.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultLogFile is where logs go when a config does not say.
const DefaultLogFile = "integrity_checker.log"

// Config holds the settings of a file integrity checker.
type Config struct {
	// ClientName and ServerName label notifications.
	ClientName string
	ServerName string

	// Root is the directory tree to check.
	Root string

	// Baseline configures the baseline store.
	// Its "type" entry selects a backend registered with the store package.
	Baseline map[string]interface{}

	// Notify configures notifications.
	// Its "send_via" entry selects a notifier registered with the notify package,
	// and the sub-map named by send_via holds that notifier's settings.
	Notify map[string]interface{}

	// LogFile receives a copy of all log output.
	// The empty string means log to stderr only.
	LogFile string

	Workers int
	Exclude []string

	// HardlinkCache bounds the number of hard-linked files remembered during one scan.
	// Zero means the fingerprint package default.
	HardlinkCache int
}

// Load reads and validates the config file at filename.
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", filename)
	}

	var conf map[string]interface{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &conf)
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		err = dec.Decode(&conf)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", filename)
	}

	c, err := FromMap(conf)
	return c, errors.Wrapf(err, "in config file %s", filename)
}

// FromMap builds a Config from a decoded config document.
func FromMap(conf map[string]interface{}) (*Config, error) {
	if conf == nil {
		return nil, errors.New("empty config")
	}

	general := conf
	if g := Map(conf, "general"); g != nil {
		general = g
	}

	c := &Config{
		ClientName: String(general, "client_name"),
		ServerName: String(general, "server_name"),
		Root:       String(general, "root"),
		Baseline:   Map(conf, "baseline"),
		Notify:     Map(conf, "notify"),
		LogFile:    DefaultLogFile,
	}
	if c.Root == "" {
		c.Root = String(general, "wordpress_dir")
	}
	if c.Baseline == nil {
		if path := String(general, "baseline_file"); path != "" {
			c.Baseline = map[string]interface{}{"type": "file", "path": path}
		}
	}
	if c.Notify == nil {
		if n := Map(conf, "notifications"); n != nil {
			c.Notify = map[string]interface{}{
				"send_via": String(n, "send_via"),
				"slack":    Map(conf, "slack"),
				"email":    Map(conf, "email"),
			}
		}
	}
	if _, ok := general["log_file"]; ok {
		c.LogFile = String(general, "log_file")
	}

	var err error
	c.Workers, err = Int(general, "workers")
	if err != nil {
		return nil, err
	}
	c.HardlinkCache, err = Int(general, "hardlink_cache")
	if err != nil {
		return nil, err
	}
	c.Exclude, err = Strings(general, "exclude")
	if err != nil {
		return nil, err
	}

	if c.Root == "" {
		return nil, errors.New("missing `root`")
	}
	if c.Baseline == nil {
		return nil, errors.New("missing `baseline` (or `baseline_file`)")
	}
	return c, nil
}

// SendVia is the notifier selected by c,
// or "none".
func (c *Config) SendVia() string {
	if s := String(c.Notify, "send_via"); s != "" {
		return s
	}
	return "none"
}

// NotifierConfig is the settings map for the selected notifier.
// The "smtp" notifier also accepts its settings under "email".
func (c *Config) NotifierConfig() map[string]interface{} {
	via := c.SendVia()
	if m := Map(c.Notify, via); m != nil {
		return m
	}
	if via == "smtp" {
		return Map(c.Notify, "email")
	}
	return nil
}

// String gets the string at conf[key],
// or "" if there is none.
func String(conf map[string]interface{}, key string) string {
	s, _ := conf[key].(string)
	return s
}

// Map gets the nested map at conf[key],
// or nil if there is none.
func Map(conf map[string]interface{}, key string) map[string]interface{} {
	m, _ := conf[key].(map[string]interface{})
	return m
}

// Int gets the integer at conf[key],
// or 0 if there is none.
// JSON and YAML decoders produce different types for numbers;
// all of them are accepted.
func Int(conf map[string]interface{}, key string) (int, error) {
	switch v := conf[key].(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("`%s` must be an integer, not %v", key, v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		return int(n), errors.Wrapf(err, "parsing `%s`", key)
	default:
		return 0, fmt.Errorf("`%s` must be an integer, not %T", key, v)
	}
}

// Strings gets the list of strings at conf[key],
// or nil if there is none.
func Strings(conf map[string]interface{}, key string) ([]string, error) {
	switch v := conf[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []interface{}:
		result := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("`%s` item %d must be a string, not %T", key, i, item)
			}
			result = append(result, s)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("`%s` must be a list of strings, not %T", key, v)
	}
}

// Maps gets the list of nested maps at conf[key],
// or nil if there is none.
func Maps(conf map[string]interface{}, key string) ([]map[string]interface{}, error) {
	switch v := conf[key].(type) {
	case nil:
		return nil, nil
	case []map[string]interface{}:
		return v, nil
	case []interface{}:
		result := make([]map[string]interface{}, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("`%s` item %d must be a map, not %T", key, i, item)
			}
			result = append(result, m)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("`%s` must be a list of maps, not %T", key, v)
	}
}
