// Package notify delivers integrity reports to an administrator.
// Delivery channels register themselves with Register,
// keyed by the name used in the "send_via" config setting.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bobg/fic"
)

// Message is a notification to deliver.
// Channels without a subject line send only the body.
type Message struct {
	Subject string
	Body    string
}

// Notifier delivers messages.
type Notifier interface {
	Send(context.Context, Message) error
}

// Changes produces the report for a non-empty diff result
// found on server host belonging to client.
func Changes(client, host string, r fic.Result) Message {
	buf := new(strings.Builder)
	fmt.Fprintf(buf, "Warning for %s on %s: File integrity issues detected.\n\n", client, host)

	section := func(heading string, paths []string, first bool) {
		if len(paths) == 0 {
			return
		}
		if !first {
			buf.WriteString("\n")
		}
		buf.WriteString(heading + ":\n")
		for _, p := range paths {
			fmt.Fprintf(buf, "  - %s\n", p)
		}
	}
	section("Modified Files", r.Modified, true)
	section("New Files", r.New, false)
	section("Deleted Files", r.Deleted, false)

	return Message{
		Subject: "[File Checker] Changes Detected",
		Body:    buf.String(),
	}
}

// BaselineUpdated produces the announcement of a new baseline.
func BaselineUpdated(client, host string) Message {
	return Message{
		Subject: "[File Checker] Baseline Updated",
		Body:    fmt.Sprintf("Info for %s on %s: Baseline has been updated successfully.", client, host),
	}
}

// Factory creates a Notifier from a config map.
type Factory func(map[string]interface{}) (Notifier, error)

var registry = make(map[string]Factory)

// Register makes a channel available to Create under the given name.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create produces the Notifier registered under key.
func Create(key string, conf map[string]interface{}) (Notifier, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown notification method %s (have %s)", key, strings.Join(Types(), ", "))
	}
	return f(conf)
}

// Types lists the registered channels.
func Types() []string {
	var keys []string
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// None discards every message.
type None struct{}

// Send implements Notifier.
func (None) Send(context.Context, Message) error { return nil }

func init() {
	Register("none", func(map[string]interface{}) (Notifier, error) {
		return None{}, nil
	})
}
