// Package slack delivers notifications to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/bobg/fic/config"
	"github.com/bobg/fic/notify"
)

var _ notify.Notifier = &Notifier{}

// Notifier posts messages to a webhook.
type Notifier struct {
	url    string
	client *http.Client
}

// New produces a Notifier posting to the given webhook URL.
// A nil client means http.DefaultClient.
func New(url string, client *http.Client) *Notifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Notifier{url: url, client: client}
}

type payload struct {
	Text string `json:"text"`
}

// Send implements notify.Notifier.
// Slack messages have no subject, so only the body is sent.
func (n *Notifier) Send(ctx context.Context, msg notify.Message) error {
	body, err := json.Marshal(payload{Text: msg.Body})
	if err != nil {
		return errors.Wrap(err, "encoding slack payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building slack request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending slack message")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack message failed with status %s: %s", resp.Status, bytes.TrimSpace(detail))
	}
	return nil
}

func init() {
	notify.Register("slack", func(conf map[string]interface{}) (notify.Notifier, error) {
		url := config.String(conf, "webhook_url")
		if url == "" {
			return nil, errors.New(`missing "webhook_url" parameter`)
		}
		return New(url, nil), nil
	})
}
