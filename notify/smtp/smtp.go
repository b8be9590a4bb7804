// Package smtp delivers notifications by email.
package smtp

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/fic/config"
	"github.com/bobg/fic/notify"
)

var _ notify.Notifier = &Notifier{}

// Config describes an SMTP relay and the addresses used on it.
type Config struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Notifier sends each message as a plain-text email.
type Notifier struct {
	addr string
	auth smtp.Auth
	from *mail.Address
	to   *mail.Address

	now      func() time.Time
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New produces a Notifier from conf.
// Both addresses are validated here, so a bad config fails at startup rather than at the first alert.
func New(conf Config) (*Notifier, error) {
	if conf.Server == "" {
		return nil, errors.New("no smtp server")
	}
	if conf.Port == 0 {
		conf.Port = 587
	}
	from, err := mail.ParseAddress(conf.From)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing sender address %q", conf.From)
	}
	to, err := mail.ParseAddress(conf.To)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing admin address %q", conf.To)
	}

	n := &Notifier{
		addr:     net.JoinHostPort(conf.Server, strconv.Itoa(conf.Port)),
		from:     from,
		to:       to,
		now:      time.Now,
		sendMail: smtp.SendMail,
	}
	if conf.Username != "" {
		n.auth = smtp.PlainAuth("", conf.Username, conf.Password, conf.Server)
	}
	return n, nil
}

// Send implements notify.Notifier.
// The context is checked before sending, but net/smtp offers no way to interrupt a send in progress.
func (n *Notifier) Send(ctx context.Context, msg notify.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := n.sendMail(n.addr, n.auth, n.from.Address, []string{n.to.Address}, n.render(msg))
	return errors.Wrapf(err, "sending email to %s via %s", n.to.Address, n.addr)
}

func (n *Notifier) render(msg notify.Message) []byte {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "From: %s\r\n", n.from)
	fmt.Fprintf(buf, "To: %s\r\n", n.to)
	fmt.Fprintf(buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(buf, "Date: %s\r\n", n.now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return buf.Bytes()
}

func init() {
	notify.Register("smtp", func(conf map[string]interface{}) (notify.Notifier, error) {
		port, err := config.Int(conf, "smtp_port")
		if err != nil {
			return nil, err
		}
		return New(Config{
			Server:   config.String(conf, "smtp_server"),
			Port:     port,
			Username: config.String(conf, "smtp_username"),
			Password: config.String(conf, "smtp_password"),
			From:     config.String(conf, "sender_email"),
			To:       config.String(conf, "admin_email"),
		})
	})
}
