package smtp

import (
	"context"
	"net/smtp"
	"testing"
	"time"

	"github.com/bobg/fic/notify"
)

func TestSend(t *testing.T) {
	n, err := New(Config{
		Server:   "mail.example.com",
		Port:     2525,
		Username: "checker",
		Password: "secret",
		From:     "Checker <checker@example.com>",
		To:       "admin@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	n.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		if a == nil {
			t.Error("no auth")
		}
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err = n.Send(context.Background(), notify.Message{Subject: "[File Checker] Changes Detected", Body: "line 1\nline 2\n"})
	if err != nil {
		t.Fatal(err)
	}

	if gotAddr != "mail.example.com:2525" {
		t.Errorf("got addr %s", gotAddr)
	}
	if gotFrom != "checker@example.com" {
		t.Errorf("got from %s", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "admin@example.com" {
		t.Errorf("got to %v", gotTo)
	}

	const want = "From: \"Checker\" <checker@example.com>\r\n" +
		"To: <admin@example.com>\r\n" +
		"Subject: [File Checker] Changes Detected\r\n" +
		"Date: Fri, 01 Mar 2024 12:00:00 +0000\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"line 1\r\nline 2\r\n"
	if gotMsg != want {
		t.Errorf("got message:\n%q\nwant:\n%q", gotMsg, want)
	}
}

func TestNewErrors(t *testing.T) {
	cases := []Config{
		{From: "a@example.com", To: "b@example.com"},
		{Server: "mail.example.com", From: "not an address", To: "b@example.com"},
		{Server: "mail.example.com", From: "a@example.com", To: ""},
	}
	for i, c := range cases {
		if _, err := New(c); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestRegistered(t *testing.T) {
	n, err := notify.Create("smtp", map[string]interface{}{
		"smtp_server":  "mail.example.com",
		"smtp_port":    465,
		"sender_email": "checker@example.com",
		"admin_email":  "admin@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := n.(*Notifier).addr; got != "mail.example.com:465" {
		t.Errorf("got addr %s", got)
	}
}

func TestCanceled(t *testing.T) {
	n, err := New(Config{Server: "mail.example.com", From: "a@example.com", To: "b@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Error("sendMail called after cancellation")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err = n.Send(ctx, notify.Message{}); err == nil {
		t.Error("expected error")
	}
}
