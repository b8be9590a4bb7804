package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bobg/fic/notify"
)

func TestSend(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			t.Errorf("got method %s, want POST", req.Method)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("got content type %s", ct)
		}
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	n := New(srv.URL, srv.Client())
	err := n.Send(context.Background(), notify.Message{Subject: "ignored", Body: "hello\nworld"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "hello\nworld" {
		t.Errorf("got text %q", got.Text)
	}
}

func TestSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	err := New(srv.URL, srv.Client()).Send(context.Background(), notify.Message{Body: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRegistered(t *testing.T) {
	n, err := notify.Create("slack", map[string]interface{}{"webhook_url": "https://hooks.example.com/x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(*Notifier); !ok {
		t.Errorf("got %T, want *Notifier", n)
	}
	if _, err = notify.Create("slack", nil); err == nil {
		t.Error("expected error without webhook_url")
	}
}
