package notify

import (
	"testing"

	"github.com/bobg/fic"
)

func TestChanges(t *testing.T) {
	cases := []struct {
		name string
		r    fic.Result
		want string
	}{
		{
			name: "all",
			r: fic.Result{
				Modified: []string{"/w/index.php"},
				New:      []string{"/w/evil.php", "/w/x.php"},
				Deleted:  []string{"/w/readme.txt"},
			},
			want: `Warning for Acme on web-1: File integrity issues detected.

Modified Files:
  - /w/index.php

New Files:
  - /w/evil.php
  - /w/x.php

Deleted Files:
  - /w/readme.txt
`,
		},
		{
			name: "new_only",
			r:    fic.Result{New: []string{"/w/evil.php"}},
			want: `Warning for Acme on web-1: File integrity issues detected.


New Files:
  - /w/evil.php
`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := Changes("Acme", "web-1", c.r)
			if m.Body != c.want {
				t.Errorf("got:\n%s\nwant:\n%s", m.Body, c.want)
			}
			if m.Subject != "[File Checker] Changes Detected" {
				t.Errorf("got subject %q", m.Subject)
			}
		})
	}
}

func TestBaselineUpdated(t *testing.T) {
	m := BaselineUpdated("Acme", "web-1")
	const want = "Info for Acme on web-1: Baseline has been updated successfully."
	if m.Body != want {
		t.Errorf("got %q, want %q", m.Body, want)
	}
}

func TestCreate(t *testing.T) {
	n, err := Create("none", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(None); !ok {
		t.Errorf("got %T, want None", n)
	}
	if _, err = Create("carrier-pigeon", nil); err == nil {
		t.Error("expected error for unknown method")
	}
}
