// Package fic describes the fingerprint tables of a file integrity checker.
package fic

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

type (
	// Digest is the sha256 hash of a file's content.
	Digest [sha256.Size]byte

	// Table maps file paths to the digests of their content.
	// It holds one entry per regular file.
	Table map[string]Digest
)

// Zero is the zero value of a Digest.
var Zero Digest

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// FromHex parses s, which must be 64 lowercase hex digits, into d.
// Uppercase is rejected so that every accepted string is one String can produce.
func (d *Digest) FromHex(s string) error {
	if len(s) != 2*sha256.Size {
		return fmt.Errorf("wrong length %d for hex digest", len(s))
	}
	for i := 0; i < len(s); i++ {
		if c := s[i]; !('0' <= c && c <= '9') && !('a' <= c && c <= 'f') {
			return fmt.Errorf("invalid character %q at position %d of hex digest", c, i)
		}
	}
	_, err := hex.Decode(d[:], []byte(s))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	return d.FromHex(string(text))
}

func DigestFromHex(s string) (Digest, error) {
	var out Digest
	err := out.FromHex(s)
	return out, err
}

// Paths returns the paths in t in lexicographic order.
func (t Table) Paths() []string {
	paths := make([]string, 0, len(t))
	for path := range t {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Equal tells whether t and other have the same paths with the same digests.
func (t Table) Equal(other Table) bool {
	if len(t) != len(other) {
		return false
	}
	for path, d := range t {
		if od, ok := other[path]; !ok || od != d {
			return false
		}
	}
	return true
}
