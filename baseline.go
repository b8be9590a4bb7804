package fic

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// baselineDoc is the persisted form of a Table.
// The mapping sits under a named field so the document can grow new fields.
//
// JSON strings cannot carry arbitrary bytes,
// so paths that are not valid UTF-8 go in RawHashes,
// keyed by the standard base64 encoding of the path.
// Every path is in exactly one of the two maps.
type baselineDoc struct {
	Hashes    Table             `json:"hashes"`
	RawHashes map[string]Digest `json:"raw_hashes,omitempty"`
}

// EncodeBaseline writes t to w as an indented JSON document.
// Keys are written in sorted order,
// so encoding the same Table twice yields identical bytes.
func EncodeBaseline(w io.Writer, t Table) error {
	doc := baselineDoc{Hashes: make(Table, len(t))}
	for path, d := range t {
		if utf8.ValidString(path) {
			doc.Hashes[path] = d
			continue
		}
		if doc.RawHashes == nil {
			doc.RawHashes = make(map[string]Digest)
		}
		doc.RawHashes[base64.StdEncoding.EncodeToString([]byte(path))] = d
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling baseline")
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return errors.Wrap(err, "writing baseline")
}

// DecodeBaseline reads a document written by EncodeBaseline.
// Read errors are returned as-is;
// content that does not match the schema produces a *FormatError
// whose Source is source.
func DecodeBaseline(r io.Reader, source string) (Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading baseline %s", source)
	}
	return ParseBaseline(b, source)
}

// ParseBaseline is like DecodeBaseline but operates on an in-memory document.
// Field names must match exactly and digests must be lowercase hex.
// Unknown top-level fields are ignored.
func ParseBaseline(b []byte, source string) (Table, error) {
	formatErr := func(err error) error {
		return &FormatError{Source: source, Err: err}
	}

	// Decoding into a map first avoids encoding/json's case-insensitive field matching.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, formatErr(err)
	}

	raw, ok := fields["hashes"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, formatErr(errors.New(`missing "hashes" field`))
	}
	var result Table
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, formatErr(errors.Wrap(err, `decoding "hashes"`))
	}

	raw, ok = fields["raw_hashes"]
	if !ok {
		return result, nil
	}
	var rawHashes map[string]Digest
	if err := json.Unmarshal(raw, &rawHashes); err != nil {
		return nil, formatErr(errors.Wrap(err, `decoding "raw_hashes"`))
	}
	for key, d := range rawHashes {
		path, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, formatErr(errors.Wrapf(err, "decoding raw path %q", key))
		}
		if utf8.Valid(path) {
			// Such a path belongs in "hashes"; accepting it here would allow two spellings of one path.
			return nil, formatErr(errors.Errorf("raw path %q is valid UTF-8", key))
		}
		result[string(path)] = d
	}
	return result, nil
}
