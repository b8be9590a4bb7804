// Package fic is the core of a file integrity checker.
//
// A file integrity checker detects unexpected changes to a directory tree,
// such as the files of a web application on a server where changes are rare
// and any unexplained change is suspicious.
//
// It works by computing a fingerprint,
// or _digest_,
// of every regular file under a root directory:
// the sha2-256 hash of the file's content.
// The resulting path-to-digest Table is a _snapshot_ of the tree
// (see the fingerprint subpackage).
//
// A snapshot that is known to be good is saved as the _baseline_
// in a Store
// (see the store subpackages for the available backends).
// Later runs take a fresh snapshot
// and Diff it against the baseline,
// classifying every changed path as modified, new, or deleted.
//
// Only content matters.
// A file whose permissions or modification time change,
// but whose bytes do not,
// is unchanged.
// A file that moves is reported as one deletion plus one addition.
//
// Symbolic links are never followed.
// Neither they nor directories, devices, pipes, or sockets appear in a Table.
package fic
