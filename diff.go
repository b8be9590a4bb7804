package fic

import "sort"

// Result is the difference between a current Table and a baseline Table.
// Each path appears in at most one of the three lists,
// and each list is sorted.
// Paths whose digests are unchanged appear in none of them.
type Result struct {
	Modified []string `json:"modified"`
	New      []string `json:"new_files"`
	Deleted  []string `json:"deleted"`
}

// Empty tells whether r reports no changes.
func (r Result) Empty() bool {
	return r.Len() == 0
}

// Len is the total number of changed paths in r.
func (r Result) Len() int {
	return len(r.Modified) + len(r.New) + len(r.Deleted)
}

// Diff compares current against baseline.
// A path in both with a different digest is modified,
// a path only in current is new,
// and a path only in baseline is deleted.
func Diff(current, baseline Table) Result {
	var r Result

	for path, d := range current {
		bd, ok := baseline[path]
		switch {
		case !ok:
			r.New = append(r.New, path)
		case bd != d:
			r.Modified = append(r.Modified, path)
		}
	}

	for path := range baseline {
		if _, ok := current[path]; !ok {
			r.Deleted = append(r.Deleted, path)
		}
	}

	sort.Strings(r.Modified)
	sort.Strings(r.New)
	sort.Strings(r.Deleted)

	return r
}
