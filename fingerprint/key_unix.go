//go:build unix

package fingerprint

import (
	"io/fs"
	"syscall"
)

type fileKey struct {
	dev, ino uint64
}

// keyOf identifies the file behind info.
// The boolean result is true only for files with more than one hard link.
func keyOf(info fs.FileInfo) (fileKey, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st.Nlink < 2 {
		return fileKey{}, false
	}
	return fileKey{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}
