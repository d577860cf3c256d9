//go:build unix

package scanner

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// writable reports whether the process may write the entry itself.
// Symlinks are checked without following them.
func writable(path string, info fs.FileInfo) bool {
	if info.Mode()&fs.ModeSymlink != 0 {
		return unix.Faccessat(unix.AT_FDCWD, path, unix.W_OK, unix.AT_SYMLINK_NOFOLLOW) == nil
	}
	return unix.Access(path, unix.W_OK) == nil
}
