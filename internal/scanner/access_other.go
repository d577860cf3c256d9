//go:build !unix

package scanner

import "io/fs"

// writable falls back to the owner write bit from lstat. For a symlink that
// is the link's own mode, matching the unix branch, which never follows links.
func writable(path string, info fs.FileInfo) bool {
	return info.Mode().Perm()&0200 != 0
}
