//go:build !unix

package scanner

import "io/fs"

// fileIdentity is unavailable here; records without an inode skip the digest cache
func fileIdentity(info fs.FileInfo) (dev, ino uint64) {
	return 0, 0
}
