//go:build unix

package scanner

import (
	"io/fs"
	"syscall"
)

// fileIdentity extracts device and inode numbers from lstat results
func fileIdentity(info fs.FileInfo) (dev, ino uint64) {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(stat.Dev), uint64(stat.Ino)
	}
	return 0, 0
}
