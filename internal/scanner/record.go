package scanner

import (
	"time"
)

// Kind classifies a filesystem entry
type Kind int

const (
	KindRegular Kind = iota
	KindSymlink
	KindProtected
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindSymlink:
		return "symlink"
	case KindProtected:
		return "protected"
	default:
		return "unknown"
	}
}

// Category is a coarse media tag derived from the file extension
type Category string

const (
	CategoryImage   Category = "image"
	CategoryVideo   Category = "video"
	CategoryAudio   Category = "audio"
	CategoryFile    Category = "file"
	CategorySymlink Category = "symlink"
)

// FileRecord describes one filesystem entry found during a scan.
// All fields are fixed at classification time except the digest, which is
// set at most once, and only after a complete read of the content.
type FileRecord struct {
	Path      string
	Size      int64
	ModTime   time.Time
	DeviceID  uint64
	Inode     uint64
	Kind      Kind
	Category  Category
	Deletable bool

	digest string
}

// Digest returns the content digest and whether one has been computed
func (r *FileRecord) Digest() (string, bool) {
	return r.digest, r.digest != ""
}

// setDigest records d unless a digest is already present
func (r *FileRecord) setDigest(d string) bool {
	if r.digest != "" || d == "" {
		return false
	}
	r.digest = d
	return true
}

// identity is the key under which a digest may be reused within one scan
type identity struct {
	dev   uint64
	ino   uint64
	size  int64
	mtime int64
}

// identity returns the reuse key; ok is false when the platform gave no inode
func (r *FileRecord) identity() (identity, bool) {
	if r.Inode == 0 {
		return identity{}, false
	}
	return identity{dev: r.DeviceID, ino: r.Inode, size: r.Size, mtime: r.ModTime.UnixNano()}, true
}

// hashable reports whether the record's size describes its content
func (r *FileRecord) hashable() bool {
	return r.Kind != KindSymlink && r.Category != CategorySymlink && r.Size > 0
}
