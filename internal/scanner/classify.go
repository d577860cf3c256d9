package scanner

import (
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/reclaim/internal/security"
	"go.uber.org/zap"
)

// Classifier turns paths into FileRecords and applies the deletion policy
type Classifier struct {
	validator *security.PathValidator
	logger    *zap.Logger
}

// NewClassifier creates a Classifier that treats protectedPaths as reserved prefixes
func NewClassifier(protectedPaths []string, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		validator: security.NewPathValidator(protectedPaths...),
		logger:    logger,
	}
}

// Classify reads metadata for path without following symlinks.
// It never fails: if the entry cannot be read the record has zeroed
// numeric fields and is not deletable.
func (c *Classifier) Classify(path string) *FileRecord {
	info, err := os.Lstat(path)
	if err != nil {
		c.logger.Debug("Cannot read metadata", zap.String("path", path), zap.Error(err))
		return c.unreadable(path)
	}
	return c.classifyInfo(path, info)
}

func (c *Classifier) unreadable(path string) *FileRecord {
	rec := &FileRecord{
		Path:     path,
		Kind:     KindRegular,
		Category: categoryFor(path),
	}
	if c.validator.IsProtectedPath(path) {
		rec.Kind = KindProtected
	}
	return rec
}

// classifyInfo builds a record from lstat results already in hand
func (c *Classifier) classifyInfo(path string, info fs.FileInfo) *FileRecord {
	dev, ino := fileIdentity(info)
	rec := &FileRecord{
		Path:     path,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		DeviceID: dev,
		Inode:    ino,
		Kind:     KindRegular,
		Category: categoryFor(path),
	}

	protected := c.validator.IsProtectedPath(path)
	isLink := info.Mode()&fs.ModeSymlink != 0

	if isLink {
		rec.Kind = KindSymlink
		rec.Category = CategorySymlink
		if !linkTargetExists(path) {
			// Broken links are never deletable
			return markKind(rec, protected)
		}
	}

	rec.Deletable = !protected && writable(path, info)
	return markKind(rec, protected)
}

func markKind(rec *FileRecord, protected bool) *FileRecord {
	if protected {
		rec.Kind = KindProtected
		rec.Deletable = false
	}
	return rec
}

// linkTargetExists resolves a link relative to its own directory
func linkTargetExists(path string) bool {
	target, err := os.Readlink(path)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	_, err = os.Stat(target)
	return err == nil
}

// extensions missing from some platform mime tables
var mediaExtensions = map[string]Category{
	".heic": CategoryImage,
	".raw":  CategoryImage,
	".cr2":  CategoryImage,
	".nef":  CategoryImage,
	".mp4":  CategoryVideo,
	".m4v":  CategoryVideo,
	".mov":  CategoryVideo,
	".mkv":  CategoryVideo,
	".avi":  CategoryVideo,
	".webm": CategoryVideo,
	".mp3":  CategoryAudio,
	".m4a":  CategoryAudio,
	".wav":  CategoryAudio,
	".flac": CategoryAudio,
	".aac":  CategoryAudio,
	".ogg":  CategoryAudio,
}

// categoryFor tags a path as image, video, audio or generic file
func categoryFor(path string) Category {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return CategoryFile
	}

	if mt := mime.TypeByExtension(ext); mt != "" {
		switch {
		case strings.HasPrefix(mt, "image/"):
			return CategoryImage
		case strings.HasPrefix(mt, "video/"):
			return CategoryVideo
		case strings.HasPrefix(mt, "audio/"):
			return CategoryAudio
		}
	}

	if cat, ok := mediaExtensions[ext]; ok {
		return cat
	}
	return CategoryFile
}
