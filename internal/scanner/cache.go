package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScanCache lists the files under the given cache roots, largest first.
// Roots are supplied by the caller; missing ones are skipped, and a root
// nested inside another is folded into it. Files modified within the
// configured minimum age are left out.
func (s *Scanner) ScanCache(ctx context.Context, roots []string, progress CountFunc) (*ScanResult, error) {
	for _, root := range roots {
		if !filepath.IsAbs(root) {
			return nil, inputError("scan cache", root, fmt.Errorf("cache root must be absolute"))
		}
	}

	start := time.Now()
	result := &ScanResult{ScanID: uuid.NewString()}
	log := s.logger.With(zap.String("scan_id", result.ScanID), zap.String("op", "cache"))

	existing := s.existingRoots(roots, log)
	if len(existing) == 0 {
		log.Info("No cache roots to scan", zap.Int("requested", len(roots)))
		return result, nil
	}

	opts := WalkOptions{
		SkipPatterns: s.config.ExcludePatterns,
		Workers:      s.settings.cacheWorkers,
	}
	if s.settings.cacheMinAge > 0 {
		opts.ModifiedBefore = start.Add(-s.settings.cacheMinAge)
	}
	walker := NewWalker(s.classifier, opts, log)

	stats := walker.WalkRoots(ctx, existing, func(batch []*FileRecord) {
		result.add(batch...)
		progress.report(result.TotalCount)
	})

	result.Skipped = stats.Skipped + stats.UnitErrors
	result.Cancelled = stats.Cancelled
	result.sortBySize()
	result.Duration = time.Since(start)

	log.Info("Cache scan complete",
		zap.Int("roots", len(existing)),
		zap.Int("files", result.TotalCount),
		zap.Int64("bytes", result.TotalSize),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("elapsed", result.Duration))

	return result, nil
}

// existingRoots resolves symlinks, drops missing roots and folds nested ones
func (s *Scanner) existingRoots(roots []string, log *zap.Logger) []string {
	var resolved []string
	for _, root := range roots {
		resolvedPath, err := filepath.EvalSymlinks(root)
		if err != nil {
			log.Debug("Skipping cache root", zap.String("root", root), zap.Error(err))
			continue
		}
		info, err := os.Stat(resolvedPath)
		if err != nil || !info.IsDir() {
			log.Debug("Skipping cache root", zap.String("root", root), zap.Error(err))
			continue
		}
		resolved = append(resolved, filepath.Clean(resolvedPath))
	}

	// Shorter paths first, so a parent is always kept before its children
	sort.Slice(resolved, func(i, j int) bool {
		if len(resolved[i]) != len(resolved[j]) {
			return len(resolved[i]) < len(resolved[j])
		}
		return resolved[i] < resolved[j]
	})

	var out []string
	for _, root := range resolved {
		if !coveredBy(root, out) {
			out = append(out, root)
		}
	}
	return out
}

func coveredBy(path string, parents []string) bool {
	for _, p := range parents {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
