package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScanOrphans lists stale log files left in application data directories:
// files whose path below a root contains the configured marker (case
// insensitive) and that were last modified before the configured age.
// Roots are handled as in ScanCache.
func (s *Scanner) ScanOrphans(ctx context.Context, roots []string, progress CountFunc) (*ScanResult, error) {
	for _, root := range roots {
		if !filepath.IsAbs(root) {
			return nil, inputError("scan orphans", root, fmt.Errorf("application data root must be absolute"))
		}
	}

	start := time.Now()
	result := &ScanResult{ScanID: uuid.NewString()}
	log := s.logger.With(zap.String("scan_id", result.ScanID), zap.String("op", "orphans"))

	existing := s.existingRoots(roots, log)
	if len(existing) == 0 {
		log.Info("No application data roots to scan", zap.Int("requested", len(roots)))
		return result, nil
	}

	opts := WalkOptions{
		SkipPatterns: s.config.ExcludePatterns,
		Workers:      s.settings.cacheWorkers,
	}
	if s.settings.orphanMinAge > 0 {
		opts.ModifiedBefore = start.Add(-s.settings.orphanMinAge)
	}
	walker := NewWalker(s.classifier, opts, log)
	marker := strings.ToLower(s.config.Orphans.Marker)

	stats := walker.WalkRoots(ctx, existing, func(batch []*FileRecord) {
		for _, rec := range batch {
			if markedBelow(existing, rec.Path, marker) {
				result.add(rec)
			}
		}
		progress.report(result.TotalCount)
	})

	result.Skipped = stats.Skipped + stats.UnitErrors
	result.Cancelled = stats.Cancelled
	result.sortBySize()
	result.Duration = time.Since(start)

	log.Info("Orphan scan complete",
		zap.Int("roots", len(existing)),
		zap.Int("files", result.TotalCount),
		zap.Int64("bytes", result.TotalSize),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("elapsed", result.Duration))

	return result, nil
}

// markedBelow reports whether the part of path under its root contains marker
func markedBelow(roots []string, path, marker string) bool {
	if marker == "" {
		return true
	}
	for _, root := range roots {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return strings.Contains(strings.ToLower(rel), marker)
		}
	}
	return false
}
