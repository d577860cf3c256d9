package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FindLargeFiles returns every file under root of at least minSize bytes,
// largest first. Directories matching the large-file exclusion fragments
// are not descended into, and no content is read.
func (s *Scanner) FindLargeFiles(ctx context.Context, root string, minSize int64, progress CountFunc) (*ScanResult, error) {
	if minSize < 0 {
		return nil, configError("find large files", fmt.Errorf("minimum size must be >= 0, got %d", minSize))
	}
	root, err := resolveRoot("find large files", root)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &ScanResult{ScanID: uuid.NewString(), Root: root}
	log := s.logger.With(
		zap.String("scan_id", result.ScanID),
		zap.String("op", "large_files"),
		zap.String("root", root),
	)

	walker := NewWalker(s.classifier, WalkOptions{
		MinSize:      minSize,
		ExcludeDirs:  s.config.LargeFiles.ExcludeDirs,
		ExcludeRoots: s.config.LargeFiles.ExcludeRoots,
		SkipPatterns: s.config.ExcludePatterns,
		HiddenPrefix: s.config.HiddenPrefix,
		Workers:      s.settings.workers,
	}, log)

	stats, err := walker.Walk(ctx, root, func(batch []*FileRecord) {
		result.add(batch...)
		progress.report(result.TotalCount)
	})
	if err != nil {
		return nil, inputError("find large files", root, err)
	}

	result.Skipped = stats.Skipped + stats.UnitErrors
	result.Cancelled = stats.Cancelled
	result.sortBySize()
	result.Duration = time.Since(start)

	log.Info("Large file search complete",
		zap.Int64("min_size", minSize),
		zap.Int("files", result.TotalCount),
		zap.Int64("bytes", result.TotalSize),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("elapsed", result.Duration))

	return result, nil
}
