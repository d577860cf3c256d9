package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fenilsonani/reclaim/internal/config"
	"github.com/fenilsonani/reclaim/internal/platform"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// hashProgressInterval is how many hashed files pass between progress calls
const hashProgressInterval = 64

// Scanner finds duplicate files, cache files and large files.
// A Scanner holds no per-scan state and may run several scans at once.
type Scanner struct {
	config     *config.Config
	caps       platform.Capability
	classifier *Classifier
	logger     *zap.Logger
	settings   settings
}

// settings are the parsed, derived values a scan needs
type settings struct {
	workers            int
	cacheWorkers       int
	chunkSize          int
	smallFileThreshold int64
	duplicateMinSize   int64
	largeMinSize       int64
	cacheMinAge        time.Duration
	orphanMinAge       time.Duration
}

// New validates cfg and creates a Scanner. caps supplies the hardware
// figures that size the worker budget and hash chunks; the scanner never
// detects them itself.
func New(cfg *config.Config, caps platform.Capability, logger *zap.Logger) (*Scanner, error) {
	if cfg == nil {
		cfg = config.GetDefault()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError("new scanner", err)
	}

	s := &Scanner{
		config:     cfg,
		caps:       caps,
		classifier: NewClassifier(cfg.ProtectedPaths, logger),
		logger:     logger,
	}

	// Validate has already parsed every size
	chunk, _ := cfg.ChunkSizeBytes()
	small, _ := cfg.SmallFileThresholdBytes()
	dupMin, _ := cfg.DuplicatesMinSizeBytes()
	largeMin, _ := cfg.LargeFilesMinSizeBytes()

	if chunk == 0 {
		chunk = int64(ChunkSizeFor(caps.CPUs))
	}
	if dupMin < 1 {
		dupMin = 1
	}

	s.settings = settings{
		workers:            WorkerBudget(cfg.Workers, caps.CPUs, cfg.WorkerCeiling),
		cacheWorkers:       WorkerBudget(cfg.Workers, caps.CPUs, cfg.CacheWorkerCeiling),
		chunkSize:          int(chunk),
		smallFileThreshold: small,
		duplicateMinSize:   dupMin,
		largeMinSize:       largeMin,
		cacheMinAge:        time.Duration(cfg.Cache.MinAgeHours) * time.Hour,
		orphanMinAge:       time.Duration(cfg.Orphans.MinAgeDays) * 24 * time.Hour,
	}

	return s, nil
}

// WorkerBudget returns override if set, otherwise cpus, clamped to [1, ceiling]
func WorkerBudget(override, cpus, ceiling int) int {
	n := override
	if n <= 0 {
		n = cpus
	}
	if n > ceiling {
		n = ceiling
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Workers returns the worker budget for duplicate and large-file scans
func (s *Scanner) Workers() int {
	return s.settings.workers
}

// ChunkSize returns the streaming hash chunk size
func (s *Scanner) ChunkSize() int {
	return s.settings.chunkSize
}

// LargeFileThreshold returns the configured default for FindLargeFiles
func (s *Scanner) LargeFileThreshold() int64 {
	return s.settings.largeMinSize
}

// ScanDuplicates finds groups of identical files under root. Files are
// bucketed by size first and only buckets with two or more members are
// hashed. If ctx is cancelled the groups confirmed so far are returned with
// Cancelled set and a nil error.
func (s *Scanner) ScanDuplicates(ctx context.Context, root string, progress ProgressFunc) (*DuplicateResult, error) {
	root, err := resolveRoot("scan duplicates", root)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &DuplicateResult{ScanID: uuid.NewString(), Root: root}
	log := s.logger.With(
		zap.String("scan_id", result.ScanID),
		zap.String("op", "duplicates"),
		zap.String("root", root),
	)

	hasher, err := NewHasher(HashOptions{
		Algorithm:          s.config.Hashing.Algorithm,
		ChunkSize:          s.settings.chunkSize,
		SmallFileThreshold: s.settings.smallFileThreshold,
		Workers:            s.settings.workers,
		CacheEntries:       s.config.Hashing.CacheEntries,
	}, log)
	if err != nil {
		return nil, configError("scan duplicates", err)
	}

	walker := NewWalker(s.classifier, WalkOptions{
		MinSize:      s.settings.duplicateMinSize,
		ExcludeDirs:  s.config.Duplicates.ExcludeDirs,
		SkipPatterns: s.config.ExcludePatterns,
		HiddenPrefix: s.config.HiddenPrefix,
		Workers:      s.settings.workers,
	}, log)

	reducer := newSizeReducer()
	walkStats, err := walker.Walk(ctx, root, func(batch []*FileRecord) {
		for _, rec := range batch {
			reducer.add(rec)
		}
		result.FilesScanned += len(batch)
		progress.report(result.FilesScanned, 0)
	})
	if err != nil {
		return nil, inputError("scan duplicates", root, err)
	}
	result.Skipped = walkStats.Skipped + walkStats.UnitErrors

	if walkStats.Cancelled {
		result.Cancelled = true
		result.Duration = time.Since(start)
		log.Info("Duplicate scan cancelled during walk", zap.Int("files", result.FilesScanned))
		return result, nil
	}

	buckets := reducer.candidates()
	candidates := buckets.Records()
	result.Candidates = len(candidates)
	log.Info("Walk complete",
		zap.Int("files", result.FilesScanned),
		zap.Int("candidates", result.Candidates),
		zap.Int("buckets", len(buckets)),
		zap.Int("units", walkStats.Units),
		zap.Int("unit_errors", walkStats.UnitErrors))

	total := len(candidates)
	if total > 0 {
		progress.report(0, total)
	}
	done := 0
	hashStats := hasher.HashBatch(ctx, candidates, func(HashResult) {
		done++
		if done%hashProgressInterval == 0 && done < total {
			progress.report(done, total)
		}
	})
	if total > 0 {
		progress.report(done, total)
	}

	result.Hashed = hashStats.Hashed
	result.HashFailures = hashStats.Failed
	result.CacheHits = hashStats.Reused
	result.Skipped += hashStats.Failed
	if hashStats.Cancelled > 0 || ctx.Err() != nil {
		result.Cancelled = true
	}

	result.Groups = groupBuckets(buckets)
	result.Duration = time.Since(start)

	log.Info("Duplicate scan complete",
		zap.Int("groups", len(result.Groups)),
		zap.Int("hashed", result.Hashed),
		zap.Int("hash_failures", result.HashFailures),
		zap.Int("cache_hits", result.CacheHits),
		zap.Int64("wasted_bytes", result.TotalWasted()),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("elapsed", result.Duration))

	return result, nil
}

// resolveRoot makes root absolute and checks that it is an existing directory
func resolveRoot(op, root string) (string, error) {
	if root == "" {
		return "", inputError(op, root, ErrRootNotFound)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", inputError(op, root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", inputError(op, abs, ErrRootNotFound)
		}
		return "", inputError(op, abs, err)
	}
	if !info.IsDir() {
		return "", inputError(op, abs, ErrNotDirectory)
	}
	return abs, nil
}
