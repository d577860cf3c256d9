package cleaner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fenilsonani/reclaim/internal/config"
	"github.com/fenilsonani/reclaim/internal/progress"
	"github.com/fenilsonani/reclaim/internal/scanner"
	"github.com/fenilsonani/reclaim/internal/security"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result represents the outcome of a batch removal
type Result struct {
	Removed    []string
	FreedBytes int64
	Errors     []*DeletionError
	DryRun     bool
	Cancelled  bool
}

// Cleaner removes scanned files with safeguards. Only records the
// classifier marked deletable are ever touched.
type Cleaner struct {
	validator *security.PathValidator
	dryRun    bool
	workers   int
	logger    *zap.Logger
	tracker   *progress.Tracker
	manifest  *DeletionManifest
}

// New creates a new Cleaner
func New(cfg *config.Config, workers int, logger *zap.Logger) *Cleaner {
	if cfg == nil {
		cfg = config.GetDefault()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &Cleaner{
		validator: security.NewPathValidator(cfg.ProtectedPaths...),
		dryRun:    cfg.DryRun,
		workers:   workers,
		logger:    logger,
		manifest:  &DeletionManifest{Files: []DeletedFileInfo{}, Timestamp: time.Now(), DryRun: cfg.DryRun},
	}
}

// SetTracker sets the tracker that receives removal progress
func (c *Cleaner) SetTracker(t *progress.Tracker) {
	c.tracker = t
}

type outcome struct {
	rec *scanner.FileRecord
	err *DeletionError
}

// Remove deletes records concurrently. Failures are collected per file and
// never stop the batch. Once ctx is done no new removals start.
func (c *Cleaner) Remove(ctx context.Context, records []*scanner.FileRecord) (*Result, error) {
	result := &Result{DryRun: c.dryRun}
	start := time.Now()
	total := len(records)

	c.report(progress.PhaseRemoving, result, total, start)

	outcomes := make(chan outcome, c.workers*2)
	var g errgroup.Group
	g.SetLimit(c.workers)

	go func() {
		for _, rec := range records {
			if ctx.Err() != nil {
				break
			}
			rec := rec
			g.Go(func() error {
				outcomes <- outcome{rec: rec, err: c.removeWithRetry(rec)}
				return nil
			})
		}
		_ = g.Wait()
		close(outcomes)
	}()

	for out := range outcomes {
		if out.err != nil {
			result.Errors = append(result.Errors, out.err)
			c.logger.Debug("Removal failed",
				zap.String("path", out.rec.Path),
				zap.String("reason", out.err.Reason.String()),
				zap.Error(out.err.Original))
		} else {
			result.Removed = append(result.Removed, out.rec.Path)
			result.FreedBytes += out.rec.Size
			c.manifest.Add(out.rec.Path, out.rec.Size, string(out.rec.Category))
		}
		c.report(progress.PhaseRemoving, result, total, start)
	}

	result.Cancelled = ctx.Err() != nil
	c.report(progress.PhaseComplete, result, total, start)

	c.logger.Info("Removal complete",
		zap.Int("removed", len(result.Removed)),
		zap.Int("errors", len(result.Errors)),
		zap.Int64("freed_bytes", result.FreedBytes),
		zap.Bool("dry_run", result.DryRun),
		zap.Bool("cancelled", result.Cancelled))

	return result, nil
}

// removeWithRetry attempts a removal with retries for transient errors
func (c *Cleaner) removeWithRetry(rec *scanner.FileRecord) *DeletionError {
	retryDelays := []time.Duration{
		100 * time.Millisecond,
		500 * time.Millisecond,
	}

	var lastErr *DeletionError
	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		lastErr = c.remove(rec)
		if lastErr == nil || !lastErr.Retryable {
			return lastErr
		}
		if attempt < len(retryDelays) {
			time.Sleep(retryDelays[attempt])
		}
	}
	return lastErr
}

func (c *Cleaner) remove(rec *scanner.FileRecord) *DeletionError {
	if !rec.Deletable || rec.Kind == scanner.KindProtected {
		return &DeletionError{Path: rec.Path, Reason: ErrorRefused, Original: fmt.Errorf("%s entry is not deletable", rec.Kind)}
	}

	if err := c.validator.ValidatePathForDeletion(rec.Path); err != nil {
		return &DeletionError{Path: rec.Path, Reason: ErrorInvalidPath, Original: err}
	}

	// Lstat so a file swapped for a link is caught before removal
	info, err := os.Lstat(rec.Path)
	if err != nil {
		return CategorizeError(rec.Path, err)
	}
	if err := unchanged(rec, info); err != nil {
		return &DeletionError{Path: rec.Path, Reason: ErrorChanged, Original: err}
	}

	if c.dryRun {
		return nil
	}

	if err := os.Remove(rec.Path); err != nil {
		return CategorizeError(rec.Path, err)
	}
	return nil
}

// unchanged verifies the entry still matches what the scan recorded
func unchanged(rec *scanner.FileRecord, info os.FileInfo) error {
	isLink := info.Mode()&os.ModeSymlink != 0
	switch {
	case rec.Kind == scanner.KindSymlink && !isLink:
		return fmt.Errorf("no longer a symlink")
	case rec.Kind != scanner.KindSymlink && isLink:
		return fmt.Errorf("replaced by a symlink")
	case !isLink && !info.Mode().IsRegular():
		return fmt.Errorf("not a regular file")
	case info.Size() != rec.Size:
		return fmt.Errorf("size changed from %d to %d bytes", rec.Size, info.Size())
	case !rec.ModTime.IsZero() && !info.ModTime().Equal(rec.ModTime):
		return fmt.Errorf("modified at %s", info.ModTime().Format(time.RFC3339))
	}
	return nil
}

func (c *Cleaner) report(phase progress.Phase, result *Result, total int, start time.Time) {
	if c.tracker == nil {
		return
	}
	c.tracker.UpdateRemoveProgress(&progress.RemoveProgress{
		Phase:      phase,
		Removed:    len(result.Removed),
		Total:      total,
		FreedBytes: result.FreedBytes,
		Errors:     len(result.Errors),
		StartTime:  start,
	})
}

// SaveManifest saves the deletion manifest to a file
func (c *Cleaner) SaveManifest(path string) error {
	return c.manifest.Save(path)
}

// DuplicateCopies returns every group member except the first, which is
// the lexicographically smallest path and is always kept
func DuplicateCopies(groups []scanner.DuplicateGroup) []*scanner.FileRecord {
	var out []*scanner.FileRecord
	for _, g := range groups {
		if len(g.Files) < 2 {
			continue
		}
		out = append(out, g.Files[1:]...)
	}
	return out
}

// DeletionManifest keeps track of removed files
type DeletionManifest struct {
	Files     []DeletedFileInfo
	Timestamp time.Time
	TotalSize int64
	// DryRun marks a manifest listing what would have been removed
	DryRun bool
}

// DeletedFileInfo represents information about a removed file
type DeletedFileInfo struct {
	Path      string
	Size      int64
	Category  string
	DeletedAt time.Time
}

// NewDeletionManifest creates a new DeletionManifest
func NewDeletionManifest() *DeletionManifest {
	return &DeletionManifest{
		Files:     []DeletedFileInfo{},
		Timestamp: time.Now(),
	}
}

// Add adds a file to the manifest
func (m *DeletionManifest) Add(path string, size int64, category string) {
	m.Files = append(m.Files, DeletedFileInfo{
		Path:      path,
		Size:      size,
		Category:  category,
		DeletedAt: time.Now(),
	})
	m.TotalSize += size
}

// Save saves the manifest to a file
func (m *DeletionManifest) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if m.DryRun {
		fmt.Fprintf(file, "Deletion Manifest (dry run, nothing was removed)\n")
	} else {
		fmt.Fprintf(file, "Deletion Manifest\n")
	}
	fmt.Fprintf(file, "Created: %s\n", m.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(file, "Total Size: %d bytes\n", m.TotalSize)
	fmt.Fprintf(file, "Total Files: %d\n\n", len(m.Files))

	for _, f := range m.Files {
		fmt.Fprintf(file, "%s | %d bytes | %s | %s\n",
			f.Path, f.Size, f.Category, f.DeletedAt.Format(time.RFC3339))
	}

	return file.Close()
}
