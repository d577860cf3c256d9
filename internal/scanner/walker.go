package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fenilsonani/reclaim/internal/security"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WalkOptions configures a traversal
type WalkOptions struct {
	// MinSize drops entries smaller than this many bytes
	MinSize int64
	// ExcludeDirs are path fragments matched against the path below the walk
	// root; matching directories are not descended into
	ExcludeDirs []string
	// ExcludeRoots are absolute directories that are not descended into,
	// unless the walk root itself lies inside one
	ExcludeRoots []string
	// SkipPatterns are file-name globs that are never emitted
	SkipPatterns []string
	// HiddenPrefix marks top-level directories that are not split into their own unit
	HiddenPrefix string
	// Workers bounds the number of units walked at once
	Workers int
	// ModifiedBefore, when set, drops entries modified after it
	ModifiedBefore time.Time
}

// WalkStats summarizes a finished traversal
type WalkStats struct {
	Units      int
	UnitErrors int
	Skipped    int
	Emitted    int
	Cancelled  bool
}

// Walker enumerates files under a root using concurrent traversal units
type Walker struct {
	classifier *Classifier
	opts       WalkOptions
	exclusions *security.ExclusionSet
	logger     *zap.Logger
}

// walkUnit is one independently scheduled subtree walk. A unit with
// entries set visits only those children of dir (the root unit). base is
// the walk root the unit belongs to.
type walkUnit struct {
	base    string
	dir     string
	entries []fs.DirEntry
}

type unitResult struct {
	dir       string
	records   []*FileRecord
	skipped   int
	err       error
	cancelled bool
}

// NewWalker creates a Walker
func NewWalker(classifier *Classifier, opts WalkOptions, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Walker{
		classifier: classifier,
		opts:       opts,
		exclusions: security.NewExclusionSet(opts.ExcludeDirs).WithRoots(opts.ExcludeRoots...),
		logger:     logger,
	}
}

// Walk splits root into the root unit plus one unit per visible top-level
// directory and walks them concurrently. onUnit is called on the calling
// goroutine with each finished unit's records; it is the only place records
// from different units meet. A root that cannot be listed is returned as an
// error before any unit starts.
func (w *Walker) Walk(ctx context.Context, root string, onUnit func([]*FileRecord)) (WalkStats, error) {
	units, err := w.partition(root)
	if err != nil {
		return WalkStats{}, err
	}
	return w.run(ctx, units, onUnit), nil
}

// WalkRoots walks every root as a single unit. Missing roots count as unit errors.
func (w *Walker) WalkRoots(ctx context.Context, roots []string, onUnit func([]*FileRecord)) WalkStats {
	units := make([]walkUnit, 0, len(roots))
	for _, root := range roots {
		units = append(units, walkUnit{base: root, dir: root})
	}
	return w.run(ctx, units, onUnit)
}

func (w *Walker) partition(root string) ([]walkUnit, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	rootUnit := walkUnit{base: root, dir: root, entries: []fs.DirEntry{}}
	var units []walkUnit

	for _, entry := range entries {
		if !entry.IsDir() {
			rootUnit.entries = append(rootUnit.entries, entry)
			continue
		}

		path := filepath.Join(root, entry.Name())
		if w.excluded(root, path) {
			continue
		}
		if w.isHidden(entry.Name()) {
			// Hidden trees are still scanned, inside the root unit
			rootUnit.entries = append(rootUnit.entries, entry)
			continue
		}
		units = append(units, walkUnit{base: root, dir: path})
	}

	return append([]walkUnit{rootUnit}, units...), nil
}

// excluded matches fragments against the part of path below base, so a walk
// rooted inside node_modules still descends into its subdirectories
func (w *Walker) excluded(base, path string) bool {
	if w.exclusions.MatchesRoot(path) && !w.exclusions.MatchesRoot(base) {
		return true
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return false
	}
	return w.exclusions.Matches(string(filepath.Separator) + rel)
}

func (w *Walker) isHidden(name string) bool {
	return w.opts.HiddenPrefix != "" && strings.HasPrefix(name, w.opts.HiddenPrefix)
}

func (w *Walker) run(ctx context.Context, units []walkUnit, onUnit func([]*FileRecord)) WalkStats {
	stats := WalkStats{Units: len(units)}

	// Buffered so no unit ever blocks on the aggregator
	results := make(chan unitResult, len(units))

	var g errgroup.Group
	g.SetLimit(w.opts.Workers)

	go func() {
		for _, u := range units {
			if ctx.Err() != nil {
				break
			}
			u := u
			g.Go(func() error {
				results <- w.walkUnit(ctx, u)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	for res := range results {
		stats.Skipped += res.skipped
		stats.Emitted += len(res.records)
		if res.cancelled {
			stats.Cancelled = true
		}
		if res.err != nil {
			stats.UnitErrors++
			w.logger.Debug("Traversal unit failed", zap.String("unit", res.dir), zap.Error(res.err))
		}
		if onUnit != nil {
			onUnit(res.records)
		}
	}

	if ctx.Err() != nil {
		stats.Cancelled = true
	}
	return stats
}

func (w *Walker) walkUnit(ctx context.Context, u walkUnit) unitResult {
	res := unitResult{dir: u.dir}

	if u.entries == nil {
		res.err = w.walkTree(ctx, u.base, u.dir, &res)
		return res
	}

	for _, entry := range u.entries {
		if ctx.Err() != nil {
			res.cancelled = true
			break
		}
		path := filepath.Join(u.dir, entry.Name())
		if entry.IsDir() {
			if err := w.walkTree(ctx, u.base, path, &res); err != nil {
				res.skipped++
				w.logger.Debug("Cannot read directory", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		w.visit(path, entry, &res)
	}
	return res
}

// walkTree visits dir recursively. It returns an error only when dir itself
// cannot be read; failures below it are counted and skipped.
func (w *Walker) walkTree(ctx context.Context, base, dir string, res *unitResult) error {
	var rootErr error

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				rootErr = err
				return fs.SkipAll
			}
			res.skipped++
			w.logger.Debug("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil
		}

		if d.IsDir() {
			if ctx.Err() != nil {
				res.cancelled = true
				return fs.SkipAll
			}
			if path != dir && w.excluded(base, path) {
				return fs.SkipDir
			}
			return nil
		}

		w.visit(path, d, res)
		return nil
	})

	return rootErr
}

// visit emits a record for a regular file or symlink; links are never followed
func (w *Walker) visit(path string, d fs.DirEntry, res *unitResult) {
	t := d.Type()
	if !t.IsRegular() && t&fs.ModeSymlink == 0 {
		return
	}
	if w.skipName(d.Name()) {
		return
	}

	info, err := d.Info()
	if err != nil {
		res.skipped++
		w.logger.Debug("Entry vanished", zap.String("path", path), zap.Error(err))
		return
	}
	if info.Size() < w.opts.MinSize {
		return
	}
	if !w.opts.ModifiedBefore.IsZero() && info.ModTime().After(w.opts.ModifiedBefore) {
		return
	}

	res.records = append(res.records, w.classifier.classifyInfo(path, info))
}

func (w *Walker) skipName(name string) bool {
	for _, pattern := range w.opts.SkipPatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
