package scanner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/fenilsonani/reclaim/internal/config"
	"github.com/fenilsonani/reclaim/internal/platform"
	"github.com/fenilsonani/reclaim/internal/testutil"
)

func newTestScanner(t *testing.T, mutate func(*config.Config)) *Scanner {
	t.Helper()
	cfg := config.GetDefault()
	cfg.Workers = 4
	if mutate != nil {
		mutate(cfg)
	}
	s, err := New(cfg, platform.Capability{CPUs: 4}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

// =============================================================================
// ScanDuplicates Tests
// =============================================================================

func TestScanDuplicatesBasic(t *testing.T) {
	fx := testutil.NewFixture(t)
	a := fx.CreateFile("a.txt", []byte("hello"))
	b := fx.CreateFile("b.txt", []byte("hello"))
	fx.CreateFile("c.txt", []byte("world"))

	result, err := newTestScanner(t, nil).ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatalf("ScanDuplicates failed: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	g := result.Groups[0]
	if len(g.Files) != 2 || g.Files[0].Path != a || g.Files[1].Path != b {
		t.Errorf("group paths = %v, want [%s %s]", g.Paths(), a, b)
	}
	if g.Digest != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("group digest = %s", g.Digest)
	}
	if result.FilesScanned != 3 {
		t.Errorf("FilesScanned = %d, want 3", result.FilesScanned)
	}
	if result.TotalWasted() != 5 {
		t.Errorf("TotalWasted() = %d, want 5", result.TotalWasted())
	}
	if result.ScanID == "" {
		t.Error("expected a scan ID")
	}
}

func TestScanDuplicatesPrunesUniqueSizes(t *testing.T) {
	fx := testutil.NewFixture(t)
	for i := 0; i < 100; i++ {
		fx.CreateSizedFile(fmt.Sprintf("same/dup%03d.bin", i), 50, 'd')
	}
	for size := 100; size < 1000; size++ {
		fx.CreateSizedFile(fmt.Sprintf("unique/u%d/%04d.bin", size%7, size), size, byte(size))
	}

	result, err := newTestScanner(t, nil).ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatalf("ScanDuplicates failed: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	if n := len(result.Groups[0].Files); n != 100 {
		t.Errorf("group has %d files, want 100", n)
	}
	if result.Candidates != 100 {
		t.Errorf("Candidates = %d, want 100", result.Candidates)
	}
	if result.Hashed != 100 {
		t.Errorf("Hashed = %d, want 100; unique sizes must not be read", result.Hashed)
	}
}

func TestScanDuplicatesIgnoresEmptyFiles(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateFile("empty1", nil)
	fx.CreateFile("empty2", nil)
	fx.CreateFile("sub/empty3", nil)

	result, err := newTestScanner(t, nil).ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Groups) != 0 {
		t.Errorf("got %d groups, empty files are never duplicates", len(result.Groups))
	}
	if result.Hashed != 0 {
		t.Errorf("Hashed = %d, want 0", result.Hashed)
	}
}

func TestScanDuplicatesSameSizeDifferentContent(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateFile("x/one", []byte("aaaa"))
	fx.CreateFile("y/two", []byte("bbbb"))

	result, err := newTestScanner(t, nil).ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Groups) != 0 {
		t.Errorf("got %d groups, want 0", len(result.Groups))
	}
	if result.Hashed != 2 {
		t.Errorf("Hashed = %d, want 2", result.Hashed)
	}
}

func TestScanDuplicatesHiddenDirectoriesCountedOnce(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateFile(".hidden/a", []byte("same"))
	fx.CreateFile(".hidden/deep/b", []byte("same"))
	fx.CreateFile("visible/c", []byte("same"))

	result, err := newTestScanner(t, nil).ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesScanned != 3 {
		t.Errorf("FilesScanned = %d, want 3", result.FilesScanned)
	}
	if len(result.Groups) != 1 || len(result.Groups[0].Files) != 3 {
		t.Fatalf("want one group of 3, got %+v", result.Groups)
	}
}

func TestScanDuplicatesHardLinks(t *testing.T) {
	testutil.SkipOnWindows(t)

	fx := testutil.NewFixture(t)
	orig := fx.CreateRandomFile("orig.bin", 4096)
	fx.CreateHardLink(orig, "linked.bin")

	result, err := newTestScanner(t, nil).ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	if result.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", result.CacheHits)
	}
}

func TestScanDuplicatesSymlinksNotGrouped(t *testing.T) {
	testutil.SkipOnWindows(t)

	fx := testutil.NewFixture(t)
	fx.CreateFile("target.txt", []byte("content"))
	fx.CreateSymlink("target.txt", "l1")
	fx.CreateSymlink("target.txt", "l2")

	result, err := newTestScanner(t, nil).ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Groups) != 0 {
		t.Errorf("symlinks must not form groups, got %d", len(result.Groups))
	}
}

func TestScanDuplicatesProtectedFilesNotDeletable(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateFile("reserved/a", []byte("dup"))
	fx.CreateFile("reserved/b", []byte("dup"))

	s := newTestScanner(t, func(c *config.Config) {
		c.ProtectedPaths = []string{fx.Path("reserved")}
	})
	result, err := s.ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	for _, f := range result.Groups[0].Files {
		if f.Deletable || f.Kind != KindProtected {
			t.Errorf("%s: Deletable=%v Kind=%s, want protected", f.Path, f.Deletable, f.Kind)
		}
	}
}

func TestScanDuplicatesUnreadableCandidate(t *testing.T) {
	testutil.SkipOnWindows(t)
	testutil.SkipIfRoot(t)

	fx := testutil.NewFixture(t)
	a := fx.CreateFile("a.txt", []byte("duplicate"))
	b := fx.CreateFile("b.txt", []byte("duplicate"))
	fx.CreateNoPermissionFile("c.txt", []byte("duplicate"))

	result, err := newTestScanner(t, nil).ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.HashFailures != 1 || result.Candidates != 3 {
		t.Errorf("HashFailures = %d, Candidates = %d, want 1 and 3", result.HashFailures, result.Candidates)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	if got := result.Groups[0].Paths(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("group = %v, want [%s %s]", got, a, b)
	}
}

func TestScanDuplicatesProgress(t *testing.T) {
	fx := testutil.NewFixture(t)
	for i := 0; i < 5; i++ {
		fx.CreateFile(fmt.Sprintf("d%d/f", i), []byte("same"))
	}

	type call struct{ current, total int }
	var calls []call
	result, err := newTestScanner(t, nil).ScanDuplicates(context.Background(), fx.RootDir, func(current, total int) {
		calls = append(calls, call{current, total})
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(calls) == 0 {
		t.Fatal("progress was never reported")
	}
	if calls[0].total != 0 {
		t.Errorf("first call = %+v, want the walk phase (total 0)", calls[0])
	}
	last := calls[len(calls)-1]
	if last.current != result.Candidates || last.total != result.Candidates {
		t.Errorf("last call = %+v, want (%d, %d)", last, result.Candidates, result.Candidates)
	}

	walking := true
	for _, c := range calls {
		if c.total > 0 {
			walking = false
		} else if !walking {
			t.Errorf("walk progress %+v reported after hashing started", c)
		}
	}
}

func TestScanDuplicatesInputErrors(t *testing.T) {
	fx := testutil.NewFixture(t)
	file := fx.CreateFile("plain.txt", []byte("x"))

	tests := []struct {
		name string
		root string
		want error
	}{
		{"missing", fx.Path("nope"), ErrRootNotFound},
		{"empty", "", ErrRootNotFound},
		{"file", file, ErrNotDirectory},
	}

	s := newTestScanner(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.ScanDuplicates(context.Background(), tt.root, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if ClassOf(err) != ClassInput {
				t.Errorf("class = %s, want input", ClassOf(err))
			}
			if result != nil {
				t.Error("expected nil result on input error")
			}
		})
	}
}

func TestScanDuplicatesCancelledUpFront(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateFile("a/x", []byte("same"))
	fx.CreateFile("b/y", []byte("same"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestScanner(t, nil).ScanDuplicates(ctx, fx.RootDir, nil)
	if err != nil {
		t.Fatalf("cancellation is not an error, got %v", err)
	}
	if !result.Cancelled {
		t.Error("expected Cancelled")
	}
	if result.Hashed != 0 {
		t.Errorf("Hashed = %d, want 0", result.Hashed)
	}
}

func TestScanDuplicatesCancelledWhileHashing(t *testing.T) {
	fx := testutil.NewFixture(t)
	for i := 0; i < 20; i++ {
		fx.CreateFile(fmt.Sprintf("f%02d", i), []byte("same"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := newTestScanner(t, nil).ScanDuplicates(ctx, fx.RootDir, func(current, total int) {
		if total > 0 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("cancellation is not an error, got %v", err)
	}
	if !result.Cancelled {
		t.Error("expected Cancelled")
	}
	if result.Candidates != 20 {
		t.Errorf("Candidates = %d, want 20", result.Candidates)
	}
	if result.Hashed != 0 {
		t.Errorf("Hashed = %d, want 0 once cancelled before the first read", result.Hashed)
	}
}

func TestScanDuplicatesExcludeDirs(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateFile("keep/a", []byte("same"))
	fx.CreateFile("keep/b", []byte("same"))
	fx.CreateFile("keep/vendor/c", []byte("same"))

	s := newTestScanner(t, func(c *config.Config) {
		c.Duplicates.ExcludeDirs = []string{"/vendor"}
	})
	result, err := s.ScanDuplicates(context.Background(), fx.RootDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", result.FilesScanned)
	}
}

// =============================================================================
// FindLargeFiles Tests
// =============================================================================

func TestFindLargeFiles(t *testing.T) {
	fx := testutil.NewFixture(t)
	big := fx.CreateSizedFile("media/big.bin", 2*1024*1024, 'x')
	fx.CreateSizedFile("small.txt", 10, 'y')

	result, err := newTestScanner(t, nil).FindLargeFiles(context.Background(), fx.RootDir, 1024*1024, nil)
	if err != nil {
		t.Fatalf("FindLargeFiles failed: %v", err)
	}

	if result.TotalCount != 1 || len(result.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(result.Files))
	}
	if result.Files[0].Path != big {
		t.Errorf("Path = %s, want %s", result.Files[0].Path, big)
	}
	if result.TotalSize != 2*1024*1024 {
		t.Errorf("TotalSize = %d", result.TotalSize)
	}
}

func TestFindLargeFilesSortedBySize(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateSizedFile("a/one", 300, 'a')
	fx.CreateSizedFile("b/two", 900, 'b')
	fx.CreateSizedFile("three", 600, 'c')
	fx.CreateSizedFile("b/four", 600, 'd')

	result, err := newTestScanner(t, nil).FindLargeFiles(context.Background(), fx.RootDir, 100, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"b/two", "b/four", "three", "a/one"}
	if len(result.Files) != len(want) {
		t.Fatalf("got %d files, want %d", len(result.Files), len(want))
	}
	for i, f := range result.Files {
		if got := filepath.ToSlash(fx.RelPath(f.Path)); got != want[i] {
			t.Errorf("Files[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func TestFindLargeFilesDefaultExclusions(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateSizedFile("proj/.git/objects/pack", 2048, 'g')
	fx.CreateSizedFile("proj/node_modules/dep/blob", 2048, 'n')
	fx.CreateSizedFile("proj/src/__pycache__/mod.pyc", 2048, 'p')
	keep := fx.CreateSizedFile("proj/data.bin", 2048, 'k')

	result, err := newTestScanner(t, nil).FindLargeFiles(context.Background(), fx.RootDir, 1024, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 1 || result.Files[0].Path != keep {
		var got []string
		for _, f := range result.Files {
			got = append(got, f.Path)
		}
		t.Errorf("files = %v, want only %s", got, keep)
	}
}

func TestFindLargeFilesPlatformExclusionsKeepUserDirs(t *testing.T) {
	fx := testutil.NewFixture(t)
	var want []string
	for _, dir := range []string{"dev", "devel", "systems", "snapshots", "proc-notes", ".github", "plain"} {
		want = append(want, fx.CreateSizedFile(dir+"/big.bin", 4096, 'x'))
	}
	fx.CreateSizedFile("repo/.git/objects/pack", 4096, 'g')

	info, err := platform.InfoFor(platform.Linux, fx.RootDir, "tester")
	if err != nil {
		t.Fatal(err)
	}
	s := newTestScanner(t, func(c *config.Config) {
		c.LargeFiles.ExcludeDirs = info.LargeFileExclusions
		c.LargeFiles.ExcludeRoots = info.LargeFileRoots
	})

	result, err := s.FindLargeFiles(context.Background(), fx.RootDir, 1024, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[string]bool, len(result.Files))
	for _, f := range result.Files {
		got[f.Path] = true
	}
	if len(result.Files) != len(want) {
		t.Errorf("found %d files, want %d", len(result.Files), len(want))
	}
	for _, path := range want {
		if !got[path] {
			t.Errorf("missing %s", fx.RelPath(path))
		}
	}
}

func TestFindLargeFilesRootInsideExcludedDir(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateSizedFile("node_modules/pkg/top.bin", 2048, 't')
	fx.CreateSizedFile("node_modules/pkg/sub/big.bin", 2048, 'b')
	fx.CreateSizedFile("node_modules/pkg/sub/node_modules/dep.bin", 2048, 'd')

	result, err := newTestScanner(t, nil).FindLargeFiles(context.Background(), fx.Path("node_modules/pkg"), 1024, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 2 {
		var got []string
		for _, f := range result.Files {
			got = append(got, fx.RelPath(f.Path))
		}
		t.Errorf("files = %v, want top.bin and sub/big.bin", got)
	}
}

func TestFindLargeFilesSymlinks(t *testing.T) {
	testutil.SkipOnWindows(t)

	fx := testutil.NewFixture(t)
	fx.CreateFile("target.txt", []byte("data"))
	valid := fx.CreateSymlink("target.txt", "good-link")
	broken := fx.CreateBrokenSymlink("bad-link")

	result, err := newTestScanner(t, nil).FindLargeFiles(context.Background(), fx.RootDir, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	byPath := make(map[string]*FileRecord)
	for _, f := range result.Files {
		byPath[f.Path] = f
	}
	if rec := byPath[valid]; rec == nil || rec.Kind != KindSymlink || !rec.Deletable {
		t.Errorf("valid link record = %+v, want a deletable symlink", rec)
	}
	if rec := byPath[broken]; rec == nil || rec.Deletable {
		t.Errorf("broken link record = %+v, want a non-deletable symlink", rec)
	}
}

func TestFindLargeFilesProgress(t *testing.T) {
	fx := testutil.NewFixture(t)
	for i := 0; i < 4; i++ {
		fx.CreateSizedFile(fmt.Sprintf("d%d/f", i), 10, 'z')
	}

	last := -1
	monotonic := true
	result, err := newTestScanner(t, nil).FindLargeFiles(context.Background(), fx.RootDir, 1, func(count int) {
		if count < last {
			monotonic = false
		}
		last = count
	})
	if err != nil {
		t.Fatal(err)
	}
	if !monotonic {
		t.Error("progress count went backwards")
	}
	if last != result.TotalCount {
		t.Errorf("last progress = %d, want %d", last, result.TotalCount)
	}
}

func TestFindLargeFilesNegativeMinSize(t *testing.T) {
	fx := testutil.NewFixture(t)

	_, err := newTestScanner(t, nil).FindLargeFiles(context.Background(), fx.RootDir, -1, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
	if ClassOf(err) != ClassConfig {
		t.Errorf("class = %s, want config", ClassOf(err))
	}
}

// =============================================================================
// ScanCache Tests
// =============================================================================

func TestScanCacheAgeFilter(t *testing.T) {
	fx := testutil.NewFixture(t)
	old := fx.CreateFileWithAge("cache/old.bin", []byte("stale data"), 48*time.Hour)
	fx.CreateFile("cache/new.bin", []byte("fresh data"))

	result, err := newTestScanner(t, nil).ScanCache(context.Background(), []string{fx.Path("cache")}, nil)
	if err != nil {
		t.Fatalf("ScanCache failed: %v", err)
	}
	if len(result.Files) != 1 || result.Files[0].Path != old {
		t.Errorf("files = %d, want only the stale file", len(result.Files))
	}
}

func TestScanCacheNoAgeFilter(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateFile("cache/a", []byte("a"))
	fx.CreateFile("cache/sub/b", []byte("bb"))

	s := newTestScanner(t, func(c *config.Config) { c.Cache.MinAgeHours = 0 })
	result, err := s.ScanCache(context.Background(), []string{fx.Path("cache")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 2 || result.TotalSize != 3 {
		t.Errorf("TotalCount=%d TotalSize=%d, want 2 and 3", result.TotalCount, result.TotalSize)
	}
}

func TestScanCacheNestedAndMissingRoots(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.CreateFile("cache/a", []byte("a"))
	fx.CreateFile("cache/inner/b", []byte("b"))
	fx.CreateFile("cache2/c", []byte("c"))

	s := newTestScanner(t, func(c *config.Config) { c.Cache.MinAgeHours = 0 })
	roots := []string{
		fx.Path("cache/inner"),
		fx.Path("cache"),
		fx.Path("cache2"),
		fx.Path("does-not-exist"),
	}
	result, err := s.ScanCache(context.Background(), roots, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3 with nested roots folded", result.TotalCount)
	}
}

func TestScanCacheRelativeRoot(t *testing.T) {
	_, err := newTestScanner(t, nil).ScanCache(context.Background(), []string{"relative/cache"}, nil)
	if err == nil {
		t.Fatal("expected error for relative root")
	}
	if ClassOf(err) != ClassInput {
		t.Errorf("class = %s, want input", ClassOf(err))
	}
}

func TestScanCacheNoRoots(t *testing.T) {
	result, err := newTestScanner(t, nil).ScanCache(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 0 || result.Cancelled {
		t.Errorf("unexpected result %+v", result)
	}
}

// =============================================================================
// ScanOrphans Tests
// =============================================================================

func TestScanOrphans(t *testing.T) {
	fx := testutil.NewFixture(t)
	month := 40 * 24 * time.Hour
	oldLog := fx.CreateFileWithAge("applogs/Editor/logs/old.log", []byte("old log line"), month)
	upper := fx.CreateFileWithAge("applogs/Editor/CrashLogs/CRASH.TXT", []byte("crash"), month)
	fx.CreateFileWithAge("applogs/Editor/logs/new.log", []byte("fresh"), 24*time.Hour)
	fx.CreateFileWithAge("applogs/Editor/settings.json", []byte("{}"), month)

	tests := []struct {
		name   string
		marker string
		want   []string
	}{
		{"marker matches below the root only", "log", []string{oldLog, upper}},
		{"empty marker keeps every stale file", "", []string{oldLog, upper, fx.Path("applogs/Editor/settings.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScanner(t, func(c *config.Config) { c.Orphans.Marker = tt.marker })

			var counts []int
			result, err := s.ScanOrphans(context.Background(), []string{fx.Path("applogs")}, func(n int) {
				counts = append(counts, n)
			})
			if err != nil {
				t.Fatal(err)
			}

			got := make(map[string]bool)
			for _, f := range result.Files {
				got[f.Path] = true
			}
			if len(result.Files) != len(tt.want) {
				t.Errorf("found %d files, want %d", len(result.Files), len(tt.want))
			}
			for _, path := range tt.want {
				if !got[path] {
					t.Errorf("missing %s", fx.RelPath(path))
				}
			}
			for i := 1; i < len(counts); i++ {
				if counts[i] < counts[i-1] {
					t.Errorf("progress went backwards: %v", counts)
				}
			}
		})
	}
}

func TestScanOrphansInputs(t *testing.T) {
	s := newTestScanner(t, nil)

	if _, err := s.ScanOrphans(context.Background(), []string{"relative/dir"}, nil); ClassOf(err) != ClassInput {
		t.Errorf("relative root: error = %v, want input error", err)
	}

	result, err := s.ScanOrphans(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", result.TotalCount)
	}
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"negative workers", func(c *config.Config) { c.Workers = -1 }},
		{"zero ceiling", func(c *config.Config) { c.WorkerCeiling = 0 }},
		{"bad algorithm", func(c *config.Config) { c.Hashing.Algorithm = "crc32" }},
		{"bad chunk size", func(c *config.Config) { c.Hashing.ChunkSize = "lots" }},
		{"relative protected path", func(c *config.Config) { c.ProtectedPaths = []string{"usr/lib"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetDefault()
			tt.mutate(cfg)
			_, err := New(cfg, platform.Capability{CPUs: 4}, nil)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("error = %v, want ErrInvalidConfig", err)
			}
			if ClassOf(err) != ClassConfig {
				t.Errorf("class = %s, want config", ClassOf(err))
			}
		})
	}
}

func TestNewNilConfig(t *testing.T) {
	s, err := New(nil, platform.Capability{CPUs: 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Workers() != 2 {
		t.Errorf("Workers() = %d, want 2", s.Workers())
	}
	if s.LargeFileThreshold() != 100*1024*1024 {
		t.Errorf("LargeFileThreshold() = %d", s.LargeFileThreshold())
	}
}

func TestWorkerBudget(t *testing.T) {
	tests := []struct {
		name     string
		override int
		cpus     int
		ceiling  int
		expected int
	}{
		{"from cpus", 0, 8, 16, 8},
		{"capped", 0, 64, 16, 16},
		{"cache ceiling", 0, 64, 20, 20},
		{"override", 3, 64, 16, 3},
		{"override capped", 40, 4, 16, 16},
		{"unknown cpus", 0, 0, 16, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorkerBudget(tt.override, tt.cpus, tt.ceiling); got != tt.expected {
				t.Errorf("WorkerBudget(%d, %d, %d) = %d, want %d", tt.override, tt.cpus, tt.ceiling, got, tt.expected)
			}
		})
	}
}

func TestChunkSizeSelection(t *testing.T) {
	tests := []struct {
		name     string
		cpus     int
		override string
		expected int
	}{
		{"few cpus", 4, "", 64 * 1024},
		{"many cpus", 16, "", 1024 * 1024},
		{"configured", 16, "256KiB", 256 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetDefault()
			cfg.Hashing.ChunkSize = tt.override
			s, err := New(cfg, platform.Capability{CPUs: tt.cpus}, nil)
			if err != nil {
				t.Fatal(err)
			}
			if s.ChunkSize() != tt.expected {
				t.Errorf("ChunkSize() = %d, want %d", s.ChunkSize(), tt.expected)
			}
		})
	}
}
