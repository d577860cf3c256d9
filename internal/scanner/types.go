package scanner

import (
	"sort"
	"time"
)

// ProgressFunc reports duplicate-scan progress. total is 0 while the tree is
// being walked (current counts files found) and equals the candidate count
// while hashing (current counts files hashed).
type ProgressFunc func(current, total int)

func (f ProgressFunc) report(current, total int) {
	if f != nil {
		f(current, total)
	}
}

// CountFunc reports the number of files found so far
type CountFunc func(count int)

func (f CountFunc) report(count int) {
	if f != nil {
		f(count)
	}
}

// ScanResult holds the files returned by a cache scan or large-file search
type ScanResult struct {
	ScanID     string
	Root       string
	Files      []*FileRecord
	TotalSize  int64
	TotalCount int
	Skipped    int
	Cancelled  bool
	Duration   time.Duration
}

func (r *ScanResult) add(files ...*FileRecord) {
	for _, f := range files {
		r.Files = append(r.Files, f)
		r.TotalSize += f.Size
		r.TotalCount++
	}
}

// sortBySize orders files largest first, ties broken by path
func (r *ScanResult) sortBySize() {
	sort.Slice(r.Files, func(i, j int) bool {
		if r.Files[i].Size != r.Files[j].Size {
			return r.Files[i].Size > r.Files[j].Size
		}
		return r.Files[i].Path < r.Files[j].Path
	})
}

// Deletable returns the files the classifier marked safe to delete
func (r *ScanResult) Deletable() []*FileRecord {
	var out []*FileRecord
	for _, f := range r.Files {
		if f.Deletable {
			out = append(out, f)
		}
	}
	return out
}

// GroupByCategory splits the result by media category
func (r *ScanResult) GroupByCategory() map[Category]*ScanResult {
	grouped := make(map[Category]*ScanResult)
	for _, f := range r.Files {
		g, ok := grouped[f.Category]
		if !ok {
			g = &ScanResult{ScanID: r.ScanID, Root: r.Root}
			grouped[f.Category] = g
		}
		g.add(f)
	}
	return grouped
}

// DuplicateResult holds the outcome of a duplicate scan
type DuplicateResult struct {
	ScanID       string
	Root         string
	Groups       []DuplicateGroup
	FilesScanned int
	Candidates   int
	Hashed       int
	HashFailures int
	CacheHits    int
	Skipped      int
	Cancelled    bool
	Duration     time.Duration
}

// TotalWasted sums the reclaimable bytes across all groups
func (r *DuplicateResult) TotalWasted() int64 {
	var total int64
	for _, g := range r.Groups {
		total += g.Wasted()
	}
	return total
}

// DuplicateFiles counts files that belong to any group
func (r *DuplicateResult) DuplicateFiles() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Files)
	}
	return n
}
