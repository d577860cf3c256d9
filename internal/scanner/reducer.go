package scanner

import "sort"

// SizeBuckets maps an exact byte size to the records of that size
type SizeBuckets map[int64][]*FileRecord

// sizeReducer accumulates records by size. It is owned by a single
// aggregating goroutine and is not safe for concurrent use.
type sizeReducer struct {
	buckets SizeBuckets
	seen    int
}

func newSizeReducer() *sizeReducer {
	return &sizeReducer{buckets: make(SizeBuckets)}
}

// add files a record under its size. Symlinks and empty files are ignored:
// neither has content that could make it a duplicate.
func (r *sizeReducer) add(rec *FileRecord) {
	r.seen++
	if !rec.hashable() {
		return
	}
	r.buckets[rec.Size] = append(r.buckets[rec.Size], rec)
}

// candidates drops every bucket with a single member
func (r *sizeReducer) candidates() SizeBuckets {
	out := make(SizeBuckets)
	for size, recs := range r.buckets {
		if len(recs) > 1 {
			out[size] = recs
		}
	}
	return out
}

// BucketBySize groups records by exact size and keeps only buckets with two
// or more members, since files of different sizes cannot be duplicates
func BucketBySize(records []*FileRecord) SizeBuckets {
	r := newSizeReducer()
	for _, rec := range records {
		r.add(rec)
	}
	return r.candidates()
}

// Count returns the number of records across all buckets
func (b SizeBuckets) Count() int {
	n := 0
	for _, recs := range b {
		n += len(recs)
	}
	return n
}

// Sizes returns bucket sizes, largest first
func (b SizeBuckets) Sizes() []int64 {
	sizes := make([]int64, 0, len(b))
	for size := range b {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })
	return sizes
}

// Records flattens the buckets, largest size first
func (b SizeBuckets) Records() []*FileRecord {
	out := make([]*FileRecord, 0, b.Count())
	for _, size := range b.Sizes() {
		out = append(out, b[size]...)
	}
	return out
}
