package scanner

import "sort"

// DuplicateGroup is a set of two or more files with equal size and digest.
// Files are ordered by path, so Files[0] is a stable choice when a caller
// wants to keep one copy.
type DuplicateGroup struct {
	Size   int64
	Digest string
	Files  []*FileRecord
}

// Wasted returns the bytes that would be freed by keeping a single copy
func (g DuplicateGroup) Wasted() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Files)-1)
}

// Paths returns the member paths
func (g DuplicateGroup) Paths() []string {
	paths := make([]string, len(g.Files))
	for i, f := range g.Files {
		paths[i] = f.Path
	}
	return paths
}

type groupKey struct {
	size   int64
	digest string
}

// GroupDuplicates groups records by size and digest. Records without a
// digest are left out, and only groups with at least two members are returned.
func GroupDuplicates(records []*FileRecord) []DuplicateGroup {
	byKey := make(map[groupKey][]*FileRecord)
	for _, rec := range records {
		d, ok := rec.Digest()
		if !ok {
			continue
		}
		k := groupKey{size: rec.Size, digest: d}
		byKey[k] = append(byKey[k], rec)
	}

	var groups []DuplicateGroup
	for k, files := range byKey {
		if len(files) < 2 {
			continue
		}
		sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
		groups = append(groups, DuplicateGroup{Size: k.size, Digest: k.digest, Files: files})
	}
	return groups
}

// groupBuckets runs GroupDuplicates per size bucket and sorts the result
func groupBuckets(buckets SizeBuckets) []DuplicateGroup {
	var groups []DuplicateGroup
	for _, size := range buckets.Sizes() {
		groups = append(groups, GroupDuplicates(buckets[size])...)
	}
	SortGroups(groups)
	return groups
}

// SortGroups orders groups by wasted bytes, largest first, then by digest
func SortGroups(groups []DuplicateGroup) {
	sort.Slice(groups, func(i, j int) bool {
		wi, wj := groups[i].Wasted(), groups[j].Wasted()
		if wi != wj {
			return wi > wj
		}
		if groups[i].Size != groups[j].Size {
			return groups[i].Size > groups[j].Size
		}
		return groups[i].Digest < groups[j].Digest
	})
}
