package utils

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	B   = 1
	KiB = 1024 * B
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// FormatBytes converts bytes to human-readable IEC format (e.g. "1.5 MiB")
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// ParseSize converts a human-readable size to bytes.
// Both SI ("100MB") and IEC ("100MiB") suffixes are accepted; a bare number is bytes.
func ParseSize(size string) (int64, error) {
	trimmed := strings.TrimSpace(size)
	if trimmed == "" {
		return 0, fmt.Errorf("invalid size format: empty")
	}
	if strings.HasPrefix(trimmed, "-") {
		return 0, fmt.Errorf("invalid size format: %s (must not be negative)", size)
	}

	n, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid size format: %s: %w", size, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("invalid size format: %s (too large)", size)
	}
	return int64(n), nil
}

// SumSizes adds up a slice of sizes
func SumSizes(sizes []int64) int64 {
	var total int64
	for _, size := range sizes {
		total += size
	}
	return total
}
