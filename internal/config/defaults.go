package config

import "github.com/fenilsonani/reclaim/pkg/utils"

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		Workers:            0,  // derive from CPU count
		WorkerCeiling:      16, // more workers than this only thrash the disk
		CacheWorkerCeiling: 20,
		HiddenPrefix:       ".",
		ProtectedPaths:     nil, // filled from the platform table at startup
		ExcludePatterns:    []string{},
		LogLevel:           "info",
		DryRun:             false,
		Hashing: HashingConfig{
			Algorithm:          utils.AlgorithmMD5,
			ChunkSize:          "",
			SmallFileThreshold: "64KiB",
			CacheEntries:       100000,
		},
		Duplicates: DuplicatesConfig{
			MinSize:     "1B", // empty files are never duplicates
			ExcludeDirs: []string{},
		},
		LargeFiles: LargeFilesConfig{
			MinSize: "100MiB",
			ExcludeDirs: []string{
				"/.git",
				"/node_modules",
				"__pycache__",
				".venv",
			},
			ExcludeRoots: []string{},
		},
		Cache: CacheConfig{
			Roots:       []string{},
			MinAgeHours: 24,
		},
		Orphans: OrphansConfig{
			Roots:      []string{},
			MinAgeDays: 30,
			Marker:     "log",
		},
	}
}

// GetExampleConfig returns an example configuration with comments
func GetExampleConfig() string {
	return `# Reclaim Configuration File
# Location: ~/.config/reclaim/config.yaml

# Worker budget. 0 derives it from the number of logical CPUs,
# capped at worker_ceiling (cache scans use cache_worker_ceiling).
workers: 0
worker_ceiling: 16
cache_worker_ceiling: 20

# Top-level directories starting with this prefix are not split
# into their own traversal unit.
hidden_prefix: "."

# Reserved system prefixes. Files below them are never offered for deletion.
# Leave empty to use the built-in table for this operating system.
protected_paths: []

# File name glob patterns that are never reported
exclude_patterns:
  - "*.keep"

log_level: info   # debug, info, warn, error
dry_run: false

hashing:
  algorithm: md5             # md5, sha256, xxhash
  chunk_size: ""             # e.g. "1MiB"; empty picks 1MiB on 8+ CPUs, 64KiB otherwise
  small_file_threshold: 64KiB
  cache_entries: 100000      # per-scan digest cache for hard links; 0 disables

duplicates:
  min_size: 1B
  exclude_dirs: []

large_files:
  min_size: 100MiB
  exclude_dirs:
    - "/.git"
    - "/node_modules"
    - "__pycache__"
    - ".venv"
  # "/name" fragments match whole path components below the scanned root,
  # bare fragments match anywhere
  exclude_roots: []   # absolute directories such as /proc, added to the OS table

cache:
  roots: []          # extra cache directories, added to the OS table
  min_age_hours: 24  # skip cache files modified more recently than this

orphans:
  roots: []          # extra application data directories, added to the OS table
  min_age_days: 30   # skip log files modified more recently than this
  marker: log        # only paths containing this (case-insensitive) are reported
`
}
