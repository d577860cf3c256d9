package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/reclaim/internal/security"
	"github.com/fenilsonani/reclaim/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Workers overrides the derived worker budget; 0 derives it from the CPU count
	Workers            int              `yaml:"workers"`
	WorkerCeiling      int              `yaml:"worker_ceiling"`
	CacheWorkerCeiling int              `yaml:"cache_worker_ceiling"`
	HiddenPrefix       string           `yaml:"hidden_prefix"`
	ProtectedPaths     []string         `yaml:"protected_paths"`
	ExcludePatterns    []string         `yaml:"exclude_patterns"`
	LogLevel           string           `yaml:"log_level"`
	DryRun             bool             `yaml:"dry_run"`
	Hashing            HashingConfig    `yaml:"hashing"`
	Duplicates         DuplicatesConfig `yaml:"duplicates"`
	LargeFiles         LargeFilesConfig `yaml:"large_files"`
	Cache              CacheConfig      `yaml:"cache"`
	Orphans            OrphansConfig    `yaml:"orphans"`
}

// HashingConfig controls the content hasher
type HashingConfig struct {
	Algorithm          string `yaml:"algorithm"`            // md5, sha256, xxhash
	ChunkSize          string `yaml:"chunk_size"`           // empty = pick from CPU count
	SmallFileThreshold string `yaml:"small_file_threshold"` // files below this are read in one shot
	CacheEntries       int    `yaml:"cache_entries"`        // 0 disables the per-scan digest cache
}

// DuplicatesConfig controls duplicate detection
type DuplicatesConfig struct {
	MinSize     string   `yaml:"min_size"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// LargeFilesConfig controls the large-file finder
type LargeFilesConfig struct {
	MinSize     string   `yaml:"min_size"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
	// ExcludeRoots are absolute directories such as /proc that are skipped
	// only at that exact location
	ExcludeRoots []string `yaml:"exclude_roots"`
}

// CacheConfig controls cache scans
type CacheConfig struct {
	Roots       []string `yaml:"roots"`         // added to the platform table
	MinAgeHours int      `yaml:"min_age_hours"` // files modified more recently are skipped
}

// OrphansConfig controls the stale log scan of application data directories
type OrphansConfig struct {
	Roots      []string `yaml:"roots"`        // added to the platform table
	MinAgeDays int      `yaml:"min_age_days"` // files modified more recently are skipped
	Marker     string   `yaml:"marker"`       // case-insensitive path substring, e.g. "log"
}

// Load loads configuration from a file
func Load(configPath string) (*Config, error) {
	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so a partial file only overrides what it names
	config := GetDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if c.WorkerCeiling < 1 {
		return fmt.Errorf("worker ceiling must be >= 1")
	}
	if c.CacheWorkerCeiling < 1 {
		return fmt.Errorf("cache worker ceiling must be >= 1")
	}
	if c.HiddenPrefix != "" && strings.ContainsRune(c.HiddenPrefix, filepath.Separator) {
		return fmt.Errorf("hidden prefix must not contain a path separator: %q", c.HiddenPrefix)
	}

	if err := utils.ValidateAlgorithm(c.Hashing.Algorithm); err != nil {
		return err
	}
	if c.Hashing.CacheEntries < 0 {
		return fmt.Errorf("hash cache entries must be >= 0")
	}
	if _, err := c.ChunkSizeBytes(); err != nil {
		return fmt.Errorf("hashing chunk size: %w", err)
	}
	if _, err := c.SmallFileThresholdBytes(); err != nil {
		return fmt.Errorf("hashing small file threshold: %w", err)
	}
	if _, err := c.DuplicatesMinSizeBytes(); err != nil {
		return fmt.Errorf("duplicates min size: %w", err)
	}
	if _, err := c.LargeFilesMinSizeBytes(); err != nil {
		return fmt.Errorf("large files min size: %w", err)
	}

	if c.Cache.MinAgeHours < 0 {
		return fmt.Errorf("cache min age must be >= 0")
	}

	if c.Orphans.MinAgeDays < 0 {
		return fmt.Errorf("orphans min age must be >= 0")
	}
	for _, path := range c.Orphans.Roots {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("orphans root must be absolute: %s", path)
		}
	}

	for _, fragment := range c.Duplicates.ExcludeDirs {
		if err := security.ValidateFragment(fragment); err != nil {
			return fmt.Errorf("duplicates exclude dir: %w", err)
		}
	}
	for _, fragment := range c.LargeFiles.ExcludeDirs {
		if err := security.ValidateFragment(fragment); err != nil {
			return fmt.Errorf("large files exclude dir: %w", err)
		}
	}
	for _, root := range c.LargeFiles.ExcludeRoots {
		if err := security.ValidateRoot(root); err != nil {
			return fmt.Errorf("large files exclude root: %w", err)
		}
	}

	for _, pattern := range c.ExcludePatterns {
		if err := security.ValidateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	for _, path := range c.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %s", path)
		}
	}
	for _, path := range c.Cache.Roots {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("cache root must be absolute: %s", path)
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	return nil
}

// ChunkSizeBytes returns the configured chunk size, or 0 when it is left to the scanner
func (c *Config) ChunkSizeBytes() (int64, error) {
	if strings.TrimSpace(c.Hashing.ChunkSize) == "" {
		return 0, nil
	}
	n, err := utils.ParseSize(c.Hashing.ChunkSize)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be > 0")
	}
	return n, nil
}

// SmallFileThresholdBytes returns the one-shot read threshold
func (c *Config) SmallFileThresholdBytes() (int64, error) {
	return utils.ParseSize(c.Hashing.SmallFileThreshold)
}

// DuplicatesMinSizeBytes returns the smallest file size considered for duplicates
func (c *Config) DuplicatesMinSizeBytes() (int64, error) {
	return utils.ParseSize(c.Duplicates.MinSize)
}

// LargeFilesMinSizeBytes returns the default large-file threshold
func (c *Config) LargeFilesMinSizeBytes() (int64, error) {
	return utils.ParseSize(c.LargeFiles.MinSize)
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "reclaim")
	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(GetDefault(), configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
