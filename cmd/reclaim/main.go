package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fenilsonani/reclaim/internal/config"
	"github.com/fenilsonani/reclaim/internal/platform"
	"github.com/fenilsonani/reclaim/internal/progress"
	"github.com/fenilsonani/reclaim/internal/reporter"
	"github.com/fenilsonani/reclaim/internal/scanner"
	"github.com/fenilsonani/reclaim/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath string
	verbose    bool
	workers    int
	algorithm  string
	timeout    time.Duration
	noProgress bool
	outputFmt  string
	outputFile string
	doDelete   bool
	assumeYes  bool
	dryRun     bool
	manifest   string
	minSize    string
	maxGroups  int
	showCaps   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Find duplicate files, stale caches and large files",
	Long: `Reclaim walks directory trees in parallel to find duplicate files,
stale cache files and large files, and can remove the ones it marks deletable.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "worker budget (0 = derive from CPU count)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "cancel the scan after this long (0 = no limit)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable the live progress line")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "tree", "output format (tree, table, json, yaml, csv, summary)")
	rootCmd.PersistentFlags().StringVar(&outputFile, "file", "", "save report to file")

	for _, cmd := range []*cobra.Command{dupesCmd, largeCmd, cacheCmd, orphansCmd} {
		cmd.Flags().BoolVar(&doDelete, "delete", false, "remove deletable files after the scan")
		cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "confirm removal (required with --delete unless --dry-run)")
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be removed without removing it")
		cmd.Flags().StringVar(&manifest, "manifest", "", "write a manifest of removed files to this path")
	}

	dupesCmd.Flags().StringVar(&algorithm, "algorithm", "", "hash algorithm (md5, sha256, xxhash)")
	dupesCmd.Flags().IntVar(&maxGroups, "max-groups", 0, "limit groups shown in tree output (0 = all)")
	largeCmd.Flags().StringVar(&minSize, "min-size", "", "minimum file size, e.g. 500MiB (default from config)")
	configCmd.Flags().BoolVar(&showCaps, "show-capability", false, "show detected CPU and memory figures")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(largeCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(orphansCmd)
	rootCmd.AddCommand(configCmd)
}

// env bundles what every scanning command needs
type env struct {
	cfg      *config.Config
	info     *platform.Info
	caps     platform.Capability
	logger   *zap.Logger
	scanner  *scanner.Scanner
	format   reporter.OutputFormat
	progress *ui.LiveProgress
}

func setup(cmd *cobra.Command) (*env, error) {
	format, err := reporter.ParseFormat(outputFmt)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("algorithm") {
		cfg.Hashing.Algorithm = algorithm
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = dryRun
	}

	info, err := platform.GetInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get platform info: %w", err)
	}
	applyPlatform(cfg, info)

	logger, err := newLogger(cfg.LogLevel, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	caps := platform.DetectCapability()
	scnr, err := scanner.New(cfg, caps, logger)
	if err != nil {
		return nil, err
	}

	live := ui.NewLiveProgress()
	if noProgress || (outputFile == "" && format != reporter.FormatTree && format != reporter.FormatSummary && format != reporter.FormatTable) {
		// Machine-readable output on stdout stays free of terminal control codes
		live.SetEnabled(false)
	}

	logger.Debug("Configuration loaded",
		zap.Int("workers", scnr.Workers()),
		zap.Int("cpus", caps.CPUs),
		zap.Int("chunk_size", scnr.ChunkSize()),
		zap.String("algorithm", cfg.Hashing.Algorithm),
		zap.String("os", string(info.OS)))

	return &env{
		cfg:      cfg,
		info:     info,
		caps:     caps,
		logger:   logger,
		scanner:  scnr,
		format:   format,
		progress: live,
	}, nil
}

// applyPlatform fills settings the config leaves empty from the OS tables
func applyPlatform(cfg *config.Config, info *platform.Info) {
	if len(cfg.ProtectedPaths) == 0 {
		cfg.ProtectedPaths = append([]string(nil), info.ProtectedPaths...)
	}
	cfg.LargeFiles.ExcludeDirs = mergeUnique(cfg.LargeFiles.ExcludeDirs, info.LargeFileExclusions)
	cfg.LargeFiles.ExcludeRoots = mergeUnique(cfg.LargeFiles.ExcludeRoots, info.LargeFileRoots)
}

func mergeUnique(dst, extra []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, f := range dst {
		seen[f] = true
	}
	for _, f := range extra {
		if !seen[f] {
			dst = append(dst, f)
			seen[f] = true
		}
	}
	return dst
}

// cacheRoots returns the explicit roots, or the platform table plus config extras
func cacheRoots(args []string, cfg *config.Config, info *platform.Info) []string {
	if len(args) > 0 {
		return args
	}
	roots := info.ExistingCacheRoots()
	return append(roots, cfg.Cache.Roots...)
}

// appDataRoots returns the explicit roots, or the platform table plus config extras
func appDataRoots(args []string, cfg *config.Config, info *platform.Info) []string {
	if len(args) > 0 {
		return args
	}
	roots := info.ExistingAppDataRoots()
	return append(roots, cfg.Orphans.Roots...)
}

// newLogger builds a console logger on stderr
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		level = "debug"
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          "console",
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig:     encoderCfg,
		DisableStacktrace: !verbose,
		DisableCaller:     !verbose,
	}
	return cfg.Build()
}

// scanContext returns a context cancelled by SIGINT, SIGTERM or --timeout
func scanContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

// track wires a tracker to the live display and returns a finish func
func (e *env) track(op string) (*progress.Tracker, func(cancelled bool, err error)) {
	tracker := progress.NewTracker(op)
	updates := tracker.Subscribe()
	done := make(chan struct{})
	go func() {
		e.progress.Consume(updates)
		close(done)
	}()

	return tracker, func(cancelled bool, err error) {
		tracker.Finish(cancelled, err)
		tracker.Unsubscribe(updates)
		<-done
		e.progress.Finish()
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	return config.Load(cfgPath)
}
