package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fenilsonani/reclaim/internal/cleaner"
	"github.com/fenilsonani/reclaim/internal/config"
	"github.com/fenilsonani/reclaim/internal/platform"
	"github.com/fenilsonani/reclaim/internal/progress"
	"github.com/fenilsonani/reclaim/internal/reporter"
	"github.com/fenilsonani/reclaim/internal/scanner"
	"github.com/fenilsonani/reclaim/internal/ui/styles"
	"github.com/fenilsonani/reclaim/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var dupesCmd = &cobra.Command{
	Use:   "dupes [path]",
	Short: "Find duplicate files",
	Long: `Walks path (default: current directory), groups files by size and hashes
only sizes shared by two or more files. With --delete every copy except the
lexicographically first path of each group is removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.logger.Sync()

		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		ctx, cancel := scanContext()
		defer cancel()

		tracker, finish := e.track("duplicates")
		result, err := e.scanner.ScanDuplicates(ctx, root, tracker.OnDuplicates)
		if err != nil {
			finish(false, err)
			return err
		}
		finish(result.Cancelled, nil)

		if err := emit(e.format, func(r *reporter.Reporter) error { return r.ReportDuplicates(result) },
			func(path string) error { return reporter.SaveDuplicates(result, path, e.format) }); err != nil {
			return err
		}

		if !doDelete {
			return nil
		}
		if result.Cancelled {
			return fmt.Errorf("scan was cancelled; refusing to delete from partial results")
		}
		return removeFiles(e, cleaner.DuplicateCopies(result.Groups))
	},
}

var largeCmd = &cobra.Command{
	Use:   "large [path]",
	Short: "Find large files",
	Long:  `Lists files at or above --min-size under path (default: current directory), largest first.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.logger.Sync()

		threshold := e.scanner.LargeFileThreshold()
		if minSize != "" {
			threshold, err = utils.ParseSize(minSize)
			if err != nil {
				return fmt.Errorf("invalid --min-size: %w", err)
			}
		}

		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		ctx, cancel := scanContext()
		defer cancel()

		tracker, finish := e.track("large")
		result, err := e.scanner.FindLargeFiles(ctx, root, threshold, tracker.OnCount)
		if err != nil {
			finish(false, err)
			return err
		}
		tracker.SetTotalSize(result.TotalSize)
		finish(result.Cancelled, nil)

		title := fmt.Sprintf("Files of %s or more", humanize.IBytes(uint64(threshold)))
		return reportAndMaybeDelete(e, title, result)
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache [roots...]",
	Short: "Find stale cache files",
	Long: `Lists files under the given cache roots, or under this platform's known
cache directories plus the configured extras. Files modified within the
configured minimum age are left out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.logger.Sync()

		roots := cacheRoots(args, e.cfg, e.info)
		e.logger.Debug("Cache roots", zap.Strings("roots", roots))

		ctx, cancel := scanContext()
		defer cancel()

		tracker, finish := e.track("cache")
		result, err := e.scanner.ScanCache(ctx, roots, tracker.OnCount)
		if err != nil {
			finish(false, err)
			return err
		}
		tracker.SetTotalSize(result.TotalSize)
		finish(result.Cancelled, nil)

		return reportAndMaybeDelete(e, "Cache files", result)
	},
}

var orphansCmd = &cobra.Command{
	Use:   "orphans [roots...]",
	Short: "Find stale log files in application data directories",
	Long: `Lists log files left under the given application data roots, or under this
platform's known application directories plus the configured extras. Only
paths containing the configured marker and older than the configured number
of days are reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.logger.Sync()

		roots := appDataRoots(args, e.cfg, e.info)
		e.logger.Debug("Application data roots", zap.Strings("roots", roots))

		ctx, cancel := scanContext()
		defer cancel()

		tracker, finish := e.track("orphans")
		result, err := e.scanner.ScanOrphans(ctx, roots, tracker.OnCount)
		if err != nil {
			finish(false, err)
			return err
		}
		tracker.SetTotalSize(result.TotalSize)
		finish(result.Cancelled, nil)

		title := fmt.Sprintf("Log files older than %d days", e.cfg.Orphans.MinAgeDays)
		return reportAndMaybeDelete(e, title, result)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	Long:  `Shows the configuration in effect, after platform defaults are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath := configPath
		if cfgPath == "" {
			var err error
			if cfgPath, err = config.GetConfigPath(); err != nil {
				return err
			}
		}

		fmt.Printf("Config file: %s\n", cfgPath)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Println("Config file does not exist. Using default configuration.")
			fmt.Println("Run 'reclaim config init' to create one.")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		info, err := platform.GetInfo()
		if err != nil {
			return fmt.Errorf("failed to get platform info: %w", err)
		}
		applyPlatform(cfg, info)

		if showCaps {
			caps := platform.DetectCapability()
			fmt.Printf("\nPlatform: %s\n", info.OS)
			fmt.Printf("Logical CPUs: %d\n", caps.CPUs)
			if caps.MemoryBytes > 0 {
				fmt.Printf("Memory: %s\n", humanize.IBytes(caps.MemoryBytes))
			}
			s, err := scanner.New(cfg, caps, nil)
			if err != nil {
				return err
			}
			fmt.Printf("Worker budget: %d\n", s.Workers())
			fmt.Printf("Hash chunk size: %s\n", humanize.IBytes(uint64(s.ChunkSize())))
		}

		fmt.Println()
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.EnsureConfigExists()
		if err != nil {
			return err
		}
		fmt.Printf("Config file: %s\n", path)
		return nil
	},
}

func reportAndMaybeDelete(e *env, title string, result *scanner.ScanResult) error {
	if err := emit(e.format, func(r *reporter.Reporter) error { return r.WithTitle(title).ReportFiles(result) },
		func(path string) error { return reporter.SaveFiles(result, path, e.format) }); err != nil {
		return err
	}

	if !doDelete {
		return nil
	}
	if result.Cancelled {
		return fmt.Errorf("scan was cancelled; refusing to delete from partial results")
	}
	return removeFiles(e, result.Deletable())
}

func emit(format reporter.OutputFormat, toStdout func(*reporter.Reporter) error, toFile func(string) error) error {
	if outputFile != "" {
		if err := toFile(outputFile); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", outputFile)
		return nil
	}
	if err := toStdout(reporter.New(os.Stdout, format)); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	return nil
}

func removeFiles(e *env, records []*scanner.FileRecord) error {
	if len(records) == 0 {
		fmt.Println("\nNothing to remove.")
		return nil
	}

	var total int64
	for _, r := range records {
		total += r.Size
	}

	if !assumeYes && !e.cfg.DryRun {
		fmt.Printf("\n%d files (%s) can be removed. Re-run with --yes to remove them or --dry-run to preview.\n",
			len(records), humanize.IBytes(uint64(total)))
		return nil
	}

	if e.cfg.DryRun {
		fmt.Println("\n[DRY RUN MODE] No files will be deleted.")
	}

	ctx, cancel := scanContext()
	defer cancel()

	c := cleaner.New(e.cfg, e.scanner.Workers(), e.logger)
	tracker := progress.NewTracker("remove")
	updates := tracker.Subscribe()
	done := make(chan struct{})
	go func() {
		e.progress.Consume(updates)
		close(done)
	}()

	c.SetTracker(tracker)
	result, err := c.Remove(ctx, records)
	tracker.Unsubscribe(updates)
	<-done
	e.progress.Finish()
	if err != nil {
		return fmt.Errorf("removal failed: %w", err)
	}

	verb := "Removed"
	if result.DryRun {
		verb = "Would remove"
	}
	fmt.Println(styles.SuccessStyle.Render(fmt.Sprintf("\n%s %d files (%s)",
		verb, len(result.Removed), humanize.IBytes(uint64(result.FreedBytes)))))

	if len(result.Errors) > 0 {
		fmt.Print(cleaner.FormatErrorSummary(result.Errors))
	}
	return writeManifest(c, manifest)
}

// writeManifest saves the cleaner's manifest when a path was given
func writeManifest(c *cleaner.Cleaner, path string) error {
	if path == "" {
		return nil
	}
	if err := c.SaveManifest(path); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	fmt.Printf("Manifest saved to: %s\n", path)
	return nil
}
