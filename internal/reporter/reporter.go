package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fenilsonani/reclaim/internal/scanner"
	"github.com/fenilsonani/reclaim/internal/ui"
	"github.com/fenilsonani/reclaim/pkg/utils"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTree    OutputFormat = "tree"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatCSV     OutputFormat = "csv"
	FormatSummary OutputFormat = "summary"
)

// Formats lists every supported output format
func Formats() []OutputFormat {
	return []OutputFormat{FormatTree, FormatTable, FormatJSON, FormatYAML, FormatCSV, FormatSummary}
}

// ParseFormat validates a format name
func ParseFormat(name string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", name)
}

// Row is the exported view of one file
type Row struct {
	Path          string `json:"path" yaml:"path"`
	Size          int64  `json:"size" yaml:"size"`
	SizeFormatted string `json:"size_formatted" yaml:"size_formatted"`
	Digest        string `json:"digest,omitempty" yaml:"digest,omitempty"`
	ModifiedTime  string `json:"modified_time" yaml:"modified_time"`
	DeviceID      uint64 `json:"device_id" yaml:"device_id"`
	Inode         uint64 `json:"inode" yaml:"inode"`
	Deletable     bool   `json:"deletable" yaml:"deletable"`
	Kind          string `json:"kind" yaml:"kind"`
	Category      string `json:"category" yaml:"category"`
	Group         int    `json:"group,omitempty" yaml:"group,omitempty"`
}

var csvHeader = []string{"group", "path", "size", "digest", "modified_time", "device_id", "inode", "deletable", "kind", "category"}

func newRow(f *scanner.FileRecord, group int) Row {
	digest, _ := f.Digest()
	return Row{
		Path:          f.Path,
		Size:          f.Size,
		SizeFormatted: utils.FormatBytes(f.Size),
		Digest:        digest,
		ModifiedTime:  f.ModTime.Format(time.RFC3339),
		DeviceID:      f.DeviceID,
		Inode:         f.Inode,
		Deletable:     f.Deletable,
		Kind:          f.Kind.String(),
		Category:      string(f.Category),
		Group:         group,
	}
}

func (r Row) csv() []string {
	return []string{
		strconv.Itoa(r.Group),
		r.Path,
		strconv.FormatInt(r.Size, 10),
		r.Digest,
		r.ModifiedTime,
		strconv.FormatUint(r.DeviceID, 10),
		strconv.FormatUint(r.Inode, 10),
		strconv.FormatBool(r.Deletable),
		r.Kind,
		r.Category,
	}
}

// GroupReport is the exported view of one duplicate group
type GroupReport struct {
	ID              int    `json:"id" yaml:"id"`
	Size            int64  `json:"size" yaml:"size"`
	Digest          string `json:"digest" yaml:"digest"`
	Wasted          int64  `json:"wasted" yaml:"wasted"`
	WastedFormatted string `json:"wasted_formatted" yaml:"wasted_formatted"`
	Files           []Row  `json:"files" yaml:"files"`
}

// DuplicateReport is the document written for json and yaml duplicate output
type DuplicateReport struct {
	Timestamp            string        `json:"timestamp" yaml:"timestamp"`
	ScanID               string        `json:"scan_id" yaml:"scan_id"`
	Root                 string        `json:"root" yaml:"root"`
	FilesScanned         int           `json:"files_scanned" yaml:"files_scanned"`
	Candidates           int           `json:"candidates" yaml:"candidates"`
	Hashed               int           `json:"hashed" yaml:"hashed"`
	HashFailures         int           `json:"hash_failures" yaml:"hash_failures"`
	Skipped              int           `json:"skipped" yaml:"skipped"`
	Cancelled            bool          `json:"cancelled" yaml:"cancelled"`
	TotalWasted          int64         `json:"total_wasted" yaml:"total_wasted"`
	TotalWastedFormatted string        `json:"total_wasted_formatted" yaml:"total_wasted_formatted"`
	DurationMS           int64         `json:"duration_ms" yaml:"duration_ms"`
	Groups               []GroupReport `json:"groups" yaml:"groups"`
}

// FileReport is the document written for json and yaml file-list output
type FileReport struct {
	Timestamp          string `json:"timestamp" yaml:"timestamp"`
	ScanID             string `json:"scan_id" yaml:"scan_id"`
	Root               string `json:"root,omitempty" yaml:"root,omitempty"`
	TotalFiles         int    `json:"total_files" yaml:"total_files"`
	TotalSize          int64  `json:"total_size" yaml:"total_size"`
	TotalSizeFormatted string `json:"total_size_formatted" yaml:"total_size_formatted"`
	Skipped            int    `json:"skipped" yaml:"skipped"`
	Cancelled          bool   `json:"cancelled" yaml:"cancelled"`
	DurationMS         int64  `json:"duration_ms" yaml:"duration_ms"`
	Files              []Row  `json:"files" yaml:"files"`
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
	title  string
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
		title:  "Files",
	}
}

// WithTitle sets the heading used by tree output for file lists
func (r *Reporter) WithTitle(title string) *Reporter {
	r.title = title
	return r
}

// ReportDuplicates writes a duplicate scan result
func (r *Reporter) ReportDuplicates(result *scanner.DuplicateResult) error {
	switch r.format {
	case FormatTree:
		ui.RenderDuplicates(r.writer, result, 0)
		return nil
	case FormatTable:
		return r.duplicatesTable(result)
	case FormatJSON:
		return r.encodeJSON(buildDuplicateReport(result))
	case FormatYAML:
		return r.encodeYAML(buildDuplicateReport(result))
	case FormatCSV:
		var rows []Row
		for i, g := range result.Groups {
			for _, f := range g.Files {
				rows = append(rows, newRow(f, i+1))
			}
		}
		return r.writeCSV(rows)
	case FormatSummary:
		return r.duplicatesSummary(result)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// ReportFiles writes a cache scan or large-file result
func (r *Reporter) ReportFiles(result *scanner.ScanResult) error {
	switch r.format {
	case FormatTree:
		ui.RenderFiles(r.writer, r.title, result)
		return nil
	case FormatTable:
		return r.filesTable(result)
	case FormatJSON:
		return r.encodeJSON(buildFileReport(result))
	case FormatYAML:
		return r.encodeYAML(buildFileReport(result))
	case FormatCSV:
		rows := make([]Row, 0, len(result.Files))
		for _, f := range result.Files {
			rows = append(rows, newRow(f, 0))
		}
		return r.writeCSV(rows)
	case FormatSummary:
		return r.filesSummary(result)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func buildDuplicateReport(result *scanner.DuplicateResult) DuplicateReport {
	report := DuplicateReport{
		Timestamp:            time.Now().Format(time.RFC3339),
		ScanID:               result.ScanID,
		Root:                 result.Root,
		FilesScanned:         result.FilesScanned,
		Candidates:           result.Candidates,
		Hashed:               result.Hashed,
		HashFailures:         result.HashFailures,
		Skipped:              result.Skipped,
		Cancelled:            result.Cancelled,
		TotalWasted:          result.TotalWasted(),
		TotalWastedFormatted: utils.FormatBytes(result.TotalWasted()),
		DurationMS:           result.Duration.Milliseconds(),
		Groups:               make([]GroupReport, 0, len(result.Groups)),
	}
	for i, g := range result.Groups {
		gr := GroupReport{
			ID:              i + 1,
			Size:            g.Size,
			Digest:          g.Digest,
			Wasted:          g.Wasted(),
			WastedFormatted: utils.FormatBytes(g.Wasted()),
			Files:           make([]Row, 0, len(g.Files)),
		}
		for _, f := range g.Files {
			gr.Files = append(gr.Files, newRow(f, i+1))
		}
		report.Groups = append(report.Groups, gr)
	}
	return report
}

func buildFileReport(result *scanner.ScanResult) FileReport {
	report := FileReport{
		Timestamp:          time.Now().Format(time.RFC3339),
		ScanID:             result.ScanID,
		Root:               result.Root,
		TotalFiles:         result.TotalCount,
		TotalSize:          result.TotalSize,
		TotalSizeFormatted: utils.FormatBytes(result.TotalSize),
		Skipped:            result.Skipped,
		Cancelled:          result.Cancelled,
		DurationMS:         result.Duration.Milliseconds(),
		Files:              make([]Row, 0, len(result.Files)),
	}
	for _, f := range result.Files {
		report.Files = append(report.Files, newRow(f, 0))
	}
	return report
}

func (r *Reporter) encodeJSON(v interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r *Reporter) encodeYAML(v interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(v)
}

func (r *Reporter) writeCSV(rows []Row) error {
	w := csv.NewWriter(r.writer)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.csv()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// duplicatesSummary generates a summary report
func (r *Reporter) duplicatesSummary(result *scanner.DuplicateResult) error {
	fmt.Fprintf(r.writer, "=== Duplicate Summary ===\n")
	fmt.Fprintf(r.writer, "Root: %s\n", result.Root)
	fmt.Fprintf(r.writer, "Files Scanned: %d\n", result.FilesScanned)
	fmt.Fprintf(r.writer, "Candidates Hashed: %d/%d\n", result.Hashed, result.Candidates)
	fmt.Fprintf(r.writer, "Duplicate Groups: %d\n", len(result.Groups))
	fmt.Fprintf(r.writer, "Duplicate Files: %d\n", result.DuplicateFiles())
	fmt.Fprintf(r.writer, "Reclaimable: %s\n", utils.FormatBytes(result.TotalWasted()))

	if result.HashFailures > 0 || result.Skipped > 0 {
		fmt.Fprintf(r.writer, "\nSkipped: %d (hash failures: %d)\n", result.Skipped, result.HashFailures)
	}
	if result.Cancelled {
		fmt.Fprintf(r.writer, "\nScan was cancelled; results are partial\n")
	}
	return nil
}

// filesSummary generates a summary report
func (r *Reporter) filesSummary(result *scanner.ScanResult) error {
	fmt.Fprintf(r.writer, "=== %s Summary ===\n", r.title)
	fmt.Fprintf(r.writer, "Total Files: %d\n", result.TotalCount)
	fmt.Fprintf(r.writer, "Total Size: %s\n", utils.FormatBytes(result.TotalSize))
	fmt.Fprintf(r.writer, "Deletable: %d\n", len(result.Deletable()))
	fmt.Fprintf(r.writer, "\nBreakdown by Category:\n")

	grouped := result.GroupByCategory()
	for _, category := range sortedCategories(grouped) {
		catResult := grouped[category]
		fmt.Fprintf(r.writer, "  %s: %d files, %s\n",
			category, catResult.TotalCount, utils.FormatBytes(catResult.TotalSize))
	}

	if result.Skipped > 0 {
		fmt.Fprintf(r.writer, "\nSkipped: %d\n", result.Skipped)
	}
	if result.Cancelled {
		fmt.Fprintf(r.writer, "\nScan was cancelled; results are partial\n")
	}
	return nil
}

// duplicatesTable generates a table report
func (r *Reporter) duplicatesTable(result *scanner.DuplicateResult) error {
	fmt.Fprintf(r.writer, "%-6s | %-60s | %-12s | %-16s | %s\n", "Group", "Path", "Size", "Digest", "Deletable")
	fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 110))

	for i, g := range result.Groups {
		for _, f := range g.Files {
			fmt.Fprintf(r.writer, "%-6d | %-60s | %-12s | %-16s | %t\n",
				i+1,
				shortenPath(f.Path, 60),
				utils.FormatBytes(f.Size),
				shortDigest(g.Digest),
				f.Deletable)
		}
	}

	fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 110))
	fmt.Fprintf(r.writer, "Total: %d groups, %d files, %s reclaimable\n",
		len(result.Groups), result.DuplicateFiles(), utils.FormatBytes(result.TotalWasted()))
	return nil
}

// filesTable generates a table report
func (r *Reporter) filesTable(result *scanner.ScanResult) error {
	fmt.Fprintf(r.writer, "%-60s | %-12s | %-10s | %s\n", "Path", "Size", "Category", "Modified")
	fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 110))

	for _, file := range result.Files {
		fmt.Fprintf(r.writer, "%-60s | %-12s | %-10s | %s\n",
			shortenPath(file.Path, 60),
			utils.FormatBytes(file.Size),
			file.Category,
			file.ModTime.Format("2006-01-02 15:04:05"))
	}

	fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 110))
	fmt.Fprintf(r.writer, "Total: %d files, %s\n", result.TotalCount, utils.FormatBytes(result.TotalSize))
	return nil
}

func shortenPath(path string, width int) string {
	if len(path) <= width {
		return path
	}
	return "..." + path[len(path)-(width-3):]
}

func shortDigest(d string) string {
	if len(d) > 16 {
		return d[:16]
	}
	return d
}

func sortedCategories(grouped map[scanner.Category]*scanner.ScanResult) []scanner.Category {
	out := make([]scanner.Category, 0, len(grouped))
	for c := range grouped {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SaveDuplicates writes a duplicate report to a file
func SaveDuplicates(result *scanner.DuplicateResult, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return New(file, format).ReportDuplicates(result)
}

// SaveFiles writes a file-list report to a file
func SaveFiles(result *scanner.ScanResult, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return New(file, format).ReportFiles(result)
}
