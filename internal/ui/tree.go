package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fenilsonani/reclaim/internal/scanner"
	"github.com/fenilsonani/reclaim/internal/ui/styles"
)

// maxFilesPerDir bounds how many files the file tree prints per directory
const maxFilesPerDir = 5

// RenderDuplicates prints duplicate groups as a tree, largest waste first.
// maxGroups <= 0 prints every group.
func RenderDuplicates(w io.Writer, result *scanner.DuplicateResult, maxGroups int) {
	if len(result.Groups) == 0 {
		fmt.Fprintln(w, styles.SuccessStyle.Render("No duplicates found"))
		renderDuplicateFooter(w, result)
		return
	}

	shown := result.Groups
	if maxGroups > 0 && len(shown) > maxGroups {
		shown = shown[:maxGroups]
	}

	for i, g := range shown {
		fmt.Fprintf(w, "\n%s %s %s\n",
			styles.GroupHeaderStyle.Render(fmt.Sprintf("Group %d:", i+1)),
			styles.FileSizeStyle.Render(fmt.Sprintf("%d x %s", len(g.Files), humanize.IBytes(uint64(g.Size)))),
			styles.DimStyle.Render(fmt.Sprintf("(%s reclaimable, %s)", humanize.IBytes(uint64(g.Wasted())), shortDigest(g.Digest))))

		for j, f := range g.Files {
			connector := "├──"
			if j == len(g.Files)-1 {
				connector = "╰──"
			}
			fmt.Fprintf(w, "%s %s%s\n", connector, styles.FilePathStyle.Render(f.Path), marker(f))
		}
	}

	if hidden := len(result.Groups) - len(shown); hidden > 0 {
		fmt.Fprintf(w, "\n%s\n", styles.DimStyle.Render(fmt.Sprintf("... and %d more groups", hidden)))
	}
	renderDuplicateFooter(w, result)
}

func renderDuplicateFooter(w io.Writer, result *scanner.DuplicateResult) {
	summary := fmt.Sprintf("%d groups | %d duplicate files | %s reclaimable\n%s files scanned | %d hashed | %d skipped | %s",
		len(result.Groups),
		result.DuplicateFiles(),
		humanize.IBytes(uint64(result.TotalWasted())),
		humanize.Comma(int64(result.FilesScanned)),
		result.Hashed,
		result.Skipped,
		result.Duration.Round(1e6))
	if result.Cancelled {
		summary += "\n" + styles.WarningStyle.Render("Scan was cancelled; results are partial")
	}
	fmt.Fprintf(w, "\n%s\n", styles.PanelStyle.Render(summary))
}

// RenderFiles prints files grouped by category and parent directory
func RenderFiles(w io.Writer, title string, result *scanner.ScanResult) {
	fmt.Fprintln(w, styles.TitleStyle.Render(title))

	grouped := result.GroupByCategory()
	categories := make([]scanner.Category, 0, len(grouped))
	for c := range grouped {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return grouped[categories[i]].TotalSize > grouped[categories[j]].TotalSize
	})

	for _, cat := range categories {
		catResult := grouped[cat]
		fmt.Fprintf(w, "\n╭─ %s (%s)\n",
			styles.CategoryStyle.Render(string(cat)),
			styles.FileSizeStyle.Render(humanize.IBytes(uint64(catResult.TotalSize))))
		renderDirs(w, catResult.Files)
	}

	summary := fmt.Sprintf("Total: %s files | %s | %d deletable",
		humanize.Comma(int64(result.TotalCount)),
		humanize.IBytes(uint64(result.TotalSize)),
		len(result.Deletable()))
	if result.Cancelled {
		summary += "\n" + styles.WarningStyle.Render("Scan was cancelled; results are partial")
	}
	fmt.Fprintf(w, "\n%s\n", styles.PanelStyle.Render(summary))
}

func renderDirs(w io.Writer, files []*scanner.FileRecord) {
	dirs := make(map[string][]*scanner.FileRecord)
	var dirSizes = make(map[string]int64)
	for _, f := range files {
		dir := filepath.Dir(f.Path)
		dirs[dir] = append(dirs[dir], f)
		dirSizes[dir] += f.Size
	}

	names := make([]string, 0, len(dirs))
	for d := range dirs {
		names = append(names, d)
	}
	sort.Slice(names, func(i, j int) bool {
		if dirSizes[names[i]] != dirSizes[names[j]] {
			return dirSizes[names[i]] > dirSizes[names[j]]
		}
		return names[i] < names[j]
	})

	for i, dir := range names {
		isLastDir := i == len(names)-1
		connector := "├"
		indent := "│   "
		if isLastDir {
			connector = "╰"
			indent = "    "
		}
		fmt.Fprintf(w, "%s── %s (%s)\n", connector, truncateLeft(dir, 70), humanize.IBytes(uint64(dirSizes[dir])))

		dirFiles := dirs[dir]
		show := len(dirFiles)
		if show > maxFilesPerDir {
			show = maxFilesPerDir
		}
		for j := 0; j < show; j++ {
			f := dirFiles[j]
			fc := "├"
			if j == show-1 && len(dirFiles) <= maxFilesPerDir {
				fc = "╰"
			}
			fmt.Fprintf(w, "%s%s── %s (%s)%s\n", indent, fc, filepath.Base(f.Path),
				styles.FileSizeStyle.Render(humanize.IBytes(uint64(f.Size))), marker(f))
		}
		if len(dirFiles) > maxFilesPerDir {
			fmt.Fprintf(w, "%s╰── ... and %d more files\n", indent, len(dirFiles)-maxFilesPerDir)
		}
	}
}

func marker(f *scanner.FileRecord) string {
	switch {
	case f.Kind == scanner.KindProtected:
		return " " + styles.ProtectedStyle.Render("[protected]")
	case f.Kind == scanner.KindSymlink:
		return " " + styles.DimStyle.Render("[symlink]")
	case !f.Deletable:
		return " " + styles.DimStyle.Render("[read-only]")
	}
	return ""
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
