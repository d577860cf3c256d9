package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fenilsonani/reclaim/internal/progress"
	"github.com/fenilsonani/reclaim/internal/ui/styles"
	"golang.org/x/term"
)

const (
	renderInterval = 100 * time.Millisecond
	barWidth       = 24
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// LiveProgress draws a single self-overwriting status line
type LiveProgress struct {
	mu         sync.Mutex
	out        io.Writer
	termWidth  int
	enabled    bool
	lastUpdate time.Time
	frame      int
	drawn      bool
}

// NewLiveProgress creates a live display on stderr. It is disabled when
// stderr is not a terminal so piped output stays clean.
func NewLiveProgress() *LiveProgress {
	fd := int(os.Stderr.Fd())
	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}

	return &LiveProgress{
		out:       os.Stderr,
		termWidth: width,
		enabled:   term.IsTerminal(fd),
	}
}

// NewLiveProgressWriter creates an always-enabled display writing to w
func NewLiveProgressWriter(w io.Writer, width int) *LiveProgress {
	if width <= 0 {
		width = 80
	}
	return &LiveProgress{out: w, termWidth: width, enabled: true}
}

// Consume renders every snapshot received on updates until the channel closes
func (lp *LiveProgress) Consume(updates <-chan interface{}) {
	for msg := range updates {
		switch p := msg.(type) {
		case *progress.ScanProgress:
			lp.Update(p)
		case *progress.RemoveProgress:
			lp.UpdateRemove(p)
		}
	}
}

// Update redraws the status line, at most once per renderInterval.
// Terminal phases are always drawn.
func (lp *LiveProgress) Update(p *progress.ScanProgress) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled || p == nil {
		return
	}

	now := time.Now()
	terminal := p.Phase == progress.PhaseComplete || p.Phase == progress.PhaseCancelled || p.Phase == progress.PhaseError
	if !terminal && now.Sub(lp.lastUpdate) < renderInterval {
		return
	}
	lp.lastUpdate = now
	lp.frame++

	fmt.Fprintf(lp.out, "\r\033[K%s", lp.line(p))
	lp.drawn = true
}

// UpdateRemove redraws the status line for a batch removal
func (lp *LiveProgress) UpdateRemove(p *progress.RemoveProgress) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled || p == nil {
		return
	}

	now := time.Now()
	if p.Phase == progress.PhaseRemoving && now.Sub(lp.lastUpdate) < renderInterval {
		return
	}
	lp.lastUpdate = now

	text := truncate(progress.FormatRemoveProgress(p), lp.termWidth-barWidth-6)
	fmt.Fprintf(lp.out, "\r\033[K%s %s", styles.ProgressBar(p.Removed+p.Errors, p.Total, barWidth), text)
	lp.drawn = true
}

func (lp *LiveProgress) line(p *progress.ScanProgress) string {
	width := lp.termWidth - 2
	text := truncate(progress.FormatScanProgress(p), width-barWidth-4)

	switch p.Phase {
	case progress.PhaseHashing:
		return fmt.Sprintf("%s %s %s", spinner[lp.frame%len(spinner)], styles.ProgressBar(p.Hashed, p.Candidates, barWidth), text)
	case progress.PhaseWalking:
		return fmt.Sprintf("%s %s", spinner[lp.frame%len(spinner)], text)
	case progress.PhaseError:
		return styles.ErrorStyle.Render(text)
	case progress.PhaseCancelled:
		return styles.WarningStyle.Render(text)
	default:
		return styles.SuccessStyle.Render(text)
	}
}

// Finish ends the status line so later output starts on a fresh line
func (lp *LiveProgress) Finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled || !lp.drawn {
		return
	}
	fmt.Fprint(lp.out, "\n")
	lp.drawn = false
}

// SetEnabled enables or disables live progress
func (lp *LiveProgress) SetEnabled(enabled bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.enabled = enabled
}

// Enabled reports whether updates are drawn
func (lp *LiveProgress) Enabled() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.enabled
}

// truncate shortens s to width runes, keeping the start
func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// truncateLeft shortens a path to width runes, keeping its tail
func truncateLeft(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return "..." + string(r[len(r)-(width-3):])
}
