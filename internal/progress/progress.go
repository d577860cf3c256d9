package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Phase represents the current phase of operation
type Phase string

const (
	PhaseWalking   Phase = "walking"
	PhaseHashing   Phase = "hashing"
	PhaseRemoving  Phase = "removing"
	PhaseComplete  Phase = "complete"
	PhaseCancelled Phase = "cancelled"
	PhaseError     Phase = "error"
)

// ScanProgress is a snapshot of a running scan
type ScanProgress struct {
	Phase      Phase
	Operation  string
	FilesFound int
	Hashed     int
	Candidates int
	TotalSize  int64
	StartTime  time.Time
	Error      error
}

// Percent returns hashing progress in [0, 100], or 0 outside the hashing phase
func (p *ScanProgress) Percent() int {
	if p == nil || p.Candidates == 0 {
		return 0
	}
	pct := p.Hashed * 100 / p.Candidates
	if pct > 100 {
		pct = 100
	}
	return pct
}

// RemoveProgress is a snapshot of a batch removal
type RemoveProgress struct {
	Phase      Phase
	Removed    int
	Total      int
	FreedBytes int64
	Errors     int
	StartTime  time.Time
	Error      error
}

// Tracker turns scanner callbacks into ScanProgress snapshots and fans
// them out to subscribers. Its callbacks are safe to hand to the scanner.
type Tracker struct {
	mu        sync.RWMutex
	current   ScanProgress
	removal   *RemoveProgress
	listeners []chan interface{}
}

// NewTracker creates a tracker for the named operation
func NewTracker(operation string) *Tracker {
	return &Tracker{
		current: ScanProgress{
			Phase:     PhaseWalking,
			Operation: operation,
			StartTime: time.Now(),
		},
	}
}

// Subscribe returns a channel that receives progress updates
func (t *Tracker) Subscribe() <-chan interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan interface{}, 10)
	t.listeners = append(t.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (t *Tracker) Unsubscribe(ch <-chan interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, listener := range t.listeners {
		if listener == ch {
			close(listener)
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

// OnDuplicates adapts a duplicate-scan progress call. total is 0 while
// walking and the candidate count while hashing.
func (t *Tracker) OnDuplicates(current, total int) {
	t.update(func(p *ScanProgress) {
		if total == 0 {
			p.Phase = PhaseWalking
			p.FilesFound = current
			return
		}
		p.Phase = PhaseHashing
		p.Candidates = total
		p.Hashed = current
	})
}

// OnCount adapts a file-count progress call
func (t *Tracker) OnCount(count int) {
	t.update(func(p *ScanProgress) {
		p.Phase = PhaseWalking
		p.FilesFound = count
	})
}

// Finish moves the tracker to its terminal phase
func (t *Tracker) Finish(cancelled bool, err error) {
	t.update(func(p *ScanProgress) {
		switch {
		case err != nil:
			p.Phase = PhaseError
			p.Error = err
		case cancelled:
			p.Phase = PhaseCancelled
		default:
			p.Phase = PhaseComplete
		}
	})
}

// SetTotalSize records the byte total once it is known
func (t *Tracker) SetTotalSize(size int64) {
	t.update(func(p *ScanProgress) { p.TotalSize = size })
}

func (t *Tracker) update(fn func(*ScanProgress)) {
	t.mu.Lock()
	fn(&t.current)
	snapshot := t.current
	listeners := make([]chan interface{}, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	notify(listeners, &snapshot)
}

// UpdateRemoveProgress records removal progress and notifies listeners
func (t *Tracker) UpdateRemoveProgress(update *RemoveProgress) {
	t.mu.Lock()
	t.removal = update
	listeners := make([]chan interface{}, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	notify(listeners, update)
}

func notify(listeners []chan interface{}, update interface{}) {
	for _, listener := range listeners {
		select {
		case listener <- update:
		default:
			// Skip if channel is full
		}
	}
}

// Snapshot returns a copy of the current scan progress
func (t *Tracker) Snapshot() ScanProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// GetRemoveProgress returns the last removal update
func (t *Tracker) GetRemoveProgress() *RemoveProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.removal
}

// FormatScanProgress returns a human-readable scan progress string
func FormatScanProgress(p *ScanProgress) string {
	if p == nil {
		return "Initializing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseWalking:
		return fmt.Sprintf("Walking... %s files found [%s]",
			humanize.Comma(int64(p.FilesFound)),
			FormatDuration(elapsed))
	case PhaseHashing:
		return fmt.Sprintf("Hashing... %d/%d candidates (%d%%) [%s]",
			p.Hashed,
			p.Candidates,
			p.Percent(),
			FormatDuration(elapsed))
	case PhaseComplete:
		if p.TotalSize > 0 {
			return fmt.Sprintf("Scan complete: %s files (%s) in %s",
				humanize.Comma(int64(p.FilesFound)),
				humanize.IBytes(uint64(p.TotalSize)),
				FormatDuration(elapsed))
		}
		return fmt.Sprintf("Scan complete: %s files in %s",
			humanize.Comma(int64(p.FilesFound)),
			FormatDuration(elapsed))
	case PhaseCancelled:
		return fmt.Sprintf("Scan cancelled after %s, partial results follow", FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Scan error: %v", p.Error)
	default:
		return "Scanning..."
	}
}

// FormatRemoveProgress returns a human-readable removal progress string
func FormatRemoveProgress(p *RemoveProgress) string {
	if p == nil {
		return "Preparing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseRemoving:
		percentage := 0
		if p.Total > 0 {
			percentage = (p.Removed * 100) / p.Total
		}

		eta := ""
		if p.Removed > 0 && p.Total > p.Removed {
			avgTime := elapsed / time.Duration(p.Removed)
			remaining := time.Duration(p.Total-p.Removed) * avgTime
			eta = fmt.Sprintf(" ETA: %s", FormatDuration(remaining))
		}

		return fmt.Sprintf("Removing... %d/%d files (%d%%) - %s freed%s",
			p.Removed,
			p.Total,
			percentage,
			humanize.IBytes(uint64(p.FreedBytes)),
			eta)
	case PhaseComplete:
		return fmt.Sprintf("Removal complete: %d files deleted (%s) in %s",
			p.Removed,
			humanize.IBytes(uint64(p.FreedBytes)),
			FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Removal error: %v", p.Error)
	default:
		return "Preparing removal..."
	}
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
