package dusage

import (
	"sync"
	"time"
)

// Record is a single usage line: a path and its accounted size.
type Record struct {
	// Path is the entry's path exactly as constructed during traversal.
	Path string `json:"path"`
	// UsageKB is the accounted disk usage in kilobytes.
	UsageKB int64 `json:"usage_kb"`
}

// Report summarizes a completed run.
type Report struct {
	// TotalKB is the usage of the root path in kilobytes.
	TotalKB int64 `json:"total_kb"`
	// Entries is the number of accounted entries. Additional hard links
	// to an already-counted file are not entries.
	Entries int64 `json:"entries"`
	// Elapsed is the total traversal time.
	Elapsed time.Duration `json:"elapsed"`
}

// Options configures the traversal.
type Options struct {
	// Path is the file or directory to account. Empty means the current
	// directory.
	Path string
	// All reports individual files and links, not just directories.
	All bool
	// Summarize reports only the root total.
	Summarize bool
	// MaxDepth suppresses records more than this many levels below the
	// root (0 = unlimited). Accounting is unaffected.
	MaxDepth int
	// Output selects the report format (text or json).
	Output string
	// ProgressInterval overrides the progress update interval.
	ProgressInterval time.Duration
	// Debug enables debug output.
	Debug bool
	// Version indicates whether to show version and exit.
	Version bool
	// Init indicates whether to output the shell integration script.
	Init bool
}

// accumulator tracks live counters for the progress reporter. The
// summarize engine also reads its kilobyte total back as the result.
type accumulator struct {
	mu      sync.Mutex
	entries int64
	kb      int64
}

// add records one accounted entry of kb kilobytes. Guarded by a mutex
// since fastwalk workers call it concurrently.
func (a *accumulator) add(kb int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries++
	a.kb += kb
}

// snapshot returns the current entry count and accumulated kilobytes.
func (a *accumulator) snapshot() (entries, kb int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.entries, a.kb
}
