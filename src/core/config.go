package core

import "time"

// TOLERANCE is how far a file's current mtime may drift from its recorded
// mtime before the change detector considers it changed. Filesystems
// commonly truncate mtimes to 1-2s resolution; 100ms comfortably absorbs
// our own writes without spuriously invalidating cross-filesystem copies.
const TOLERANCE = 100 * time.Millisecond

// LogLevel ranks verbosity, lowest to highest.
type LogLevel int

// The recognised log levels, ranked.
const (
	Silent LogLevel = iota
	Quiet
	Normal
	Loud
	Chatty
	Diag
)

// Configuration is the immutable record the script driver passes to
// everything else it constructs.
type Configuration struct {
	// ProjectRoot is the directory globs and file targets are resolved against.
	ProjectRoot string
	// Threads is the worker-pool cap (0 means "use logical CPU count").
	Threads int
	// Want is the initial target list; defaults to ["main"] if empty.
	Want []string
	// FileLog is the path of an optional file log sink; empty disables it.
	FileLog string
	// FileLogLevel is the file sink's level, only consulted if FileLog is set.
	FileLogLevel LogLevel
	// ConLogLevel is the console sink's level.
	ConLogLevel LogLevel
	// Vars holds script-level (name, value) pairs recipes can read via get_var.
	Vars map[string]string
	// FailOnError controls whether the driver re-raises aggregated errors
	// or logs them and returns a non-zero status indicator.
	FailOnError bool
}

// WantOrDefault returns Want, or ["main"] if it's empty.
func (c Configuration) WantOrDefault() []string {
	if len(c.Want) == 0 {
		return []string{"main"}
	}
	return c.Want
}

// ThreadsOrDefault returns Threads, or n if Threads is <= 0.
func (c Configuration) ThreadsOrDefault(n int) int {
	if c.Threads <= 0 {
		return n
	}
	return c.Threads
}
