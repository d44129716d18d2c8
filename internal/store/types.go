package store

import "time"

// timeLayout is fixed-width so that lexical order equals time order.
// Timestamps are stored as TEXT to keep the driver from converting them.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one invocation that rewrote at least one file.
type Run struct {
	ID           string
	StartedAt    time.Time
	Prefix       string
	Command      string // "fix" or "watch"
	RewriteCount int
}

// Rewrite records a single shebang replacement.
type Rewrite struct {
	ID          int64
	RunID       string
	Path        string
	OldLine     string
	NewLine     string
	RewrittenAt time.Time
}
