// Package output provides terminal output utilities for termux-fix-shebang.
//
// This package renders the rewrite journal: one table listing runs and one
// listing the shebangs rewritten by a run. Colors are only emitted on a TTY
// and never when NO_COLOR is set.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/termux-fix-shebang/internal/store"
)

// ANSI color codes for old/new shebang display
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
)

// shortIDLen is how much of a run ID is shown; undo accepts any unique prefix.
const shortIDLen = 8

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(color, text string) string {
	if !IsColorEnabled() {
		return text
	}
	return color + text + colorReset
}

// RenderRunTable renders the journal runs, newest first as returned by the store.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No rewrites recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-10s %-16s %-8s %-6s %s\n",
		"Run", "When", "Command", "Files", "Prefix"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-10s %-16s %-8s %-6d %s\n",
			ShortID(run.ID),
			formatRelativeTime(run.StartedAt),
			run.Command,
			run.RewriteCount,
			run.Prefix))
	}

	return sb.String()
}

// RenderRewriteTable renders the rewrites of a single run.
func RenderRewriteTable(rewrites []*store.Rewrite) string {
	if len(rewrites) == 0 {
		return "No rewrites in this run.\n"
	}

	var sb strings.Builder

	for _, rw := range rewrites {
		sb.WriteString(fmt.Sprintf("%s %s\n",
			rw.Path,
			colorize(colorGray, "("+formatRelativeTime(rw.RewrittenAt)+")")))
		sb.WriteString(fmt.Sprintf("  - %s\n", colorize(colorRed, truncate(rw.OldLine, 76))))
		sb.WriteString(fmt.Sprintf("  + %s\n", colorize(colorGreen, truncate(rw.NewLine, 76))))
	}

	return sb.String()
}

// ShortID returns the displayed prefix of a run ID.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
