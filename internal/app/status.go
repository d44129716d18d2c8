package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/termux-fix-shebang/internal/shebang"
	"github.com/blackwell-systems/termux-fix-shebang/internal/store"
	"github.com/blackwell-systems/termux-fix-shebang/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show effective settings, journal and watch daemon state",
	Long: `Display the settings a run would use and the state of the journal and
the watch daemon.

Shows:
  • Target prefix and temp directory
  • Whether rewrites are journaled, and where
  • Number of journaled runs and when the last one happened
  • Watch daemon running status and PID`,
	Example: `  termux-fix-shebang status
  termux-fix-shebang status --prefix /opt/termux`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return fmt.Errorf("failed to get PID file path: %w", err)
	}
	if watchPIDFile != "" {
		pidFile = watchPIDFile
	}

	journalPath, err := getJournalPath(cfg)
	if err != nil {
		return fmt.Errorf("failed to get journal path: %w", err)
	}

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = shebang.DefaultTempDir(cfg.Prefix)
	}

	const label = "%-10s"
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, label+"%s\n", "Prefix:", cfg.Prefix)
	fmt.Fprintf(out, label+"%s\n", "Temp dir:", tempDir)

	if cfg.Journal {
		fmt.Fprintf(out, label+"%s\n", "Journal:", journalDescription(journalPath))
	} else {
		fmt.Fprintf(out, label+"disabled\n", "Journal:")
	}

	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		pid, _ := os.ReadFile(pidFile)
		fmt.Fprintf(out, label+"running (PID %s)\n", "Watch:", strings.TrimSpace(string(pid)))
	} else {
		fmt.Fprintf(out, label+"stopped  (run '%s watch --daemon')\n", "Watch:", RootCmd.Name())
	}

	return nil
}

// journalDescription summarises the journal without creating it.
func journalDescription(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return path + " (empty)"
	}

	desc := fmt.Sprintf("%s (%s", path, humanize.Bytes(uint64(info.Size())))

	st, err := store.New(path)
	if err != nil {
		return desc + ", unreadable)"
	}
	defer st.Close()

	runs, err := st.ListRuns()
	switch {
	case errors.Is(err, store.ErrNotInitialized):
		return desc + ", no runs)"
	case err != nil:
		return desc + ", unreadable)"
	case len(runs) == 0:
		return desc + ", no runs)"
	}
	return fmt.Sprintf("%s, %s runs, last %s)", desc, humanize.Comma(int64(len(runs))), humanize.Time(runs[0].StartedAt))
}
