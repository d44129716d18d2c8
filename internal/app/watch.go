package app

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/termux-fix-shebang/internal/config"
	"github.com/blackwell-systems/termux-fix-shebang/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch [DIR...]",
		Short: "Fix shebangs of files as they appear in directories",
		Long: `Watch directories and fix the shebang of every file that is created,
written, or moved into them. Files already present are fixed when watching
starts. Without arguments <prefix>/bin is watched.

A file is fixed once it has not changed for half a second, so scripts are
not rewritten while an installer is still writing them. Rewrites are
journaled exactly like a normal run.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as background process, logging to ~/.termux-fix-shebang/watch.log
  • Stop: Stop a running daemon`,
		Example: `  # Watch $PREFIX/bin in the foreground (Ctrl+C to stop)
  termux-fix-shebang watch

  # Watch a build output directory
  termux-fix-shebang watch ./out/bin

  # Run as background daemon
  termux-fix-shebang watch --daemon

  # Stop running daemon
  termux-fix-shebang watch --stop`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.termux-fix-shebang/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.termux-fix-shebang/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		return stopWatchDaemon(cmd)
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	dirs, err := watchDirs(cfg, args)
	if err != nil {
		return err
	}

	if watchDaemon {
		return startWatchDaemon(cmd, dirs)
	}

	fixer := newFixer(cmd, cfg)
	if st := attachJournal(fixer, cfg, "watch"); st != nil {
		defer st.Close()
	}

	w, err := watcher.New(fixer, dirs)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchDaemonChild {
		return w.RunDaemon(cmd.Context(), watchPIDFile)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Quiet {
		for _, dir := range dirs {
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (press Ctrl+C to stop)\n", dir)
		}
	}

	return w.Run(ctx)
}

// watchDirs resolves the directories to watch, defaulting to <prefix>/bin.
func watchDirs(cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{filepath.Join(cfg.Prefix, "bin")}
	}

	dirs, err := resolvePaths(args)
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
	}
	return dirs, nil
}

// daemonArgs rebuilds the command line for the daemon child from the flags
// the user set, with directories already resolved.
func daemonArgs(cmd *cobra.Command, dirs []string) []string {
	args := []string{"watch", "--daemon-child"}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "daemon", "daemon-child", "stop":
			return
		}
		args = append(args, "--"+f.Name+"="+f.Value.String())
	})
	return append(append(args, "--"), dirs...)
}

func stopWatchDaemon(cmd *cobra.Command) error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
		return nil
	}

	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Daemon stopped")

	return nil
}

func startWatchDaemon(cmd *cobra.Command, dirs []string) error {
	if err := watcher.StartDaemon(daemonArgs(cmd, dirs), watchPIDFile, watchLogFile); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Watch daemon started\n")
	for _, dir := range dirs {
		fmt.Fprintf(out, "  Watching: %s\n", dir)
	}
	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: %s watch --stop\n", RootCmd.Name())

	return nil
}
