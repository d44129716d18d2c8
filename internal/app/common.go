package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/termux-fix-shebang/internal/config"
	"github.com/blackwell-systems/termux-fix-shebang/internal/shebang"
	"github.com/blackwell-systems/termux-fix-shebang/internal/store"
)

// dataDirName holds the journal and the watch daemon's PID and log files.
const dataDirName = ".termux-fix-shebang"

// ResolveError reports a command-line path that could not be resolved.
// It aborts the run before any file is touched.
type ResolveError struct {
	Arg   string
	Cause error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.Arg, e.Cause)
}

func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// resolvePaths turns every argument into an absolute path with symlinks
// resolved. The first failure is returned.
func resolvePaths(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, &ResolveError{Arg: arg, Cause: err}
		}
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, &ResolveError{Arg: arg, Cause: err}
		}
		paths = append(paths, resolved)
	}
	return paths, nil
}

// loadSettings loads the config file and applies the flags the user set.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		dir, dirErr := config.Dir()
		if dirErr != nil {
			cfg = config.Default()
		} else {
			cfg, err = config.Load(dir)
		}
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("prefix") {
		cfg.Prefix = prefixFlag
	}
	if flags.Changed("quiet") {
		cfg.Quiet = quietFlag
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = dryRunFlag
	}
	if flags.Changed("no-journal") {
		cfg.Journal = !noJournalFlag
	}
	if flags.Changed("journal") {
		cfg.JournalPath = journalFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newFixer builds the Fixer for cfg, writing to the command's streams.
func newFixer(cmd *cobra.Command, cfg *config.Config) *shebang.Fixer {
	fixer := shebang.NewFixer(shebang.Options{
		Prefix:  cfg.Prefix,
		TempDir: cfg.TempDir,
		Quiet:   cfg.Quiet,
		DryRun:  cfg.DryRun,
	})
	fixer.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return fixer
}

// attachJournal opens the journal and makes fixer record into it. It returns
// nil when journaling is off or dry-run is set. A journal that cannot be
// opened is a warning; the run goes ahead unrecorded.
func attachJournal(fixer *shebang.Fixer, cfg *config.Config, command string) *store.Store {
	if !cfg.Journal || cfg.DryRun {
		return nil
	}

	st, err := openStore(cfg)
	if err != nil {
		fixer.Warnf("journal disabled: %v", err)
		return nil
	}

	fixer.SetRecorder(store.NewJournal(st, cfg.Prefix, command))
	return st
}

// openStore opens the journal database and makes sure its schema exists.
func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := getJournalPath(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.New(path)
	if err != nil {
		return nil, err
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return st, nil
}

// openExistingStore opens the journal for reading commands. The schema is
// not created, so a journal that was never written to reports
// store.ErrNotInitialized.
func openExistingStore(cfg *config.Config) (*store.Store, error) {
	path, err := getJournalPath(cfg)
	if err != nil {
		return nil, err
	}
	return store.New(path)
}

// getJournalPath returns the journal path from the config, or the default
func getJournalPath(cfg *config.Config) (string, error) {
	if cfg.JournalPath != "" {
		return cfg.JournalPath, nil
	}

	dir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.db"), nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	dir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	dir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}

func getDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, dataDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}
