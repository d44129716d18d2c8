package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/termux-fix-shebang/internal/config"
	"github.com/blackwell-systems/termux-fix-shebang/internal/scanner"
)

var (
	configPath    string
	prefixFlag    string
	quietFlag     bool
	dryRunFlag    bool
	noJournalFlag bool
	journalFlag   string
	recursiveFlag bool

	// RootCmd is the root command for termux-fix-shebang
	RootCmd = &cobra.Command{
		Use:   "termux-fix-shebang [flags] FILE...",
		Short: "Replace standard shebangs with their Termux equivalent",
		Long: `termux-fix-shebang rewrites the first line of scripts so that their
interpreter is looked up under the Termux prefix instead of the standard
filesystem locations, which do not exist on Android.

  #!/usr/bin/env bash   becomes   #!/data/data/com.termux/files/usr/bin/env bash

Files without a shebang are left alone, as are scripts whose interpreter
lives under /system or already lives under the prefix. Rewrites are atomic:
the new content is written to a temp file which is renamed over the original.

Every rewrite is recorded in a journal so that 'termux-fix-shebang undo' can
put the old shebangs back.

Settings are read from $XDG_CONFIG_HOME/termux-fix-shebang/config.json when
present; flags take precedence.`,
		Example: `  # Fix a single script
  termux-fix-shebang ./configure

  # Show what would change without writing
  termux-fix-shebang --dry-run bin/*

  # Fix every script under a source tree
  termux-fix-shebang -r ./scripts

  # Keep $PREFIX/bin fixed while installing things
  termux-fix-shebang watch --daemon

  # Undo the last run
  termux-fix-shebang undo latest`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runFix,
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: $XDG_CONFIG_HOME/termux-fix-shebang/config.json)")
	RootCmd.PersistentFlags().StringVar(&prefixFlag, "prefix", "", "installation prefix to point shebangs into (default: "+config.DefaultPrefix+")")
	RootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "do not print info about replaced shebangs")
	RootCmd.PersistentFlags().BoolVarP(&dryRunFlag, "dry-run", "d", false, "print info but do not replace shebangs")
	RootCmd.PersistentFlags().BoolVar(&noJournalFlag, "no-journal", false, "do not record rewrites for undo")
	RootCmd.PersistentFlags().StringVar(&journalFlag, "journal", "", "journal database path (default: ~/.termux-fix-shebang/journal.db)")

	RootCmd.Flags().BoolVarP(&recursiveFlag, "recursive", "r", false, "fix all regular files below directory arguments")

	RootCmd.SetVersionTemplate(versionText())

	// Register subcommands
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(undoCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

func runFix(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	paths, err := resolvePaths(args)
	if err != nil {
		return err
	}

	paths, err = scanner.New(recursiveFlag, cfg.IgnoreFile).Expand(paths)
	if err != nil {
		return err
	}

	fixer := newFixer(cmd, cfg)
	if st := attachJournal(fixer, cfg, "fix"); st != nil {
		defer st.Close()
	}

	return fixer.FixAll(paths)
}
