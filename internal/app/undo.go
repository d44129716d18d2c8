package app

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/termux-fix-shebang/internal/output"
	"github.com/blackwell-systems/termux-fix-shebang/internal/shebang"
	"github.com/blackwell-systems/termux-fix-shebang/internal/store"
)

var undoCmd = &cobra.Command{
	Use:   "undo [RUN-ID | latest]",
	Short: "Restore the shebangs rewritten by a run",
	Long: `Put back the original first line of every file rewritten by a run.

A file is only restored while its shebang is still the one the run wrote;
files edited since then are skipped with a warning. Restores are atomic,
like rewrites. Once every file of the run is restored the run is removed
from the journal; otherwise the restored files are removed from it and
undo can be repeated.

Arguments:
  RUN-ID  A run ID or unique prefix, as shown by 'history'
  latest  The most recent run (default)`,
	Example: `  termux-fix-shebang undo
  termux-fix-shebang undo 0b6a4c1e
  termux-fix-shebang undo latest --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUndo,
}

func runUndo(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	st, err := openExistingStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer st.Close()

	ref := "latest"
	if len(args) > 0 {
		ref = args[0]
	}
	run, err := findRun(st, ref)
	if err != nil {
		return err
	}

	rewrites, err := st.ListRewrites(run.ID)
	if err != nil {
		return err
	}

	fixer := newFixer(cmd, cfg)
	if !cfg.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Undoing run %s (%d files)\n", output.ShortID(run.ID), len(rewrites))
	}

	restored, skipped, failed := 0, 0, 0
	for _, rw := range rewrites {
		ok, err := undoRewrite(fixer, rw, cfg.DryRun)
		switch {
		case err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", shebang.ProgramName, err)
			failed++
		case !ok:
			fixer.Warnf("%s: shebang changed since the rewrite, not restoring", rw.Path)
			skipped++
		default:
			restored++
			if !cfg.DryRun {
				if err := st.DeleteRewrite(rw.ID); err != nil {
					fixer.Warnf("journal: %v", err)
				}
			}
		}
	}

	if !cfg.DryRun && restored == len(rewrites) {
		if err := st.DeleteRun(run.ID); err != nil {
			fixer.Warnf("journal: %v", err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%d restored, %d skipped, %d failed\n", restored, skipped, failed)
	}

	if failed > 0 {
		return &shebang.RunError{Failed: failed, Total: len(rewrites)}
	}
	return nil
}

// undoRewrite restores rw.OldLine if the file still starts with rw.NewLine.
// It reports false when the file was changed since the rewrite.
func undoRewrite(fixer *shebang.Fixer, rw *store.Rewrite, dryRun bool) (bool, error) {
	current, err := startsWith(rw.Path, rw.NewLine)
	if err != nil || !current {
		return false, err
	}

	fixer.Infof(rw.Path, "restoring %s", rw.OldLine)
	if dryRun {
		return true, nil
	}

	// Only the journaled bytes are replaced, so the part of a truncated
	// first line that followed them is kept.
	if err := fixer.Rewriter().ReplaceFirstLine(rw.Path, int64(len(rw.NewLine)), rw.OldLine); err != nil {
		return false, err
	}
	return true, nil
}

func startsWith(path, prefix string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &shebang.OpenError{Path: path, Cause: err}
	}
	defer f.Close()

	buf := make([]byte, len(prefix))
	if _, err := io.ReadFull(f, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, &shebang.ReadError{Path: path, Cause: err}
	}
	return bytes.Equal(buf, []byte(prefix)), nil
}
