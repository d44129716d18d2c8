package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/termux-fix-shebang/internal/output"
	"github.com/blackwell-systems/termux-fix-shebang/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [RUN-ID]",
	Short: "List journaled runs and their rewrites",
	Long: `List the runs recorded in the rewrite journal, newest first.

With a run ID (or any unique prefix of one, as shown in the table) the
shebangs rewritten by that run are listed instead. Runs that changed
nothing, dry runs, and runs with --no-journal are not recorded.`,
	Example: `  termux-fix-shebang history
  termux-fix-shebang history 0b6a4c1e`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	st, err := openExistingStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if len(args) == 0 {
		runs, err := st.ListRuns()
		if err != nil && !errors.Is(err, store.ErrNotInitialized) {
			return err
		}
		fmt.Fprint(out, output.RenderRunTable(runs))
		if len(runs) > 0 {
			fmt.Fprintf(out, "\nShow a run with: %s history <run>\n", RootCmd.Name())
		}
		return nil
	}

	run, err := findRun(st, args[0])
	if err != nil {
		return err
	}
	rewrites, err := st.ListRewrites(run.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run %s (%s, prefix %s)\n\n", run.ID, run.Command, run.Prefix)
	fmt.Fprint(out, output.RenderRewriteTable(rewrites))
	return nil
}

// findRun resolves "latest" or a run ID prefix.
func findRun(st *store.Store, ref string) (*store.Run, error) {
	if ref == "latest" {
		return st.LatestRun()
	}
	return st.FindRun(ref)
}
