package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/termux-fix-shebang/internal/shebang"
)

// Version is set at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "0.5"

const copyright = "Copyright (C) 2024 Termux"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and license information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionText())
	},
}

func versionText() string {
	name := shebang.ProgramName
	return fmt.Sprintf("%s %s\n"+
		"%s\n"+
		"%s comes with ABSOLUTELY NO WARRANTY.\n"+
		"You may redistribute copies of %s\n"+
		"under the terms of the GNU General Public License.\n"+
		"For more information about these matters, see the file named COPYING.\n",
		name, Version, copyright, name, name)
}
