package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/blackwell-systems/termux-fix-shebang/internal/app"
	"github.com/blackwell-systems/termux-fix-shebang/internal/shebang"
)

func main() {
	if err := app.Execute(); err != nil {
		// Per-file failures were already reported as they happened.
		var runErr *shebang.RunError
		if !errors.As(err, &runErr) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", shebang.ProgramName, err)
		}
		os.Exit(1)
	}
}
