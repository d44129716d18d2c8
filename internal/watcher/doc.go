// Package watcher keeps shebangs fixed in directories that are still being
// written to, such as <prefix>/bin while packages are installed.
//
// The Watcher subscribes to filesystem events with fsnotify. Files that are
// created, written, or renamed into a watched directory are debounced per
// path and then run through a shebang.Fixer, so the same classification,
// logging and journal apply as for a one-shot run. The rename performed by a
// rewrite produces one more event for the file, which then classifies as
// already correct.
//
// Key features:
//   - Fixes files already present when watching starts
//   - Per-path debounce, so a file is fixed once its writer goes quiet
//   - All fixes serialised through a single goroutine
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
//
// Example usage:
//
//	fixer := shebang.NewFixer(shebang.Options{Prefix: prefix})
//
//	w, err := watcher.New(fixer, []string{prefix + "/bin"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package watcher
