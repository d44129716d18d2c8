package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/termux-fix-shebang/internal/shebang"
)

// DefaultDebounce is how long a path must stay quiet before it is fixed.
const DefaultDebounce = 500 * time.Millisecond

// Watcher fixes the shebang of every regular file that appears in its
// directories.
type Watcher struct {
	fixer    *shebang.Fixer
	dirs     []string
	debounce time.Duration

	fsw     *fsnotify.Watcher
	ready   chan string
	pending map[string]*pendingFix // owned by the event loop
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a new Watcher instance.
func New(fixer *shebang.Fixer, dirs []string) (*Watcher, error) {
	if fixer == nil {
		return nil, fmt.Errorf("fixer cannot be nil")
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no directories to watch")
	}
	return &Watcher{
		fixer:    fixer,
		dirs:     dirs,
		debounce: DefaultDebounce,
		ready:    make(chan string),
		pending:  make(map[string]*pendingFix),
		stopCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period. It must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start fixes the files already present in the watched directories, then
// subscribes to their events and begins processing in the background.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.fsw = fsw

	for _, dir := range w.dirs {
		w.fixExisting(dir)
	}

	w.wg.Add(1)
	go w.run()

	return nil
}

// Stop halts the watcher. Fixes that are still being debounced are dropped.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()

	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}

	if w.fsw == nil {
		return nil
	}
	return w.fsw.Close()
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.schedule(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		case path := <-w.ready:
			w.deliver(path)
		case <-w.stopCh:
			return
		}
	}
}

// pendingFix is a debounced fix waiting for its timer.
type pendingFix struct {
	timer *time.Timer
	// dirty is set when an event arrives after the timer already fired; the
	// fix is then postponed by a fresh timer instead of running twice.
	dirty bool
}

// schedule starts or restarts the debounce period for path.
func (w *Watcher) schedule(path string) {
	p, ok := w.pending[path]
	if !ok {
		w.pending[path] = &pendingFix{timer: w.afterDebounce(path)}
		return
	}
	if p.timer.Stop() {
		p.timer = w.afterDebounce(path)
		return
	}
	p.dirty = true
}

// deliver handles a fired timer: the file is fixed unless it changed again
// while the timer was delivering.
func (w *Watcher) deliver(path string) {
	p, ok := w.pending[path]
	delete(w.pending, path)
	if ok && p.dirty {
		w.pending[path] = &pendingFix{timer: w.afterDebounce(path)}
		return
	}
	w.fix(path)
}

func (w *Watcher) afterDebounce(path string) *time.Timer {
	return time.AfterFunc(w.debounce, func() {
		select {
		case w.ready <- path:
		case <-w.stopCh:
		}
	})
}

func (w *Watcher) fixExisting(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("watcher: failed to list %s: %v", dir, err)
		return
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			w.fix(filepath.Join(dir, entry.Name()))
		}
	}
}

// fix runs one file through the fixer. Paths that vanished or are not
// regular files are ignored; editors and installers create many of those.
func (w *Watcher) fix(path string) {
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	if _, err := w.fixer.Fix(path); err != nil {
		log.Printf("watcher: %v", err)
	}
}
