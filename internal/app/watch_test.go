package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/termux-fix-shebang/internal/config"
)

func TestWatchCommand(t *testing.T) {
	if watchCmd.Name() != "watch" {
		t.Errorf("expected name to be 'watch', got '%s'", watchCmd.Name())
	}

	if watchCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if watchCmd.Long == "" {
		t.Error("expected Long description to be set")
	}

	if watchCmd.Example == "" {
		t.Error("expected Example to be set")
	}

	if watchCmd.RunE == nil {
		t.Error("expected RunE to be set")
	}
}

func TestWatchCommandFlags(t *testing.T) {
	tests := []struct {
		flagName     string
		shouldHidden bool
	}{
		{"daemon", false},
		{"daemon-child", true},
		{"pid-file", false},
		{"log-file", false},
		{"stop", false},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := watchCmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("expected flag '%s' to be registered", tt.flagName)
			}
			if flag.Hidden != tt.shouldHidden {
				t.Errorf("flag '%s' hidden = %v, want %v", tt.flagName, flag.Hidden, tt.shouldHidden)
			}
		})
	}
}

func TestWatchStop_NotRunning(t *testing.T) {
	setupEnv(t)
	pidFile := filepath.Join(t.TempDir(), "watch.pid")

	stdout, _, err := execute(t, "watch", "--stop", "--pid-file", pidFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Daemon is not running") {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestDaemonArgs(t *testing.T) {
	setupEnv(t)
	pidFile := filepath.Join(t.TempDir(), "watch.pid")

	// Parse flags through a real invocation so they are marked as changed.
	if _, _, err := execute(t, "watch", "--stop", "--quiet", "--pid-file", pidFile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := daemonArgs(watchCmd, []string{"/a", "/b"})
	want := []string{"watch", "--daemon-child", "--pid-file=" + pidFile, "--quiet=true", "--", "/a", "/b"}

	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("daemonArgs() = %q, want %q", got, want)
	}
}

func TestWatchDirs(t *testing.T) {
	prefix := t.TempDir()
	binDir := filepath.Join(prefix, "bin")
	if err := os.Mkdir(binDir, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(prefix, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Prefix = prefix

	dirs, err := watchDirs(cfg, nil)
	if err != nil {
		t.Fatalf("watchDirs() error: %v", err)
	}
	wantBin, _ := filepath.EvalSymlinks(binDir)
	if len(dirs) != 1 || dirs[0] != wantBin {
		t.Errorf("watchDirs() = %v, want [%s]", dirs, wantBin)
	}

	if _, err := watchDirs(cfg, []string{file}); err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("watchDirs(file) error = %v, want not a directory", err)
	}

	if _, err := watchDirs(cfg, []string{filepath.Join(prefix, "missing")}); err == nil {
		t.Error("watchDirs(missing) expected error")
	}
}

func TestStatusOutput(t *testing.T) {
	setupEnv(t)

	stdout, _, err := execute(t, "status", "--prefix", "/opt/prefix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Prefix:   /opt/prefix",
		"Journal:",
		"(empty)",
		"Watch:    stopped",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("status output missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = execute(t, "status", "--no-journal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Journal:  disabled") {
		t.Errorf("status output missing disabled journal:\n%s", stdout)
	}
}
