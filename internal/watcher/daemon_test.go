package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestIsDaemonRunning_NotRunning(t *testing.T) {
	tmpDir := t.TempDir()
	pidFile := filepath.Join(tmpDir, "test.pid")

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Errorf("IsDaemonRunning() error = %v, want nil", err)
	}
	if running {
		t.Error("IsDaemonRunning() = true, want false for non-existent PID file")
	}
}

func TestIsDaemonRunning_WithCurrentProcess(t *testing.T) {
	tmpDir := t.TempDir()
	pidFile := filepath.Join(tmpDir, "test.pid")

	// Write current process PID
	pid := os.Getpid()
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Errorf("IsDaemonRunning() error = %v, want nil", err)
	}
	if !running {
		t.Error("IsDaemonRunning() = false, want true for current process")
	}
}

func TestIsDaemonRunning_WithDeadProcess(t *testing.T) {
	tmpDir := t.TempDir()
	pidFile := filepath.Join(tmpDir, "test.pid")

	// Write a PID that (hopefully) doesn't exist
	// Using a very high PID that's unlikely to be in use
	deadPID := 999999
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(deadPID)+"\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Errorf("IsDaemonRunning() error = %v, want nil", err)
	}
	if running {
		t.Error("IsDaemonRunning() = true, want false for dead process")
	}

	// PID file should be removed
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Error("stale PID file was not removed")
	}
}

func TestIsDaemonRunning_InvalidPID(t *testing.T) {
	tmpDir := t.TempDir()
	pidFile := filepath.Join(tmpDir, "test.pid")

	// Write invalid PID
	if err := os.WriteFile(pidFile, []byte("not-a-number\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Errorf("IsDaemonRunning() error = %v, want nil for invalid PID", err)
	}
	if running {
		t.Error("IsDaemonRunning() = true, want false for invalid PID")
	}
}

func TestStopDaemon_NotRunning(t *testing.T) {
	tmpDir := t.TempDir()
	pidFile := filepath.Join(tmpDir, "test.pid")

	err := StopDaemon(pidFile)
	if err == nil {
		t.Error("StopDaemon() expected error for non-existent daemon, got nil")
	}
}

func TestStopDaemon_InvalidPID(t *testing.T) {
	tmpDir := t.TempDir()
	pidFile := filepath.Join(tmpDir, "test.pid")

	// Write invalid PID
	if err := os.WriteFile(pidFile, []byte("invalid\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	err := StopDaemon(pidFile)
	if err == nil {
		t.Error("StopDaemon() expected error for invalid PID, got nil")
	}
}

func TestRunDaemon_RemovesPIDFile(t *testing.T) {
	w, _ := newTestWatcher(t, t.TempDir())

	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.RunDaemon(ctx, pidFile); err != nil {
		t.Fatalf("RunDaemon() error = %v", err)
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Error("PID file was not removed on shutdown")
	}
}
