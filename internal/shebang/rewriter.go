package shebang

import (
	"io"
	"os"
	"path/filepath"
)

// DefaultTempDir returns $TMPDIR when set, otherwise <prefix>/tmp.
func DefaultTempDir(prefix string) string {
	if dir := os.Getenv("TMPDIR"); dir != "" {
		return dir
	}
	return filepath.Join(prefix, "tmp")
}

// Rewriter replaces the first line of a file via temp file + rename.
type Rewriter struct {
	Prefix  string
	TempDir string
}

// NewRewriter creates a Rewriter for prefix. An empty tempDir selects
// DefaultTempDir, resolved once here for the lifetime of the Rewriter.
func NewRewriter(prefix, tempDir string) *Rewriter {
	if tempDir == "" {
		tempDir = DefaultTempDir(prefix)
	}
	return &Rewriter{Prefix: prefix, TempDir: tempDir}
}

// Rewrite replaces the first line of path with #!<prefix>/bin/<name>,
// keeping every byte from remainderOffset onward.
func (w *Rewriter) Rewrite(path string, remainderOffset int64, name string) error {
	return w.ReplaceFirstLine(path, remainderOffset, "#!"+w.Prefix+"/bin/"+name)
}

// ReplaceFirstLine writes line followed by the bytes of path starting at
// remainderOffset into a temp file, then renames it over path. A remainder of
// one byte or less is replaced by a single newline so the result always ends
// with a terminated line.
//
// The original is never written to. On any error it is left untouched and
// the temp file is removed.
func (w *Rewriter) ReplaceFirstLine(path string, remainderOffset int64, line string) error {
	in, err := os.Open(path)
	if err != nil {
		return &OpenError{Path: path, Cause: err}
	}
	defer func() {
		if in != nil {
			_ = in.Close()
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return &ReadError{Path: path, Cause: err}
	}

	tmp, err := os.CreateTemp(w.TempDir, filepath.Base(path)+".*")
	if err != nil {
		return &TempFileError{Dir: w.TempDir, Cause: err}
	}
	tmpPath := tmp.Name()
	committed := false

	defer func() {
		if tmp != nil {
			_ = tmp.Close()
		}
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := io.WriteString(tmp, line); err != nil {
		return &WriteError{Op: "write", Path: tmpPath, Cause: err}
	}

	if info.Size()-remainderOffset > 1 {
		if _, err := in.Seek(remainderOffset, io.SeekStart); err != nil {
			return &ReadError{Path: path, Cause: err}
		}
		if _, err := io.Copy(tmp, in); err != nil {
			return &WriteError{Op: "write", Path: tmpPath, Cause: err}
		}
	} else if _, err := io.WriteString(tmp, "\n"); err != nil {
		return &WriteError{Op: "write", Path: tmpPath, Cause: err}
	}

	// CreateTemp uses 0600; keep the script's own mode (usually executable).
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return &WriteError{Op: "chmod", Path: tmpPath, Cause: err}
	}

	if err := syncFile(tmp); err != nil {
		return &WriteError{Op: "sync", Path: tmpPath, Cause: err}
	}

	err = tmp.Close()
	tmp = nil
	if err != nil {
		return &WriteError{Op: "close", Path: tmpPath, Cause: err}
	}

	_ = in.Close()
	in = nil

	if err := os.Rename(tmpPath, path); err != nil {
		return &RenameError{Old: tmpPath, New: path, Cause: err}
	}
	committed = true

	return nil
}
