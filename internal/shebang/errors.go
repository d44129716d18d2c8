package shebang

import "fmt"

// OpenError is returned when a target file cannot be opened for reading.
type OpenError struct {
	Path  string
	Cause error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open %s: %v", e.Path, e.Cause)
}
func (e *OpenError) Unwrap() error { return e.Cause }

// ReadError is returned when a target file cannot be read.
type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Cause)
}
func (e *ReadError) Unwrap() error { return e.Cause }

type TempFileError struct {
	Dir   string
	Cause error
}

func (e *TempFileError) Error() string {
	return fmt.Sprintf("failed to create temp file in %s: %v", e.Dir, e.Cause)
}
func (e *TempFileError) Unwrap() error { return e.Cause }

// WriteError covers every step that populates the temp file: write, chmod,
// sync and close.
type WriteError struct {
	Op    string
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to %s temp file %s: %v", e.Op, e.Path, e.Cause)
}
func (e *WriteError) Unwrap() error { return e.Cause }

// RenameError is returned when the temp file cannot replace the original.
// The original file is left untouched.
type RenameError struct {
	Old   string
	New   string
	Cause error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("failed to rename %s to %s: %v", e.Old, e.New, e.Cause)
}
func (e *RenameError) Unwrap() error { return e.Cause }

// RunError summarises a run in which some files could not be processed.
type RunError struct {
	Failed int
	Total  int
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%d of %d files could not be processed", e.Failed, e.Total)
}
