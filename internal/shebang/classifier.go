// Package shebang detects and rewrites the interpreter line of executable
// scripts so that it points into an alternate installation prefix.
//
// A file is processed in two steps:
//   - The Classifier reads only the first line and decides whether the file
//     has no shebang, a protected system interpreter, an interpreter already
//     under the prefix, or one that must be rewritten.
//   - The Rewriter builds the new file in a unique temp file and renames it
//     over the original, so readers only ever see the old or the new content.
//
// The Fixer ties both together at the per-file boundary and owns logging.
package shebang

import (
	"bufio"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"
)

// MaxLineLength bounds the first-line read. It matches the historical Linux
// BINPRM_BUF_SIZE; longer lines are truncated before matching.
const MaxLineLength = 128

// protectedPrefix marks Android system interpreters, which are never rewritten.
const protectedPrefix = "/system"

// shebangPattern captures the old prefix (everything up to the last "/bin/")
// and the interpreter name. Only a single optional space is accepted after
// "#!"; the prefix may be relative but must not start with a blank, so tabs
// and runs of spaces do not match.
var shebangPattern = regexp.MustCompile(`^#! ?((?:[^ \t].*)?)/bin/(.*)$`)

// Kind is the classification of a file's first line.
type Kind int

const (
	NotAShebang Kind = iota
	SystemProtected
	AlreadyCorrect
	NeedsRewrite
)

func (k Kind) String() string {
	switch k {
	case NotAShebang:
		return "not-a-shebang"
	case SystemProtected:
		return "system-protected"
	case AlreadyCorrect:
		return "already-correct"
	case NeedsRewrite:
		return "needs-rewrite"
	default:
		return "unknown"
	}
}

// Result describes the first line of a file.
type Result struct {
	Kind Kind

	// Line is the first line as read, without its newline.
	Line string

	// Interpreter is the text from the old prefix to the end of the line,
	// e.g. "/usr/bin/env bash".
	Interpreter string

	// OldPrefix is everything before the last "/bin/" (e.g. "/usr").
	OldPrefix string

	// Name is everything after the last "/bin/" (e.g. "env bash").
	Name string

	// RemainderOffset is where the rest of the file starts. The remainder
	// begins with the newline that terminated Line.
	RemainderOffset int64
}

// NewLine returns the replacement shebang for prefix, without a newline.
func (r Result) NewLine(prefix string) string {
	return "#!" + prefix + "/bin/" + r.Name
}

// Classifier matches first lines against the shebang pattern for one target prefix.
type Classifier struct {
	prefix string
}

// NewClassifier creates a Classifier for the given installation prefix.
func NewClassifier(prefix string) *Classifier {
	return &Classifier{prefix: prefix}
}

// Classify reads the first line of path and classifies it.
// A file without a shebang is not an error.
func (c *Classifier) Classify(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, &OpenError{Path: path, Cause: err}
	}
	defer f.Close()

	line, err := ReadFirstLine(f)
	if err != nil {
		return Result{}, &ReadError{Path: path, Cause: err}
	}

	return c.ClassifyLine(line), nil
}

// ClassifyLine classifies a first line that has already been read.
func (c *Classifier) ClassifyLine(line string) Result {
	m := shebangPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return Result{Kind: NotAShebang, Line: line, RemainderOffset: int64(len(line))}
	}

	res := Result{
		Line:            line,
		Interpreter:     line[m[2]:],
		OldPrefix:       line[m[2]:m[3]],
		Name:            line[m[4]:m[5]],
		RemainderOffset: int64(len(line)),
	}

	switch {
	case strings.HasPrefix(res.Interpreter, protectedPrefix):
		res.Kind = SystemProtected
	case strings.HasPrefix(res.Interpreter, c.prefix+"/bin/"):
		res.Kind = AlreadyCorrect
	default:
		res.Kind = NeedsRewrite
	}
	return res
}

// ReadFirstLine returns the bytes before the first newline, reading at most
// MaxLineLength bytes. Empty input yields an empty line.
func ReadFirstLine(r io.Reader) (string, error) {
	br := bufio.NewReaderSize(r, MaxLineLength)

	line, err := br.ReadSlice('\n')
	switch {
	case err == nil:
		line = line[:len(line)-1]
	case errors.Is(err, bufio.ErrBufferFull), errors.Is(err, io.EOF):
		// truncated or unterminated line, use what was read
	default:
		return "", err
	}
	return string(line), nil
}
