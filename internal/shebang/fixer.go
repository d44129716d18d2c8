package shebang

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ProgramName prefixes every log and error line.
const ProgramName = "termux-fix-shebang"

// Options is the run-scoped configuration of a Fixer. It is not modified
// once the Fixer is built.
type Options struct {
	// Prefix is the target installation prefix, without a trailing slash.
	Prefix string

	// TempDir overrides DefaultTempDir when non-empty.
	TempDir string

	Quiet  bool
	DryRun bool
}

// Recorder receives every shebang that was actually rewritten.
type Recorder interface {
	RecordRewrite(path, oldLine, newLine string) error
}

// Fixer classifies files, logs the decision and rewrites when needed.
type Fixer struct {
	opts       Options
	classifier *Classifier
	rewriter   *Rewriter
	recorder   Recorder
	out        io.Writer
	errOut     io.Writer
}

// NewFixer creates a Fixer writing informational lines to stdout and
// diagnostics to stderr.
func NewFixer(opts Options) *Fixer {
	return &Fixer{
		opts:       opts,
		classifier: NewClassifier(opts.Prefix),
		rewriter:   NewRewriter(opts.Prefix, opts.TempDir),
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
}

// SetOutput redirects informational and diagnostic output (useful for testing).
func (f *Fixer) SetOutput(out, errOut io.Writer) {
	f.out = out
	f.errOut = errOut
}

// SetRecorder attaches a journal. A nil Recorder disables recording.
func (f *Fixer) SetRecorder(r Recorder) {
	f.recorder = r
}

// Options returns the configuration the Fixer was built with.
func (f *Fixer) Options() Options {
	return f.opts
}

// Rewriter returns the rewriter used for this run.
func (f *Fixer) Rewriter() *Rewriter {
	return f.rewriter
}

// Fix processes a single file. At most one informational line is written
// unless Quiet is set. Under DryRun the file is never written.
func (f *Fixer) Fix(path string) (Result, error) {
	res, err := f.classifier.Classify(path)
	if err != nil {
		return res, err
	}

	switch res.Kind {
	case SystemProtected:
		f.infof(path, "%s used as interpreter, will not change shebang", displayLine(res.Interpreter))
	case AlreadyCorrect:
		f.infof(path, "already has a correct shebang")
	case NeedsRewrite:
		newLine := res.NewLine(f.opts.Prefix)
		f.infof(path, "rewriting %s to %s", displayLine(res.Line), displayLine(newLine))
		if f.opts.DryRun {
			return res, nil
		}
		if err := f.rewriter.Rewrite(path, res.RemainderOffset, res.Name); err != nil {
			return res, err
		}
		if f.recorder != nil {
			if err := f.recorder.RecordRewrite(path, res.Line, newLine); err != nil {
				f.Warnf("journal: %v", err)
			}
		}
	}

	return res, nil
}

// FixAll processes every path in order. A failing file is reported on the
// diagnostic writer and does not stop the run. The returned *RunError counts
// the failures.
func (f *Fixer) FixAll(paths []string) error {
	failed := 0
	for _, path := range paths {
		if _, err := f.Fix(path); err != nil {
			fmt.Fprintf(f.errOut, "%s: %v\n", ProgramName, err)
			failed++
		}
	}
	if failed > 0 {
		return &RunError{Failed: failed, Total: len(paths)}
	}
	return nil
}

// Infof writes an informational line for path unless Quiet is set.
func (f *Fixer) Infof(path, format string, args ...interface{}) {
	f.infof(path, format, args...)
}

// Warnf writes a diagnostic line. Warnings are never suppressed by Quiet.
func (f *Fixer) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(f.errOut, "%s: warning: %s\n", ProgramName, fmt.Sprintf(format, args...))
}

// displayLine drops the carriage return of a CRLF line so log output is not
// garbled. The file and the journal keep the exact bytes.
func displayLine(line string) string {
	return strings.TrimSuffix(line, "\r")
}

func (f *Fixer) infof(path, format string, args ...interface{}) {
	if f.opts.Quiet {
		return
	}
	fmt.Fprintf(f.out, "%s: %s: %s\n", ProgramName, path, fmt.Sprintf(format, args...))
}
