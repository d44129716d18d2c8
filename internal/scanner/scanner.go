// Package scanner expands command-line arguments into the files to check.
package scanner

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Scanner expands directory arguments when recursive mode is enabled.
type Scanner struct {
	recursive  bool
	ignoreFile string
}

// New creates a new Scanner. ignoreFile is the name of the gitignore-style
// file looked up in each walked root; empty disables ignore patterns.
func New(recursive bool, ignoreFile string) *Scanner {
	return &Scanner{recursive: recursive, ignoreFile: ignoreFile}
}

// Expand returns the files to process, in argument order. Without recursive
// mode every argument is passed through unchanged. In recursive mode
// directories are replaced by the regular files below them, sorted by
// path; symlinks and ignored paths are skipped.
func (s *Scanner) Expand(paths []string) ([]string, error) {
	if !s.recursive {
		return paths, nil
	}

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		found, err := s.walk(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func (s *Scanner) walk(root string) ([]string, error) {
	matcher, err := s.loadMatcher(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == s.ignoreFile {
			return nil
		}
		if matcher != nil && matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// loadMatcher parses {root}/{ignoreFile}. It returns nil when there is
// nothing to ignore.
func (s *Scanner) loadMatcher(root string) (gitignore.Matcher, error) {
	if s.ignoreFile == "" {
		return nil, nil
	}

	path := filepath.Join(root, s.ignoreFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ignore file %s: %w", path, err)
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")

		// Skip blank lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}

	if len(patterns) == 0 {
		return nil, nil
	}
	return gitignore.NewMatcher(patterns), nil
}
