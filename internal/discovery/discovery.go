// Package discovery locates the input files an external tool is run on.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FastqPattern matches the compressed per-sample read files of a sequence directory.
const FastqPattern = "*.fastq.gz"

// ErrInputNotFound is matched by every NotFoundError.
var ErrInputNotFound = errors.New("no matching input files")

// NotFoundError reports a directory without any file matching a pattern.
type NotFoundError struct {
	Dir     string
	Pattern string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s files found in %s", e.Pattern, e.Dir)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrInputNotFound
}

// FindFiles returns the absolute paths of the regular files in dir matching
// pattern, sorted lexically. Subdirectories are not searched.
func FindFiles(dir, pattern string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absDir)
	}

	matches, err := filepath.Glob(filepath.Join(absDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	files := matches[:0]
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return nil, &NotFoundError{Dir: absDir, Pattern: pattern}
	}

	sort.Strings(files)
	return files, nil
}

// FindFastq returns the *.fastq.gz files in dir.
func FindFastq(dir string) ([]string, error) {
	return FindFiles(dir, FastqPattern)
}
