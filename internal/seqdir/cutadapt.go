package seqdir

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/me/seqqc/internal/discovery"
	"github.com/shenwei356/xopen"
)

// Markers every cutadapt report carries.
const (
	cutadaptHeader  = "This is cutadapt"
	cutadaptSummary = "=== Summary ==="
)

// ValidationMode selects how malformed cutadapt logs are treated.
type ValidationMode int

const (
	// Warn reports problems as warnings and accepts the log.
	Warn ValidationMode = iota
	// Strict rejects the log with an *InvalidLogError.
	Strict
)

// ErrInvalidLog is matched by every InvalidLogError.
var ErrInvalidLog = errors.New("invalid cutadapt log")

// InvalidLogError lists what is wrong with a cutadapt log.
type InvalidLogError struct {
	Path     string
	Problems []string
}

func (e *InvalidLogError) Error() string {
	return fmt.Sprintf("invalid cutadapt log %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

func (e *InvalidLogError) Is(target error) bool {
	return target == ErrInvalidLog
}

// LogCheck is the outcome of validating one log file.
type LogCheck struct {
	Path     string
	Warnings []string
}

// ValidateCutadaptLog checks that the log at path starts with the cutadapt
// banner and contains a summary section. Compressed logs are read
// transparently.
func ValidateCutadaptLog(path string, mode ValidationMode) ([]string, error) {
	content, err := readAll(path)
	if err != nil {
		return nil, err
	}

	var problems []string
	if !strings.HasPrefix(content, cutadaptHeader) {
		problems = append(problems, fmt.Sprintf("the first line does not start with %q", cutadaptHeader))
	} else if !strings.Contains(content, cutadaptSummary) {
		problems = append(problems, fmt.Sprintf("%q is not present in the file", cutadaptSummary))
	}

	if len(problems) > 0 && mode == Strict {
		return nil, &InvalidLogError{Path: path, Problems: problems}
	}
	return problems, nil
}

// CheckCutadaptLogs validates every *.log file in dir. In Strict mode the
// first invalid log aborts the check.
func CheckCutadaptLogs(dir string, mode ValidationMode) ([]LogCheck, error) {
	files, err := discovery.FindFiles(dir, "*.log")
	if err != nil {
		return nil, err
	}

	checks := make([]LogCheck, 0, len(files))
	for _, f := range files {
		warnings, err := ValidateCutadaptLog(f, mode)
		if err != nil {
			return checks, err
		}
		checks = append(checks, LogCheck{Path: f, Warnings: warnings})
	}
	return checks, nil
}

func readAll(path string) (string, error) {
	r, err := xopen.Ropen(path)
	if errors.Is(err, xopen.ErrNoContent) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
