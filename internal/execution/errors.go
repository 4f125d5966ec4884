package execution

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrEmptyCommand = errors.New("empty command")
	ErrToolFailed   = errors.New("external tool failed")
)

// ExternalToolFailure reports an external binary that could not be started
// or that exited with a non-zero status. ExitCode is -1 when the process
// never started or was killed by a signal.
type ExternalToolFailure struct {
	Tool     string
	ExitCode int
	Err      error // Start error, context error, or the *exec.ExitError
}

func (e *ExternalToolFailure) Error() string {
	msg := fmt.Sprintf("An error was encountered while running %s (return code %d), please inspect stdout and stderr to learn more.", e.Tool, e.ExitCode)
	if e.Err != nil && e.ExitCode < 0 {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *ExternalToolFailure) Unwrap() error {
	return e.Err
}

func (e *ExternalToolFailure) Is(target error) bool {
	return target == ErrToolFailed
}

// exited reports whether the process ran to completion with a status.
func (e *ExternalToolFailure) exited() bool {
	return e.ExitCode > 0
}
