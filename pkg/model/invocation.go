package model

import (
	"strings"
	"time"
)

// Invocation is the audit record of one external command run.
type Invocation struct {
	ID         string     `json:"id"`
	Action     string     `json:"action,omitempty"`
	Argv       [][]string `json:"argv"`
	OutputPath string     `json:"output_path,omitempty"` // Sink file for piped runs
	ExitCode   int        `json:"exit_code"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

// Piped reports whether the invocation was a multi-stage pipeline.
func (inv *Invocation) Piped() bool {
	return len(inv.Argv) > 1
}

// Succeeded reports whether every stage exited cleanly.
func (inv *Invocation) Succeeded() bool {
	return inv.ExitCode == 0 && inv.Error == ""
}

// Duration returns the wall time of the invocation.
func (inv *Invocation) Duration() time.Duration {
	if inv.FinishedAt.IsZero() {
		return 0
	}
	return inv.FinishedAt.Sub(inv.StartedAt)
}

// CommandLine renders the invocation the way it was logged before running.
func (inv *Invocation) CommandLine() string {
	parts := make([]string, len(inv.Argv))
	for i, argv := range inv.Argv {
		parts[i] = strings.Join(argv, " ")
	}
	line := strings.Join(parts, " | ")
	if inv.OutputPath != "" {
		line += " > " + inv.OutputPath
	}
	return line
}
