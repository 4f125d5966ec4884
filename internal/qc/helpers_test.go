package qc

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/seqqc/internal/execution"
	"github.com/me/seqqc/internal/seqdir"
	"github.com/shenwei356/xopen"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// installTools writes fake executables into a temp dir and puts it first
// on PATH. Keys are tool names, values are shell script bodies.
func installTools(t *testing.T, tools map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range tools {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func requireTools(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := exec.LookPath(n); err != nil {
			t.Skipf("%s not available: %v", n, err)
		}
	}
}

// newTestService returns a Service whose scratch dirs live under the
// returned temp root.
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	runner := execution.NewRunner(newTestLogger(), execution.WithOutput(io.Discard, io.Discard))
	svc := NewService(runner, newTestLogger())
	svc.TempRoot = root
	return svc, root
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%s not cleaned up: %d entries left", dir, len(entries))
	}
}

func writeFastq(t *testing.T, path string, n int) {
	t.Helper()
	w, err := xopen.Wopen(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "@read%d\nACGTACGTAC\n+\nIIIIIIIIII\n", i)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// makeSequences writes a sequence directory holding reads reads per entry.
func makeSequences(t *testing.T, entries []seqdir.ManifestEntry, reads int) string {
	t.Helper()
	d, err := seqdir.Create(t.TempDir(), entries, seqdir.Metadata{PhredOffset: 33})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		writeFastq(t, d.FilePath(e), reads)
	}
	return d.Path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}
