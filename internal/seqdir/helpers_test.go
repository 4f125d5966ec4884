package seqdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shenwei356/xopen"
)

// writeFastq writes n four-line records to path, gzip-compressed when the
// name ends in .gz.
func writeFastq(t *testing.T, path string, n int) {
	t.Helper()
	w, err := xopen.Wopen(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "@read%d\nACGTACGT\n+\nIIIIIIII\n", i)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// makeDirectory lays out a sequence directory with one file per entry.
func makeDirectory(t *testing.T, entries []ManifestEntry) string {
	t.Helper()
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("sample-id,filename,direction\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s,%s,%s\n", e.SampleID, e.Filename, e.Direction)
		writeFastq(t, filepath.Join(dir, e.Filename), 2)
	}
	writeFile(t, filepath.Join(dir, ManifestFile), b.String())
	writeFile(t, filepath.Join(dir, MetadataFile), "phred-offset: 33\n")
	return dir
}
