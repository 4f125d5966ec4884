package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestTemplates_Embedded(t *testing.T) {
	for _, name := range []string{NanoPlot, MultiQC} {
		fsys, err := Templates("", name)
		if err != nil {
			t.Fatalf("Templates(%q) error = %v", name, err)
		}
		if _, err := fs.Stat(fsys, IndexTemplate); err != nil {
			t.Errorf("%s: %s missing: %v", name, IndexTemplate, err)
		}
		if _, err := fs.Stat(fsys, "css/style.css"); err != nil {
			t.Errorf("%s: css/style.css missing: %v", name, err)
		}
	}
}

func TestTemplates_Override(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, NanoPlot), 0o755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(root, NanoPlot, IndexTemplate), []byte("custom"), 0o644)

	fsys, err := Templates(root, NanoPlot)
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	data, err := fs.ReadFile(fsys, IndexTemplate)
	if err != nil || string(data) != "custom" {
		t.Errorf("override index = %q, %v", data, err)
	}

	if _, err := Templates(root, MultiQC); err == nil {
		t.Error("expected error for missing override set")
	}
}
