// Package assets holds the template directories copied into every
// visualization.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Template set names.
const (
	NanoPlot = "nanoplot"
	MultiQC  = "multiqc"
)

// IndexTemplate is the landing page rendered in every template set.
const IndexTemplate = "index.html"

//go:embed nanoplot multiqc
var embedded embed.FS

// Templates returns the named template set. When overrideDir is set the
// set is read from overrideDir/name on disk instead of the embedded copy.
func Templates(overrideDir, name string) (fs.FS, error) {
	if overrideDir == "" {
		return fs.Sub(embedded, name)
	}
	dir := filepath.Join(overrideDir, name)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template set %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template set %s: %s is not a directory", name, dir)
	}
	return os.DirFS(dir), nil
}
