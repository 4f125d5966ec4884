// Package assemble turns tool output into deliverables: visualization
// directories and filtered sequence directories.
package assemble

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/me/seqqc/pkg/model"
)

// VisualizationSpec describes one visualization bundle.
type VisualizationSpec struct {
	DataDir       string      // Subdirectory receiving the tool output, e.g. "nanoplot_data"
	IndexTemplate string      // Template in the asset set rendered as the landing page
	Tabs          []model.Tab // Landing page navigation
}

// Visualization builds a report in outputDir:
//   - every file of assets is copied in;
//   - toolOutDir replaces outputDir/DataDir;
//   - IndexTemplate is rendered with the tabs.
//
// Running it again into the same outputDir yields the same tree.
func Visualization(assets fs.FS, toolOutDir, outputDir string, spec VisualizationSpec) error {
	if spec.DataDir == "" || filepath.Base(spec.DataDir) != spec.DataDir {
		return fmt.Errorf("data dir %q must be a single path element", spec.DataDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := CopyFS(assets, outputDir); err != nil {
		return fmt.Errorf("copy template assets: %w", err)
	}
	if err := ReplaceDir(toolOutDir, filepath.Join(outputDir, spec.DataDir)); err != nil {
		return fmt.Errorf("copy tool output: %w", err)
	}
	return renderIndex(assets, outputDir, spec)
}

func renderIndex(assets fs.FS, outputDir string, spec VisualizationSpec) error {
	tmpl, err := template.ParseFS(assets, spec.IndexTemplate)
	if err != nil {
		return fmt.Errorf("parse %s: %w", spec.IndexTemplate, err)
	}

	out, err := os.Create(filepath.Join(outputDir, path.Base(spec.IndexTemplate)))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	data := struct{ Tabs []model.Tab }{Tabs: spec.Tabs}
	if err := tmpl.Execute(out, data); err != nil {
		out.Close()
		return fmt.Errorf("render %s: %w", spec.IndexTemplate, err)
	}
	return out.Close()
}
