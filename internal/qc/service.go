// Package qc implements the quality-control actions: each one discovers
// its inputs, runs the external tools and assembles the result.
package qc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/seqqc/internal/assemble"
	"github.com/me/seqqc/internal/assets"
	"github.com/me/seqqc/internal/cmdline"
	"github.com/me/seqqc/internal/discovery"
	"github.com/me/seqqc/internal/execution"
	"github.com/me/seqqc/internal/logging"
	"github.com/me/seqqc/internal/seqdir"
	"github.com/me/seqqc/pkg/model"
)

// Data directories inside the visualizations.
const (
	NanoPlotDataDir = "nanoplot_data"
	MultiQCDataDir  = "multiqc_data"
)

// MultiQCReport is the report file MultiQC writes into its output directory.
const MultiQCReport = "multiqc_report.html"

// Service runs the actions. The zero values of the optional fields give
// embedded templates, the system temp dir, warn-only log validation and
// best-effort log copying.
type Service struct {
	Runner     *execution.Runner
	Logger     *slog.Logger
	AssetsDir  string // On-disk template override
	TempRoot   string // Parent of scratch directories
	LogMode    seqdir.ValidationMode
	StrictCopy bool // Fail Aggregate when a log cannot be copied
}

// NewService creates a Service with default options. A nil logger
// discards all output.
func NewService(runner *execution.Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		Runner: runner,
		Logger: logger,
	}
}

// Stats runs NanoPlot over every *.fastq.gz file in seqDir and writes the
// visualization into outputDir. Single-end and paired-end directories are
// handled alike.
func (s *Service) Stats(ctx context.Context, seqDir, outputDir string) error {
	logger := logging.ForAction(s.Logger, "qc", ActionStats)

	files, err := discovery.FindFastq(seqDir)
	if err != nil {
		return err
	}
	logger.Info("running nanoplot", "files", len(files))

	tmp, cleanup, err := s.tempDir(logger, ActionStats)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := s.Runner.ForAction(ActionStats).Run(ctx, cmdline.NanoPlotCommand(files, tmp)); err != nil {
		return err
	}

	return s.visualize(logger, assets.NanoPlot, tmp, outputDir, assemble.VisualizationSpec{
		DataDir:       NanoPlotDataDir,
		IndexTemplate: assets.IndexTemplate,
		Tabs:          []model.Tab{{Title: "Nanoplot", URL: "index.html"}},
	})
}

// Aggregate runs FastQC on every *.fastq.gz file in seqDir, adds the
// Cutadapt logs of logsDir when it is set, summarizes everything with
// MultiQC and writes the visualization into outputDir.
func (s *Service) Aggregate(ctx context.Context, seqDir, logsDir, outputDir string) error {
	logger := logging.ForAction(s.Logger, "qc", ActionAggregate)
	runner := s.Runner.ForAction(ActionAggregate)

	files, err := discovery.FindFastq(seqDir)
	if err != nil {
		return err
	}

	tmp, cleanup, err := s.tempDir(logger, ActionAggregate)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, f := range files {
		if err := runner.Run(ctx, cmdline.FastQCCommand(f, tmp)); err != nil {
			return err
		}
	}

	if logsDir != "" {
		if err := s.collectLogs(logger, logsDir, tmp); err != nil {
			return err
		}
	}

	if err := runner.Run(ctx, cmdline.MultiQCCommand(tmp, tmp)); err != nil {
		return err
	}

	report := filepath.Join(tmp, MultiQCReport)
	if _, err := os.Stat(report); err == nil {
		if err := assemble.ModifyLinks(report); err != nil {
			return fmt.Errorf("rewrite report links: %w", err)
		}
	} else {
		logger.Warn("multiqc report not found", "path", report)
	}

	return s.visualize(logger, assets.MultiQC, tmp, outputDir, assemble.VisualizationSpec{
		DataDir:       MultiQCDataDir,
		IndexTemplate: assets.IndexTemplate,
		Tabs:          []model.Tab{{Title: "MultiQC", URL: "index.html"}},
	})
}

// collectLogs validates the Cutadapt logs in logsDir and copies them into
// dst for MultiQC to pick up.
func (s *Service) collectLogs(logger *slog.Logger, logsDir, dst string) error {
	checks, err := seqdir.CheckCutadaptLogs(logsDir, s.LogMode)
	if errors.Is(err, discovery.ErrInputNotFound) {
		logger.Warn("no cutadapt logs found", "dir", logsDir)
		return nil
	}
	if err != nil {
		return err
	}

	paths := make([]string, len(checks))
	for i, c := range checks {
		paths[i] = c.Path
		for _, w := range c.Warnings {
			logger.Warn("suspicious cutadapt log", "path", c.Path, "problem", w)
		}
	}

	outcomes := assemble.CopyBestEffort(paths, dst)
	for _, o := range outcomes {
		if o.Err != nil {
			logger.Warn("copy cutadapt log failed", "file", o.File, "error", o.Err)
			continue
		}
		logger.Debug("copied cutadapt log", "file", o.File, "dest", o.Dest)
	}
	if s.StrictCopy {
		return assemble.RequireAll(outcomes)
	}
	return nil
}

// Chop filters every forward read file of the sequence directory at seqDir
// through gunzip | chopper | gzip and returns the single-end result
// directory written to resultDir.
func (s *Service) Chop(ctx context.Context, seqDir string, params model.ChopperParams, resultDir string) (*seqdir.Directory, error) {
	logger := logging.ForAction(s.Logger, "qc", ActionChop)
	runner := s.Runner.ForAction(ActionChop)

	input, err := seqdir.Open(seqDir)
	if err != nil {
		return nil, err
	}
	forward := input.Forward()
	if len(forward) == 0 {
		return nil, fmt.Errorf("%s: manifest has no forward reads", input.Path)
	}
	if input.PairedEnd() {
		logger.Info("paired-end input, filtering forward reads only", "samples", len(forward))
	}

	tmp, cleanup, err := s.tempDir(logger, ActionChop)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	chopper := cmdline.ChopperCommand(params)
	for _, e := range forward {
		src := input.FilePath(e)
		dst := filepath.Join(tmp, filepath.Base(e.Filename))
		if err := runner.RunPiped(ctx, cmdline.UnzipCommand(src), chopper, cmdline.ZipCommand(), dst); err != nil {
			return nil, fmt.Errorf("sample %s: %w", e.SampleID, err)
		}
		logReads(logger, e, src, dst)
	}

	result, err := assemble.FilteredResult(input, tmp, resultDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("filtered result written", "dir", result.Path, "files", result.Paths())
	return result, nil
}

func logReads(logger *slog.Logger, e seqdir.ManifestEntry, src, dst string) {
	in, err := seqdir.CountReads(src)
	if err != nil {
		logger.Debug("count input reads", "sample", e.SampleID, "error", err)
		return
	}
	out, err := seqdir.CountReads(dst)
	if err != nil {
		logger.Debug("count filtered reads", "sample", e.SampleID, "error", err)
		return
	}
	logger.Info("sample filtered", "sample", e.SampleID, "reads_in", in, "reads_out", out)
}

func (s *Service) visualize(logger *slog.Logger, set, toolOutDir, outputDir string, spec assemble.VisualizationSpec) error {
	tmpl, err := assets.Templates(s.AssetsDir, set)
	if err != nil {
		return err
	}
	if err := assemble.Visualization(tmpl, toolOutDir, outputDir, spec); err != nil {
		return fmt.Errorf("assemble %s visualization: %w", set, err)
	}
	logger.Info("visualization written", "dir", outputDir)
	return nil
}

// tempDir creates a scratch directory and a cleanup func that removes it.
func (s *Service) tempDir(logger *slog.Logger, action string) (string, func(), error) {
	dir, err := os.MkdirTemp(s.TempRoot, "seqqc-"+action+"-")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("remove temp dir", "dir", dir, "error", err)
		}
	}
	return dir, cleanup, nil
}
