// Package seqdir reads and writes per-sample sequence directories: a set of
// compressed FASTQ files described by a MANIFEST and a metadata.yml.
package seqdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File names inside a sequence directory.
const (
	ManifestFile = "MANIFEST"
	MetadataFile = "metadata.yml"
)

// DefaultPhredOffset is the quality encoding written for new directories.
const DefaultPhredOffset = 33

// ErrMissingFile is returned when a manifest names a file that is not present.
var ErrMissingFile = errors.New("manifest file missing from directory")

// Metadata is the content of metadata.yml.
type Metadata struct {
	PhredOffset int `yaml:"phred-offset"`
}

// Directory is an opened sequence directory. The manifest is the only
// source of truth for which files belong to it.
type Directory struct {
	Path     string
	Manifest []ManifestEntry
	Metadata Metadata
}

// Open reads the manifest and metadata of the directory at path and checks
// that every listed file exists. A missing metadata.yml yields the default
// Phred offset.
func Open(path string) (*Directory, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	f, err := os.Open(filepath.Join(abs, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	entries, err := ReadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	meta, err := readMetadata(filepath.Join(abs, MetadataFile))
	if err != nil {
		return nil, err
	}

	d := &Directory{Path: abs, Manifest: entries, Metadata: meta}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Create writes MANIFEST and metadata.yml into path, creating it if needed.
// The sequence files themselves are placed by the caller.
func Create(path string, entries []ManifestEntry, meta Metadata) (*Directory, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(filepath.Join(abs, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("create manifest: %w", err)
	}
	if err := WriteManifest(f, entries); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close manifest: %w", err)
	}

	data, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(abs, MetadataFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	return &Directory{Path: abs, Manifest: entries, Metadata: meta}, nil
}

// Validate checks that every manifest file exists as a regular file.
func (d *Directory) Validate() error {
	var errs []error
	for _, e := range d.Manifest {
		info, err := os.Stat(d.FilePath(e))
		if err != nil || !info.Mode().IsRegular() {
			errs = append(errs, fmt.Errorf("%w: %s (sample %s)", ErrMissingFile, e.Filename, e.SampleID))
		}
	}
	return errors.Join(errs...)
}

// Forward returns the forward-direction entries in manifest order.
func (d *Directory) Forward() []ManifestEntry {
	return FilterDirection(d.Manifest, Forward)
}

// FilePath returns the absolute path of an entry's file.
func (d *Directory) FilePath(e ManifestEntry) string {
	return filepath.Join(d.Path, e.Filename)
}

// Paths returns the absolute paths of all manifest files in manifest order.
func (d *Directory) Paths() []string {
	paths := make([]string, len(d.Manifest))
	for i, e := range d.Manifest {
		paths[i] = d.FilePath(e)
	}
	return paths
}

// PairedEnd reports whether the manifest lists any reverse reads.
func (d *Directory) PairedEnd() bool {
	return len(FilterDirection(d.Manifest, Reverse)) > 0
}

func readMetadata(path string) (Metadata, error) {
	meta := Metadata{PhredOffset: DefaultPhredOffset}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("read metadata: %w", err)
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	if meta.PhredOffset != 33 && meta.PhredOffset != 64 {
		return meta, fmt.Errorf("metadata %s: unsupported phred-offset %d", path, meta.PhredOffset)
	}
	return meta, nil
}
