package assemble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/me/seqqc/internal/seqdir"
)

// ErrManifestMismatch is matched by every ManifestMismatchError.
var ErrManifestMismatch = errors.New("filtered files do not match the manifest")

// ManifestMismatchError lists the differences between the forward manifest
// entries and the files actually produced.
type ManifestMismatchError struct {
	Missing    []string // In the manifest, not produced
	Unexpected []string // Produced, not in the manifest
}

func (e *ManifestMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("%v: %s", ErrManifestMismatch, strings.Join(parts, "; "))
}

func (e *ManifestMismatchError) Is(target error) bool {
	return target == ErrManifestMismatch
}

// FilteredResult builds a single-end sequence directory in resultDir from
// the files in filteredDir, which must hold exactly one regular file per
// forward entry of input, under the same name, and nothing else. Files are duplicated, not
// rewritten, and the metadata records a Phred offset of 33.
func FilteredResult(input *seqdir.Directory, filteredDir, resultDir string) (*seqdir.Directory, error) {
	entries := input.Forward()
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: manifest has no forward reads", input.Path)
	}

	if err := matchFiles(entries, filteredDir); err != nil {
		return nil, err
	}

	result, err := seqdir.Create(resultDir, entries, seqdir.Metadata{PhredOffset: seqdir.DefaultPhredOffset})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := Duplicate(filepath.Join(filteredDir, e.Filename), result.FilePath(e)); err != nil {
			return nil, fmt.Errorf("duplicate %s: %w", e.Filename, err)
		}
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func matchFiles(entries []seqdir.ManifestEntry, filteredDir string) error {
	dirEntries, err := os.ReadDir(filteredDir)
	if err != nil {
		return fmt.Errorf("read filtered dir: %w", err)
	}

	produced := make(map[string]bool, len(dirEntries))
	for _, de := range dirEntries {
		if de.Type().IsRegular() {
			produced[de.Name()] = true
		}
	}

	mismatch := &ManifestMismatchError{}
	for _, e := range entries {
		if produced[e.Filename] {
			delete(produced, e.Filename)
			continue
		}
		mismatch.Missing = append(mismatch.Missing, e.Filename)
	}
	for name := range produced {
		mismatch.Unexpected = append(mismatch.Unexpected, name)
	}
	sort.Strings(mismatch.Unexpected)

	if len(mismatch.Missing) > 0 || len(mismatch.Unexpected) > 0 {
		return mismatch
	}
	return nil
}
