package seqdir

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Read directions.
const (
	Forward = "forward"
	Reverse = "reverse"
)

// ManifestEntry is one row of a MANIFEST file.
type ManifestEntry struct {
	SampleID  string `csv:"sample-id"`
	Filename  string `csv:"filename"`
	Direction string `csv:"direction"`
}

// ReadManifest parses a MANIFEST CSV (header sample-id,filename,direction).
func ReadManifest(r io.Reader) ([]ManifestEntry, error) {
	var entries []ManifestEntry
	if err := gocsv.Unmarshal(r, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// WriteManifest writes entries as MANIFEST CSV, header first.
func WriteManifest(w io.Writer, entries []ManifestEntry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	if err := gocsv.Marshal(&entries, w); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// FilterDirection returns the entries read in the given direction, in manifest order.
func FilterDirection(entries []ManifestEntry, direction string) []ManifestEntry {
	var out []ManifestEntry
	for _, e := range entries {
		if e.Direction == direction {
			out = append(out, e)
		}
	}
	return out
}

func validateEntries(entries []ManifestEntry) error {
	if len(entries) == 0 {
		return errors.New("manifest has no entries")
	}
	var errs []error
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		row := i + 2 // header is row 1
		if e.SampleID == "" {
			errs = append(errs, fmt.Errorf("manifest row %d: empty sample-id", row))
		}
		if e.Filename == "" || filepath.Base(e.Filename) != e.Filename {
			errs = append(errs, fmt.Errorf("manifest row %d: filename %q must be a bare file name", row, e.Filename))
		}
		if e.Direction != Forward && e.Direction != Reverse {
			errs = append(errs, fmt.Errorf("manifest row %d: direction %q is not forward or reverse", row, e.Direction))
		}
		if seen[e.Filename] {
			errs = append(errs, fmt.Errorf("manifest row %d: duplicate filename %q", row, e.Filename))
		}
		seen[e.Filename] = true
	}
	return errors.Join(errs...)
}
