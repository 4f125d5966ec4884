package seqdir

import (
	"errors"
	"fmt"
	"io"

	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

// CountReads returns the number of FASTQ records in a plain or
// compressed file.
func CountReads(path string) (int, error) {
	reader, err := fastx.NewDefaultReader(path)
	if errors.Is(err, xopen.ErrNoContent) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	n := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if errors.Is(err, xopen.ErrNoContent) {
			break
		}
		if err != nil {
			return n, fmt.Errorf("read %s: %w", path, err)
		}
		n++
	}
	return n, nil
}
