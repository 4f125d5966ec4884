package assemble

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFS copies every file of fsys into dst, creating directories as
// needed. Existing files are overwritten.
func CopyFS(fsys fs.FS, dst string) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFromFS(fsys, path, target)
	})
}

// CopyDir recursively copies the contents of src into dst.
func CopyDir(src, dst string) error {
	if err := CopyFS(os.DirFS(src), dst); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// ReplaceDir makes dst an exact copy of src, discarding whatever dst held.
func ReplaceDir(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("clear %s: %w", dst, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	return CopyDir(src, dst)
}

func copyFromFS(fsys fs.FS, name, dst string) error {
	in, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeFile(dst, in)
}

// copyFile copies a file from src to dst with write permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	return writeFile(dst, in)
}

func writeFile(dst string, r io.Reader) error {
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return out.Close()
}

// Duplicate places src at dst without re-encoding it: a hard link when
// both are on one filesystem, a byte copy otherwise.
func Duplicate(src, dst string) error {
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", dst, err)
	}
	if err := os.Link(src, dst); err == nil {
		return nil
	}
	return copyFile(src, dst)
}

// CopyOutcome is the result of copying one file.
type CopyOutcome struct {
	File string
	Dest string
	Err  error
}

// CopyBestEffort copies each file into dstDir under its base name. A failed
// copy is recorded in its outcome and does not stop the others.
func CopyBestEffort(files []string, dstDir string) []CopyOutcome {
	outcomes := make([]CopyOutcome, len(files))
	for i, f := range files {
		dst := filepath.Join(dstDir, filepath.Base(f))
		outcomes[i] = CopyOutcome{File: f, Dest: dst, Err: copyFile(f, dst)}
	}
	return outcomes
}

// RequireAll joins the errors of every failed outcome.
func RequireAll(outcomes []CopyOutcome) error {
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("copy %s: %w", filepath.Base(o.File), o.Err))
		}
	}
	return errors.Join(errs...)
}
