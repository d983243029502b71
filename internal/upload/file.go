package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const storedFileMode = 0o644

// WriteFile copies r into path through a temporary file in the same
// directory, so readers never observe a partially written file.
func WriteFile(path string, r io.Reader) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Chmod(storedFileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// LocalFile is a PostedFile backed by a file on disk.
type LocalFile struct {
	Path string
	Type string
}

func (f *LocalFile) Name() string        { return filepath.Base(f.Path) }
func (f *LocalFile) ContentType() string { return f.Type }

func (f *LocalFile) Size() int64 {
	info, err := os.Stat(f.Path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

func (f *LocalFile) SaveAs(path string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	return WriteFile(path, src)
}
