package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore reads and writes the tabular backing files.
type FileStore interface {
	Exists(path string) (bool, error)
	// ReadTable Return the header row and the data rows of a file
	ReadTable(path string) ([]string, [][]string, error)
	// WriteTable Rewrite a file wholesale
	WriteTable(path string, header []string, records [][]string) error
}

// DiskFileStore stores tables as CSV files on the local disk.
// Writes are not atomic.
type DiskFileStore struct{}

func (DiskFileStore) Exists(path string) (bool, error) {
	s, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if s.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	return true, nil
}

func (DiskFileStore) ReadTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, all[1:], nil
}

func (DiskFileStore) WriteTable(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write header of %s: %w", path, err)
	}
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write rows of %s: %w", path, err)
	}
	return f.Close()
}
