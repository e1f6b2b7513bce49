package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStorage keeps envelopes as files under a single directory, one file
// per locator.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &LocalStorage{dir: dir}, nil
}

func (l *LocalStorage) Save(locator string, data io.Reader) (int64, error) {
	file, err := os.Create(l.path(locator))
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(file, data)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		// A half-written envelope is useless; don't leave it behind
		_ = os.Remove(l.path(locator))
		return 0, err
	}

	return written, nil
}

func (l *LocalStorage) Retrieve(locator string) (io.ReadCloser, int64, error) {
	file, err := os.Open(l.path(locator))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, ErrNotFound
	} else if err != nil {
		return nil, 0, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, err
	}

	return file, info.Size(), nil
}

func (l *LocalStorage) Delete(locator string) error {
	err := os.Remove(l.path(locator))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func (l *LocalStorage) path(locator string) string {
	// Locators are derived from validated codes, but flatten anything
	// path-like anyway
	return filepath.Join(l.dir, filepath.Base(locator))
}
