package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// File stores every key as <dir>/<key>.json. Writes go through a temporary
// file and a rename so a crash never leaves half a collection behind.
type File struct {
	dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}

	return &File{dir: dir}, nil
}

func (f *File) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", errors.Errorf("invalid storage key %q", key)
	}

	return filepath.Join(f.dir, key+".json"), nil
}

func (f *File) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %s", key)
	}

	return data, true, nil
}

func (f *File) SetItem(_ context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temp file for %s", key)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", key)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", key)
	}

	if err = os.Rename(tmp.Name(), p); err != nil {
		return errors.Wrapf(err, "replacing %s", key)
	}

	return nil
}

func (f *File) Close() error { return nil }
