package filerepo

import (
	"context"
	"docshare/internal/models"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const pkg = "fileRepo/"

type repository struct {
	root string
}

func NewRepository(root string) *repository {
	return &repository{root: root}
}

// path resolves key under root and refuses keys that escape it.
func (r *repository) path(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("empty storage key: %w", models.ErrInvalidParams)
	}
	full := filepath.Join(r.root, clean)
	if !strings.HasPrefix(full, filepath.Clean(r.root)+string(filepath.Separator)) {
		return "", fmt.Errorf("storage key escapes root: %w", models.ErrInvalidParams)
	}
	return full, nil
}

func (r *repository) Put(ctx context.Context, key string, src io.Reader, size int64, _ string) error {
	op := pkg + "Put"

	full, err := r.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if size >= 0 && written != size {
		return fmt.Errorf("%s: wrote %d bytes, expected %d", op, written, size)
	}

	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return ctx.Err()
}

func (r *repository) Get(_ context.Context, key string) (io.ReadCloser, error) {
	op := pkg + "Get"

	full, err := r.path(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return f, nil
}

func (r *repository) Delete(_ context.Context, key string) error {
	op := pkg + "Delete"

	full, err := r.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", op, models.ErrBlobNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) Exists(_ context.Context, key string) (bool, error) {
	op := pkg + "Exists"

	full, err := r.path(key)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}
