package filestorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"showcase/internal/domain/models"
)

// SnapshotStorage persists the full item list between restarts.
type SnapshotStorage interface {
	Load(ctx context.Context) ([]models.GalleryItem, error)
	Save(ctx context.Context, items []models.GalleryItem) error
	Path() string
}

// LocalSnapshotStorage keeps the snapshot as a JSON file on the local disk.
type LocalSnapshotStorage struct {
	path string
}

func NewLocalSnapshotStorage(path string) (*LocalSnapshotStorage, error) {
	const op = "filestorage.NewLocalSnapshotStorage"

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &LocalSnapshotStorage{path: path}, nil
}

// Load returns nil items when no snapshot has been written yet.
func (s *LocalSnapshotStorage) Load(ctx context.Context) ([]models.GalleryItem, error) {
	const op = "filestorage.LocalSnapshotStorage.Load"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var items []models.GalleryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%s: decode snapshot: %w", op, err)
	}

	return items, nil
}

// Save replaces the snapshot atomically: readers see the old or the new file,
// never a partial one.
func (s *LocalSnapshotStorage) Save(ctx context.Context, items []models.GalleryItem) error {
	const op = "filestorage.LocalSnapshotStorage.Save"

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode snapshot: %w", op, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Path returns the snapshot file location.
func (s *LocalSnapshotStorage) Path() string {
	return s.path
}
