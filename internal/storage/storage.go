package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage is the blob store uploads go to. The platform provides the real
// object store; DiskStorage stands in for it in local setups and tests.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (url string, size int64, err error)
}

type DiskStorage struct {
	Root string
}

func NewDiskStorage(root string) (*DiskStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	return &DiskStorage{Root: root}, nil
}

func (s *DiskStorage) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	path := filepath.Join(s.Root, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("storage create: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return "", 0, fmt.Errorf("storage write: %w", err)
	}

	return "/files/" + filepath.Base(name), n, nil
}
