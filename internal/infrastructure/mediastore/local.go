package mediastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

// LocalStore writes images under a media root directory
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir
func NewLocalStore(dir string) repository.ImageStore {
	return &LocalStore{root: dir}
}

// Save writes the image and returns its path relative to the media root
func (s *LocalStore) Save(ctx context.Context, product entity.Product, img *entity.ImageData) (string, error) {
	key := objectKey(product, img)
	full := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(full, img.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", key, err)
	}
	return key, nil
}
