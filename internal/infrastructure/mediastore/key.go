// Package mediastore persists accepted product images on disk or in MinIO.
package mediastore

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// objectKey products/<id>/<short uuid><ext>
func objectKey(product entity.Product, img *entity.ImageData) string {
	return path.Join("products", fmt.Sprintf("%d", product.ID), uuid.New().String()[:8]+extension(img))
}

// extension from the content type, falling back to the source URL
func extension(img *entity.ImageData) string {
	switch strings.Split(img.ContentType, ";")[0] {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if exts, err := mime.ExtensionsByType(img.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if ext := strings.ToLower(path.Ext(strings.Split(img.URL, "?")[0])); len(ext) > 1 && len(ext) <= 5 {
		return ext
	}
	return ".img"
}
