// Package imagecheck validates downloaded product images before they are stored.
package imagecheck

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	_ "golang.org/x/image/webp"
)

// SizeValidator rejects small or undecodable images
type SizeValidator struct {
	MinWidth  int
	MinHeight int
	MinBytes  int
}

// Name check name
func (v SizeValidator) Name() string {
	return "size"
}

// Validate checks byte size and pixel dimensions
func (v SizeValidator) Validate(ctx context.Context, product entity.Product, img *entity.ImageData) error {
	if len(img.Bytes) < v.MinBytes {
		return v.reject(fmt.Sprintf("%d bytes, minimum %d", len(img.Bytes), v.MinBytes))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Bytes))
	if err != nil {
		return v.reject("undecodable image: " + err.Error())
	}
	if cfg.Width < v.MinWidth || cfg.Height < v.MinHeight {
		return v.reject(fmt.Sprintf("%s %dx%d, minimum %dx%d", format, cfg.Width, cfg.Height, v.MinWidth, v.MinHeight))
	}
	return nil
}

func (v SizeValidator) reject(reason string) error {
	return &entity.ImageRejectedError{Check: v.Name(), Reason: reason}
}
