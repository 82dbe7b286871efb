package repository

import (
	"context"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// TextGenerator generative text API
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// VisionAnalyzer reads text off an image and judges whether it shows the product
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, image *entity.ImageData, prompt string) (*entity.ImageAnalysis, error)
}
