package repository

import (
	"context"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// ImageSearchProvider image search backend
type ImageSearchProvider interface {
	Name() string
	// Enabled false when switched off or missing credentials
	Enabled() bool
	// DailyLimit calls allowed per calendar day, 0 for unlimited
	DailyLimit() int
	// Search returns nil, nil when nothing is found
	Search(ctx context.Context, query string) (*entity.ImageCandidate, error)
}

// ImageURLTemplate builds a last-resort image URL from product fields
type ImageURLTemplate interface {
	Enabled() bool
	// URLFor returns "" when no URL can be built
	URLFor(product entity.Product, query string) string
}

// ImageFetcher downloads candidate images
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*entity.ImageData, error)
}

// ImageValidator returns *entity.ImageRejectedError when the image is unusable
type ImageValidator interface {
	Name() string
	Validate(ctx context.Context, product entity.Product, image *entity.ImageData) error
}

// ImageStore persists accepted images and returns their reference
type ImageStore interface {
	Save(ctx context.Context, product entity.Product, image *entity.ImageData) (string, error)
}

// QuotaTracker daily call budget per provider
type QuotaTracker interface {
	// Consume takes one call from today's budget and reports whether it was within limit
	Consume(ctx context.Context, provider string, limit int) (bool, error)
}
