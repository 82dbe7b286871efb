package repository

import (
	"context"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// ProductRepository product store
type ProductRepository interface {
	// SaveProduct inserts the product when ID is zero, otherwise updates it
	SaveProduct(ctx context.Context, product *entity.Product) error

	// GetByID returns entity.ErrProductNotFound when missing
	GetByID(ctx context.Context, id int64) (*entity.Product, error)

	// GetAll products ordered by ID; limit <= 0 returns all
	GetAll(ctx context.Context, limit int) ([]entity.Product, error)

	// FindByField case-insensitive exact match ordered by ID
	FindByField(ctx context.Context, field entity.MatchField, value string) ([]entity.Product, error)

	// Categories distinct non-empty category names
	Categories(ctx context.Context) ([]string, error)
}

// CustomerRepository customer store
type CustomerRepository interface {
	// SaveCustomer inserts the customer when ID is zero, otherwise updates it
	SaveCustomer(ctx context.Context, customer *entity.Customer) error

	// FindExisting looks a customer up by name or company, email, then phone.
	// Returns nil, nil when nothing matches.
	FindExisting(ctx context.Context, name, email, phone string) (*entity.Customer, error)

	// GetAll customers ordered by ID
	GetAll(ctx context.Context) ([]entity.Customer, error)
}

// JobRepository asset job store
type JobRepository interface {
	CreateJob(ctx context.Context, job *entity.AssetJob) error
	UpdateJob(ctx context.Context, job *entity.AssetJob) error
	// GetJob returns entity.ErrJobNotFound when missing
	GetJob(ctx context.Context, id string) (*entity.AssetJob, error)
	// ActiveProductIDs products with a queued or running job
	ActiveProductIDs(ctx context.Context) (map[int64]bool, error)
}
