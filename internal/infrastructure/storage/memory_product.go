package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[int64]entity.Product
	nextID   int64
}

// NewMemoryProductRepository in-memory product repository
func NewMemoryProductRepository(seed ...entity.Product) repository.ProductRepository {
	m := &memoryProductRepository{products: make(map[int64]entity.Product)}
	for i := range seed {
		_ = m.SaveProduct(context.Background(), &seed[i])
	}
	return m
}

// SaveProduct inserts or updates a product
func (m *memoryProductRepository) SaveProduct(ctx context.Context, product *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if product.ID == 0 {
		m.nextID++
		product.ID = m.nextID
		if product.CreatedAt.IsZero() {
			product.CreatedAt = now
		}
	} else if product.ID > m.nextID {
		m.nextID = product.ID
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}

	m.products[product.ID] = cloneProduct(*product)
	return nil
}

// GetByID returns a copy of the product
func (m *memoryProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, exists := m.products[id]
	if !exists {
		return nil, entity.ErrProductNotFound
	}
	p := cloneProduct(product)
	return &p, nil
}

// GetAll products ordered by ID
func (m *memoryProductRepository) GetAll(ctx context.Context, limit int) ([]entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]entity.Product, 0, len(m.products))
	for _, product := range m.products {
		products = append(products, cloneProduct(product))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// FindByField case-insensitive exact match
func (m *memoryProductRepository) FindByField(ctx context.Context, field entity.MatchField, value string) ([]entity.Product, error) {
	all, err := m.GetAll(ctx, 0)
	if err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var results []entity.Product
	for _, product := range all {
		if strings.EqualFold(strings.TrimSpace(field.Value(product)), value) {
			results = append(results, product)
		}
	}
	return results, nil
}

// Categories distinct category names
func (m *memoryProductRepository) Categories(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, product := range m.products {
		name := strings.TrimSpace(product.Category)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func cloneProduct(p entity.Product) entity.Product {
	p.TechSpecs = append([]entity.Spec(nil), p.TechSpecs...)
	p.Videos = append([]entity.VideoLink(nil), p.Videos...)
	return p
}
