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

type memoryCustomerRepository struct {
	mu        sync.RWMutex
	customers map[int64]entity.Customer
	nextID    int64
}

// NewMemoryCustomerRepository in-memory customer repository
func NewMemoryCustomerRepository() repository.CustomerRepository {
	return &memoryCustomerRepository{customers: make(map[int64]entity.Customer)}
}

// SaveCustomer inserts or updates a customer
func (m *memoryCustomerRepository) SaveCustomer(ctx context.Context, customer *entity.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if customer.ID == 0 {
		m.nextID++
		customer.ID = m.nextID
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now
	m.customers[customer.ID] = *customer
	return nil
}

// FindExisting name or company, then email, then phone
func (m *memoryCustomerRepository) FindExisting(ctx context.Context, name, email, phone string) (*entity.Customer, error) {
	all, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	match := func(pred func(c entity.Customer) bool) *entity.Customer {
		for _, c := range all {
			if pred(c) {
				found := c
				return &found
			}
		}
		return nil
	}

	if name = strings.TrimSpace(name); name != "" {
		if c := match(func(c entity.Customer) bool {
			return strings.EqualFold(c.Name, name) || strings.EqualFold(c.Company, name)
		}); c != nil {
			return c, nil
		}
	}
	if email = strings.TrimSpace(email); email != "" {
		if c := match(func(c entity.Customer) bool { return strings.EqualFold(c.Email, email) }); c != nil {
			return c, nil
		}
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		if c := match(func(c entity.Customer) bool { return c.Phone == phone }); c != nil {
			return c, nil
		}
	}
	return nil, nil
}

// GetAll customers ordered by ID
func (m *memoryCustomerRepository) GetAll(ctx context.Context) ([]entity.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entity.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
