package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

// MatchResult matched product and how many other products carry the same value
type MatchResult struct {
	Product    *entity.Product
	Duplicates int
}

// RecordMatcher finds the product a spreadsheet row refers to
type RecordMatcher interface {
	// Match returns entity.ErrNoMatch when no product carries the value
	Match(ctx context.Context, field entity.MatchField, value string) (*MatchResult, error)
}

type recordMatcher struct {
	productRepo repository.ProductRepository
}

// NewRecordMatcher creates a matcher over the product store
func NewRecordMatcher(productRepo repository.ProductRepository) RecordMatcher {
	return &recordMatcher{productRepo: productRepo}
}

// Match case-insensitive exact match; the lowest ID wins on duplicates
func (m *recordMatcher) Match(ctx context.Context, field entity.MatchField, value string) (*MatchResult, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, entity.ErrNoMatch
	}

	products, err := m.productRepo.FindByField(ctx, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s %q: %w", field, value, err)
	}
	if len(products) == 0 {
		return nil, entity.ErrNoMatch
	}

	first := products[0]
	for _, p := range products[1:] {
		if p.ID < first.ID {
			first = p
		}
	}
	return &MatchResult{Product: &first, Duplicates: len(products) - 1}, nil
}
