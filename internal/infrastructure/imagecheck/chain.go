package imagecheck

import (
	"context"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

// Chain runs validators in order and stops at the first failure
type Chain struct {
	validators []repository.ImageValidator
}

// NewChain nil validators are skipped
func NewChain(validators ...repository.ImageValidator) *Chain {
	c := &Chain{}
	for _, v := range validators {
		if v != nil {
			c.validators = append(c.validators, v)
		}
	}
	return c
}

// Name check name
func (c *Chain) Name() string {
	return "chain"
}

// Validate short-circuits on the first rejection or error
func (c *Chain) Validate(ctx context.Context, product entity.Product, img *entity.ImageData) error {
	for _, v := range c.validators {
		if err := v.Validate(ctx, product, img); err != nil {
			return err
		}
	}
	return nil
}
