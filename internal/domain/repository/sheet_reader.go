package repository

import (
	"context"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// SheetReader reads spreadsheet files
type SheetReader interface {
	// ReadSheet reads the named sheet, or the first one when sheet is empty
	ReadSheet(ctx context.Context, path, sheet string) (*entity.Sheet, error)
}
