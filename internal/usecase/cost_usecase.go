package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"github.com/yourusername/stock-backoffice/internal/normalize"
	"go.uber.org/zap"
)

// CostUpdateRequest update-product-costs options
type CostUpdateRequest struct {
	FilePath        string
	Sheet           string
	ReferenceColumn string
	CostColumn      string
	MatchField      entity.MatchField
}

// CostUpdateSummary per-row outcome counters
type CostUpdateSummary struct {
	Rows             int
	Updated          int
	Unchanged        int
	MissingReference int
	InvalidCost      int
	NotFound         int
	// Ambiguous rows whose value matched several products; the lowest ID was updated
	Ambiguous int
	Failed    int
}

// CostUseCase purchase cost import
type CostUseCase interface {
	UpdateCosts(ctx context.Context, req CostUpdateRequest) (*CostUpdateSummary, error)
}

type costUseCase struct {
	sheets      repository.SheetReader
	productRepo repository.ProductRepository
	matcher     RecordMatcher
	log         *zap.Logger
}

// NewCostUseCase creates the cost import use case
func NewCostUseCase(sheets repository.SheetReader, productRepo repository.ProductRepository, log *zap.Logger) CostUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &costUseCase{
		sheets:      sheets,
		productRepo: productRepo,
		matcher:     NewRecordMatcher(productRepo),
		log:         log,
	}
}

// UpdateCosts sets the purchase cost of every product listed in the sheet.
// Column errors are fatal; row errors are counted and the import continues.
func (u *costUseCase) UpdateCosts(ctx context.Context, req CostUpdateRequest) (*CostUpdateSummary, error) {
	field := req.MatchField
	if field == "" {
		field = entity.MatchManufacturerReference
	}

	sheet, err := u.sheets.ReadSheet(ctx, req.FilePath, req.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.FilePath, err)
	}

	cols, err := ResolveColumns(sheet.Header, []ColumnSpec{
		{Field: FieldReference, Required: true, Override: req.ReferenceColumn},
		{Field: FieldCost, Required: true, Override: req.CostColumn},
	})
	if err != nil {
		return nil, err
	}
	refCol, costCol := cols[FieldReference], cols[FieldCost]

	log := u.log.With(zap.String("file", req.FilePath), zap.String("sheet", sheet.Name), zap.String("match_field", string(field)))
	log.Info("cost import started",
		zap.String("reference_column", sheet.Header[refCol]),
		zap.String("cost_column", sheet.Header[costCol]),
		zap.Int("rows", len(sheet.Rows)),
	)

	summary := &CostUpdateSummary{}
	for i, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Rows++
		line := sheet.Line(i)

		ref := sheet.Cell(row, refCol)
		if ref == "" {
			summary.MissingReference++
			continue
		}

		rawCost := sheet.Cell(row, costCol)
		var cost decimal.Decimal
		if number, ok := sheet.Number(i, costCol); ok {
			cost, err = normalize.NumberCell(number)
		} else {
			cost, err = normalize.Decimal(rawCost)
		}
		if err != nil || cost.IsNegative() {
			summary.InvalidCost++
			log.Warn("invalid cost", zap.Int("line", line), zap.String("reference", ref), zap.String("value", rawCost))
			continue
		}

		match, err := u.matcher.Match(ctx, field, ref)
		if errors.Is(err, entity.ErrNoMatch) {
			summary.NotFound++
			log.Debug("no product", zap.Int("line", line), zap.String("reference", ref))
			continue
		}
		if err != nil {
			summary.Failed++
			log.Error("lookup failed", zap.Int("line", line), zap.String("reference", ref), zap.Error(err))
			continue
		}
		if match.Duplicates > 0 {
			summary.Ambiguous++
			log.Warn("reference matches several products",
				zap.Int("line", line),
				zap.String("reference", ref),
				zap.Int64("product_id", match.Product.ID),
				zap.Int("duplicates", match.Duplicates),
			)
		}

		product := match.Product
		if product.PurchaseCost.Equal(cost) {
			summary.Unchanged++
			continue
		}
		product.PurchaseCost = cost
		if err := u.productRepo.SaveProduct(ctx, product); err != nil {
			summary.Failed++
			log.Error("save failed", zap.Int("line", line), zap.Int64("product_id", product.ID), zap.Error(err))
			continue
		}
		summary.Updated++
	}

	log.Info("cost import finished",
		zap.Int("updated", summary.Updated),
		zap.Int("not_found", summary.NotFound),
		zap.Int("invalid_cost", summary.InvalidCost),
	)
	return summary, nil
}
