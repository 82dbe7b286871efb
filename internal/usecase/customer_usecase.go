package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"github.com/yourusername/stock-backoffice/internal/normalize"
	"go.uber.org/zap"
)

// CustomerImportRequest import-customers options
type CustomerImportRequest struct {
	FilePath string
	Sheet    string
}

// CustomerImportSummary per-row outcome counters
type CustomerImportSummary struct {
	Rows    int
	Created int
	Updated int
	Skipped int
	Failed  int
}

// CustomerUseCase customer spreadsheet import
type CustomerUseCase interface {
	ImportCustomers(ctx context.Context, req CustomerImportRequest) (*CustomerImportSummary, error)
}

type customerUseCase struct {
	sheets       repository.SheetReader
	customerRepo repository.CustomerRepository
	phoneRegion  string
	log          *zap.Logger
}

// NewCustomerUseCase phoneRegion is the ISO region used for numbers without a country code
func NewCustomerUseCase(sheets repository.SheetReader, customerRepo repository.CustomerRepository, phoneRegion string, log *zap.Logger) CustomerUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &customerUseCase{
		sheets:       sheets,
		customerRepo: customerRepo,
		phoneRegion:  phoneRegion,
		log:          log,
	}
}

var customerColumns = []ColumnSpec{
	{Field: FieldName, Required: true},
	{Field: FieldCompany},
	{Field: FieldPhone},
	{Field: FieldEmail},
	{Field: FieldSalesperson},
	{Field: FieldActivity},
	{Field: FieldCity},
	{Field: FieldCountry},
}

// ImportCustomers creates new customers and fills blanks of existing ones
func (u *customerUseCase) ImportCustomers(ctx context.Context, req CustomerImportRequest) (*CustomerImportSummary, error) {
	sheet, err := u.sheets.ReadSheet(ctx, req.FilePath, req.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.FilePath, err)
	}

	cols, err := ResolveColumns(sheet.Header, customerColumns)
	if err != nil {
		return nil, err
	}

	log := u.log.With(zap.String("file", req.FilePath), zap.String("sheet", sheet.Name))
	log.Info("customer import started", zap.Int("rows", len(sheet.Rows)), zap.Int("columns", len(cols)))

	cell := func(row []string, field Field) string {
		idx, ok := cols[field]
		if !ok {
			return ""
		}
		return sheet.Cell(row, idx)
	}

	summary := &CustomerImportSummary{}
	for i, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Rows++

		incoming := entity.Customer{
			Name:        cell(row, FieldName),
			Company:     cell(row, FieldCompany),
			Phone:       normalize.Phone(cell(row, FieldPhone), u.phoneRegion),
			Email:       normalize.Email(cell(row, FieldEmail)),
			City:        cell(row, FieldCity),
			Country:     cell(row, FieldCountry),
			Salesperson: cell(row, FieldSalesperson),
			Activity:    cell(row, FieldActivity),
		}
		if incoming.Name == "" && incoming.Company == "" {
			summary.Skipped++
			continue
		}
		if incoming.Name == "" {
			incoming.Name = incoming.Company
		}

		existing, err := u.customerRepo.FindExisting(ctx, incoming.Name, incoming.Email, incoming.Phone)
		if err != nil {
			summary.Failed++
			log.Error("lookup failed", zap.Int("line", sheet.Line(i)), zap.Error(err))
			continue
		}

		if existing == nil {
			incoming.Reference = newCustomerReference()
			if err := u.customerRepo.SaveCustomer(ctx, &incoming); err != nil {
				summary.Failed++
				log.Error("create failed", zap.Int("line", sheet.Line(i)), zap.Error(err))
				continue
			}
			summary.Created++
			continue
		}

		if !mergeCustomer(existing, incoming) {
			summary.Skipped++
			continue
		}
		if err := u.customerRepo.SaveCustomer(ctx, existing); err != nil {
			summary.Failed++
			log.Error("update failed", zap.Int("line", sheet.Line(i)), zap.Int64("customer_id", existing.ID), zap.Error(err))
			continue
		}
		summary.Updated++
	}

	log.Info("customer import finished",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// mergeCustomer copies non-empty incoming values that differ; reports whether anything changed
func mergeCustomer(dst *entity.Customer, src entity.Customer) bool {
	changed := false
	set := func(field *string, value string) {
		if value != "" && *field != value {
			*field = value
			changed = true
		}
	}
	set(&dst.Company, src.Company)
	set(&dst.Phone, src.Phone)
	set(&dst.Email, src.Email)
	set(&dst.City, src.City)
	set(&dst.Country, src.Country)
	set(&dst.Salesperson, src.Salesperson)
	set(&dst.Activity, src.Activity)
	if dst.Reference == "" {
		dst.Reference = newCustomerReference()
		changed = true
	}
	return changed
}

func newCustomerReference() string {
	return "CUS-" + strings.ToUpper(uuid.New().String()[:8])
}
