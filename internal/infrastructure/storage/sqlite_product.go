package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

type sqliteProductRepository struct {
	db *sql.DB
}

// NewSQLiteProductRepository SQLite backed product repository
func NewSQLiteProductRepository(db *sql.DB) repository.ProductRepository {
	return &sqliteProductRepository{db: db}
}

const productColumns = `id, sku, manufacturer_reference, barcode, name, brand, category, purchase_cost, sale_price,
	short_description, long_description, tech_specs, datasheet_url, image_ref, image_is_placeholder,
	videos, blog_draft, created_at, updated_at`

// SaveProduct inserts when ID is zero, otherwise updates
func (s *sqliteProductRepository) SaveProduct(ctx context.Context, p *entity.Product) error {
	specs, err := json.Marshal(nonNilSpecs(p.TechSpecs))
	if err != nil {
		return fmt.Errorf("failed to encode tech specs: %w", err)
	}
	videos, err := json.Marshal(nonNilVideos(p.Videos))
	if err != nil {
		return fmt.Errorf("failed to encode videos: %w", err)
	}

	now := time.Now()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	if p.ID == 0 {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		res, err := s.db.ExecContext(ctx, `INSERT INTO products (sku, manufacturer_reference, barcode, name, brand, category,
	purchase_cost, sale_price, short_description, long_description, tech_specs, datasheet_url, image_ref,
	image_is_placeholder, videos, blog_draft, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.SKU, p.ManufacturerReference, p.Barcode, p.Name, p.Brand, p.Category,
			p.PurchaseCost.String(), p.SalePrice.String(), p.ShortDescription, p.LongDescription,
			string(specs), p.DatasheetURL, p.ImageRef, p.ImageIsPlaceholder, string(videos), p.BlogDraft,
			p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		p.ID = id
		return nil
	}

	res, err := s.db.ExecContext(ctx, `UPDATE products SET sku = ?, manufacturer_reference = ?, barcode = ?, name = ?,
	brand = ?, category = ?, purchase_cost = ?, sale_price = ?, short_description = ?, long_description = ?,
	tech_specs = ?, datasheet_url = ?, image_ref = ?, image_is_placeholder = ?, videos = ?, blog_draft = ?,
	updated_at = ?
WHERE id = ?`,
		p.SKU, p.ManufacturerReference, p.Barcode, p.Name, p.Brand, p.Category,
		p.PurchaseCost.String(), p.SalePrice.String(), p.ShortDescription, p.LongDescription,
		string(specs), p.DatasheetURL, p.ImageRef, p.ImageIsPlaceholder, string(videos), p.BlogDraft,
		p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrProductNotFound
	}
	return nil
}

// GetByID returns entity.ErrProductNotFound when missing
func (s *sqliteProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetAll products ordered by ID
func (s *sqliteProductRepository) GetAll(ctx context.Context, limit int) ([]entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// FindByField case-insensitive exact match ordered by ID
func (s *sqliteProductRepository) FindByField(ctx context.Context, field entity.MatchField, value string) ([]entity.Product, error) {
	var column string
	switch field {
	case entity.MatchSKU:
		column = "sku"
	case entity.MatchName:
		column = "name"
	case entity.MatchManufacturerReference:
		column = "manufacturer_reference"
	default:
		return nil, fmt.Errorf("unsupported match field %q", field)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	out, err := s.query(ctx, `SELECT `+productColumns+` FROM products WHERE `+column+` = ? COLLATE NOCASE ORDER BY id`, value)
	if err != nil || len(out) > 0 || isASCII(value) {
		return out, err
	}

	// NOCASE only folds ASCII; the length filter narrows, EqualFold decides
	candidates, err := s.query(ctx, `SELECT `+productColumns+` FROM products WHERE length(trim(`+column+`)) = ? ORDER BY id`, len([]rune(value)))
	if err != nil {
		return nil, err
	}
	for _, p := range candidates {
		if strings.EqualFold(strings.TrimSpace(field.Value(p)), value) {
			out = append(out, p)
		}
	}
	return out, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Categories distinct non-empty category names
func (s *sqliteProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT trim(category) FROM products WHERE trim(category) <> '' ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *sqliteProductRepository) query(ctx context.Context, query string, args ...any) ([]entity.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*entity.Product, error) {
	var (
		p             entity.Product
		cost, price   string
		specs, videos string
	)
	err := row.Scan(&p.ID, &p.SKU, &p.ManufacturerReference, &p.Barcode, &p.Name, &p.Brand, &p.Category,
		&cost, &price, &p.ShortDescription, &p.LongDescription, &specs, &p.DatasheetURL, &p.ImageRef,
		&p.ImageIsPlaceholder, &videos, &p.BlogDraft, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if p.PurchaseCost, err = decimal.NewFromString(cost); err != nil {
		return nil, fmt.Errorf("product %d: bad purchase cost %q: %w", p.ID, cost, err)
	}
	if p.SalePrice, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %d: bad sale price %q: %w", p.ID, price, err)
	}
	if err := json.Unmarshal([]byte(specs), &p.TechSpecs); err != nil {
		return nil, fmt.Errorf("product %d: bad tech specs: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(videos), &p.Videos); err != nil {
		return nil, fmt.Errorf("product %d: bad videos: %w", p.ID, err)
	}
	return &p, nil
}

func nonNilSpecs(s []entity.Spec) []entity.Spec {
	if s == nil {
		return []entity.Spec{}
	}
	return s
}

func nonNilVideos(v []entity.VideoLink) []entity.VideoLink {
	if v == nil {
		return []entity.VideoLink{}
	}
	return v
}
