package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

type sqliteCustomerRepository struct {
	db *sql.DB
}

// NewSQLiteCustomerRepository SQLite backed customer repository
func NewSQLiteCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &sqliteCustomerRepository{db: db}
}

const customerColumns = `id, reference, name, company, phone, email, city, country, salesperson, activity, created_at, updated_at`

// SaveCustomer inserts when ID is zero, otherwise updates
func (s *sqliteCustomerRepository) SaveCustomer(ctx context.Context, c *entity.Customer) error {
	now := time.Now()
	c.UpdatedAt = now
	if c.ID == 0 {
		c.CreatedAt = now
		res, err := s.db.ExecContext(ctx, `INSERT INTO customers (reference, name, company, phone, email, city, country,
	salesperson, activity, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Reference, c.Name, c.Company, c.Phone, c.Email, c.City, c.Country, c.Salesperson, c.Activity,
			c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		c.ID = id
		return nil
	}

	_, err := s.db.ExecContext(ctx, `UPDATE customers SET name = ?, company = ?, phone = ?, email = ?, city = ?,
	country = ?, salesperson = ?, activity = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Company, c.Phone, c.Email, c.City, c.Country, c.Salesperson, c.Activity, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer %d: %w", c.ID, err)
	}
	return nil
}

// FindExisting name or company, then email, then phone
func (s *sqliteCustomerRepository) FindExisting(ctx context.Context, name, email, phone string) (*entity.Customer, error) {
	lookups := []struct {
		where string
		value string
	}{
		{`lower(name) = lower(?1) OR lower(company) = lower(?1)`, strings.TrimSpace(name)},
		{`lower(email) = lower(?1)`, strings.TrimSpace(email)},
		{`phone = ?1`, strings.TrimSpace(phone)},
	}

	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		row := s.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE `+l.where+` ORDER BY id LIMIT 1`, l.value)
		c, err := scanCustomer(row)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, nil
}

// GetAll customers ordered by ID
func (s *sqliteCustomerRepository) GetAll(ctx context.Context) ([]entity.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCustomer(row scanner) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.Reference, &c.Name, &c.Company, &c.Phone, &c.Email, &c.City, &c.Country,
		&c.Salesperson, &c.Activity, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
