package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

type sqliteQuotaTracker struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteQuotaTracker daily provider budget kept in the provider_usage table
func NewSQLiteQuotaTracker(db *sql.DB) repository.QuotaTracker {
	return &sqliteQuotaTracker{db: db, now: time.Now}
}

// Consume counts one call for today and reports whether it fits the limit
func (s *sqliteQuotaTracker) Consume(ctx context.Context, provider string, limit int) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	day := s.now().Format("2006-01-02")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var used int
	err = tx.QueryRowContext(ctx, `SELECT count FROM provider_usage WHERE provider = ? AND day = ?`, provider, day).Scan(&used)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to read usage: %w", err)
	}
	if used >= limit {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO provider_usage (provider, day, count) VALUES (?, ?, 1)
ON CONFLICT(provider, day) DO UPDATE SET count = count + 1`, provider, day)
	if err != nil {
		return false, fmt.Errorf("failed to record usage: %w", err)
	}
	return true, tx.Commit()
}
