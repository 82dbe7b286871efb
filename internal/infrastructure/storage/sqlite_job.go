package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

type sqliteJobRepository struct {
	db *sql.DB
}

// NewSQLiteJobRepository SQLite backed asset job repository
func NewSQLiteJobRepository(db *sql.DB) repository.JobRepository {
	return &sqliteJobRepository{db: db}
}

// CreateJob stores a new job
func (s *sqliteJobRepository) CreateJob(ctx context.Context, job *entity.AssetJob) error {
	logLines, err := json.Marshal(nonNilLog(job.Log))
	if err != nil {
		return err
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `INSERT INTO asset_jobs (id, product_id, assets, force_assets, status, message, log,
	created_at, updated_at, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.ProductID, joinAssets(job.Assets), joinAssets(job.Force), string(job.Status), job.Message,
		string(logLines), job.CreatedAt, job.UpdatedAt, job.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// UpdateJob persists status, message, log and finish time
func (s *sqliteJobRepository) UpdateJob(ctx context.Context, job *entity.AssetJob) error {
	logLines, err := json.Marshal(nonNilLog(job.Log))
	if err != nil {
		return err
	}
	job.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `UPDATE asset_jobs SET status = ?, message = ?, log = ?, updated_at = ?, finished_at = ?
WHERE id = ?`,
		string(job.Status), job.Message, string(logLines), job.UpdatedAt, job.FinishedAt, job.ID)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", job.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrJobNotFound
	}
	return nil
}

// GetJob returns entity.ErrJobNotFound when missing
func (s *sqliteJobRepository) GetJob(ctx context.Context, id string) (*entity.AssetJob, error) {
	var (
		job                   entity.AssetJob
		assets, force, status string
		logLines              string
		finished              sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, product_id, assets, force_assets, status, message, log, created_at,
	updated_at, finished_at FROM asset_jobs WHERE id = ?`, id).
		Scan(&job.ID, &job.ProductID, &assets, &force, &status, &job.Message, &logLines,
			&job.CreatedAt, &job.UpdatedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	job.Assets = splitAssets(assets)
	job.Force = splitAssets(force)
	job.Status = entity.JobStatus(status)
	if finished.Valid {
		t := finished.Time
		job.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(logLines), &job.Log); err != nil {
		return nil, fmt.Errorf("job %s: bad log: %w", id, err)
	}
	return &job, nil
}

// ActiveProductIDs products with a queued or running job
func (s *sqliteJobRepository) ActiveProductIDs(ctx context.Context) (map[int64]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT product_id FROM asset_jobs WHERE status IN (?, ?)`,
		string(entity.JobQueued), string(entity.JobRunning))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func joinAssets(assets []entity.AssetType) string {
	parts := make([]string, len(assets))
	for i, a := range assets {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}

func splitAssets(raw string) []entity.AssetType {
	var out []entity.AssetType
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, entity.AssetType(part))
		}
	}
	return out
}

func nonNilLog(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
