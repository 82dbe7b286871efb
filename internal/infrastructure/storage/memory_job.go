package storage

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

type memoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]entity.AssetJob
}

// NewMemoryJobRepository in-memory asset job repository
func NewMemoryJobRepository() repository.JobRepository {
	return &memoryJobRepository{jobs: make(map[string]entity.AssetJob)}
}

// CreateJob stores a new job
func (m *memoryJobRepository) CreateJob(ctx context.Context, job *entity.AssetJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	m.jobs[job.ID] = cloneJob(*job)
	return nil
}

// UpdateJob replaces a stored job
func (m *memoryJobRepository) UpdateJob(ctx context.Context, job *entity.AssetJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.ID]; !ok {
		return entity.ErrJobNotFound
	}
	job.UpdatedAt = time.Now()
	m.jobs[job.ID] = cloneJob(*job)
	return nil
}

// GetJob returns a copy of the job
func (m *memoryJobRepository) GetJob(ctx context.Context, id string) (*entity.AssetJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, entity.ErrJobNotFound
	}
	j := cloneJob(job)
	return &j, nil
}

// ActiveProductIDs products with a queued or running job
func (m *memoryJobRepository) ActiveProductIDs(ctx context.Context) (map[int64]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]bool)
	for _, job := range m.jobs {
		if job.Status.Active() {
			out[job.ProductID] = true
		}
	}
	return out, nil
}

func cloneJob(j entity.AssetJob) entity.AssetJob {
	j.Assets = append([]entity.AssetType(nil), j.Assets...)
	j.Force = append([]entity.AssetType(nil), j.Force...)
	j.Log = append([]string(nil), j.Log...)
	return j
}
