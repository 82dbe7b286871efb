package repository

import (
	"context"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// AssetTaskQueue hands asset jobs to background workers
type AssetTaskQueue interface {
	EnqueueAssetJob(ctx context.Context, job entity.AssetJob) error
}

// Notifier sends operator reports
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
