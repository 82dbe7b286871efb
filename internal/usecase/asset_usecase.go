package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"go.uber.org/zap"
)

// BatchRequest product-asset-bot options
type BatchRequest struct {
	Limit  int
	Assets []entity.AssetType
	Force  map[entity.AssetType]bool
	// Inline runs the pipeline in this process instead of queueing jobs
	Inline bool
	// DryRun only reports the selected products
	DryRun bool
}

// BatchItem outcome for one selected product
type BatchItem struct {
	Product entity.Product
	JobID   string
	Queued  bool
	Result  *entity.EnrichmentResult
	Err     error
}

// BatchSummary outcome of one product-asset-bot run
type BatchSummary struct {
	Selected      int
	SkippedActive int
	Queued        int
	Complete      int
	Partial       int
	Failed        int
	DryRun        bool
	Items         []BatchItem
}

// AssetUseCase selects products missing assets and runs or queues the pipeline for them
type AssetUseCase interface {
	RunBatch(ctx context.Context, req BatchRequest) (*BatchSummary, error)
	// RunJob executes a stored job; called by the queue worker
	RunJob(ctx context.Context, jobID string) error
}

type assetUseCase struct {
	productRepo repository.ProductRepository
	jobRepo     repository.JobRepository
	enricher    ProductEnricher
	queue       repository.AssetTaskQueue
	log         *zap.Logger
	now         func() time.Time
}

// NewAssetUseCase queue may be nil when only inline runs are possible
func NewAssetUseCase(
	productRepo repository.ProductRepository,
	jobRepo repository.JobRepository,
	enricher ProductEnricher,
	queue repository.AssetTaskQueue,
	log *zap.Logger,
) AssetUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &assetUseCase{
		productRepo: productRepo,
		jobRepo:     jobRepo,
		enricher:    enricher,
		queue:       queue,
		log:         log,
		now:         time.Now,
	}
}

// RunBatch per-product failures are counted, the batch continues
func (u *assetUseCase) RunBatch(ctx context.Context, req BatchRequest) (*BatchSummary, error) {
	if len(req.Assets) == 0 {
		req.Assets = append([]entity.AssetType(nil), entity.DefaultAssets...)
	}
	if !req.Inline && !req.DryRun && u.queue == nil {
		return nil, entity.ErrQueueDisabled
	}

	products, err := u.productRepo.GetAll(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	active, err := u.jobRepo.ActiveProductIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active jobs: %w", err)
	}

	summary := &BatchSummary{DryRun: req.DryRun}
	enrichReq := entity.EnrichmentRequest{Assets: req.Assets, Force: req.Force}
	for _, product := range products {
		if req.Limit > 0 && summary.Selected >= req.Limit {
			break
		}
		if !NeedsEnrichment(product, enrichReq) {
			continue
		}
		if active[product.ID] {
			summary.SkippedActive++
			continue
		}
		summary.Selected++

		if req.DryRun {
			summary.Items = append(summary.Items, BatchItem{Product: product})
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		item := u.startJob(ctx, product, enrichReq, req.Inline)
		switch {
		case item.Err != nil:
			summary.Failed++
		case item.Queued:
			summary.Queued++
		case item.Result.State == entity.StateComplete:
			summary.Complete++
		default:
			summary.Partial++
		}
		summary.Items = append(summary.Items, item)
	}

	u.log.Info("asset batch finished",
		zap.Int("selected", summary.Selected),
		zap.Int("skipped_active", summary.SkippedActive),
		zap.Int("queued", summary.Queued),
		zap.Int("complete", summary.Complete),
		zap.Int("partial", summary.Partial),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (u *assetUseCase) startJob(ctx context.Context, product entity.Product, req entity.EnrichmentRequest, inline bool) BatchItem {
	now := u.now()
	job := &entity.AssetJob{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Assets:    req.Assets,
		Force:     forcedAssets(req),
		Status:    entity.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if inline {
		job.Status = entity.JobRunning
	}
	item := BatchItem{Product: product, JobID: job.ID}

	if err := u.jobRepo.CreateJob(ctx, job); err != nil {
		item.Err = fmt.Errorf("failed to create job: %w", err)
		return item
	}

	if !inline {
		if err := u.queue.EnqueueAssetJob(ctx, *job); err != nil {
			job.Finish(entity.JobFailed, err.Error(), u.now())
			if uerr := u.jobRepo.UpdateJob(ctx, job); uerr != nil {
				u.log.Error("failed to mark job failed", zap.String("job_id", job.ID), zap.Error(uerr))
			}
			item.Err = err
			return item
		}
		item.Queued = true
		return item
	}

	item.Result, item.Err = u.execute(ctx, job, product)
	return item
}

// RunJob skips jobs that are no longer queued
func (u *assetUseCase) RunJob(ctx context.Context, jobID string) error {
	job, err := u.jobRepo.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job.Status != entity.JobQueued {
		u.log.Info("job already handled", zap.String("job_id", jobID), zap.String("status", string(job.Status)))
		return nil
	}

	job.Status = entity.JobRunning
	job.UpdatedAt = u.now()
	if err := u.jobRepo.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to start job %s: %w", jobID, err)
	}

	product, err := u.productRepo.GetByID(ctx, job.ProductID)
	if err != nil {
		u.finish(ctx, job, entity.JobFailed, err.Error())
		return fmt.Errorf("failed to load product %d: %w", job.ProductID, err)
	}

	_, err = u.execute(ctx, job, *product)
	return err
}

// execute runs the pipeline and stores the outcome on the job
func (u *assetUseCase) execute(ctx context.Context, job *entity.AssetJob, product entity.Product) (*entity.EnrichmentResult, error) {
	result, err := u.enricher.Enrich(ctx, product, job.Request())
	if result != nil {
		for _, a := range result.Assets {
			job.Log = append(job.Log, a.String())
		}
	}
	if err != nil {
		u.finish(ctx, job, entity.JobFailed, err.Error())
		return result, err
	}

	if result.State == entity.StatePartialFailure {
		var failed []string
		for _, a := range result.Assets {
			if a.Status == entity.AssetFailed {
				failed = append(failed, string(a.Asset))
			}
		}
		u.finish(ctx, job, entity.JobFailed, "partial failure: "+strings.Join(failed, ", "))
		return result, nil
	}
	u.finish(ctx, job, entity.JobSuccess, string(result.State))
	return result, nil
}

func (u *assetUseCase) finish(ctx context.Context, job *entity.AssetJob, status entity.JobStatus, message string) {
	job.Finish(status, message, u.now())
	// the run outcome must be recorded even when the caller's context is done
	if err := u.jobRepo.UpdateJob(context.WithoutCancel(ctx), job); err != nil {
		u.log.Error("failed to update job", zap.String("job_id", job.ID), zap.Error(err))
	}
}

// NeedsEnrichment reports whether any requested asset is missing or forced
func NeedsEnrichment(p entity.Product, req entity.EnrichmentRequest) bool {
	for _, asset := range req.Assets {
		if req.Forced(asset) || MissingAsset(p, asset) {
			return true
		}
	}
	return false
}

// MissingAsset reports whether the product lacks the asset
func MissingAsset(p entity.Product, asset entity.AssetType) bool {
	switch asset {
	case entity.AssetDescription:
		return p.ShortDescription == "" || p.LongDescription == ""
	case entity.AssetTechSheet:
		return len(p.TechSpecs) == 0
	case entity.AssetBlog:
		return p.BlogDraft == ""
	case entity.AssetVideos:
		return len(p.Videos) == 0
	case entity.AssetImages:
		return !p.HasRealImage()
	}
	return false
}

func forcedAssets(req entity.EnrichmentRequest) []entity.AssetType {
	var out []entity.AssetType
	for _, a := range entity.AllAssets {
		if req.Forced(a) {
			out = append(out, a)
		}
	}
	return out
}
