package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"go.uber.org/zap"
)

// JobRunner executes a stored asset job
type JobRunner interface {
	RunJob(ctx context.Context, jobID string) error
}

// Worker asynq server running asset jobs
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner JobRunner
	log    *zap.Logger
}

// NewWorker listens on a single queue
func NewWorker(redisURL, queue string, concurrency int, runner JobRunner, log *zap.Logger) (*Worker, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	if queue == "" {
		queue = "default"
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(runner, log)
	w.server = server
	return w, nil
}

func newWorker(runner JobRunner, log *zap.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:    mux,
		runner: runner,
		log:    log,
	}
	mux.HandleFunc(TaskProductAssets, w.handleProductAssets)
	return w
}

func (w *Worker) handleProductAssets(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseProductAssetsPayload(task)
	if err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	log := w.log.With(zap.String("job_id", payload.JobID), zap.Int64("product_id", payload.ProductID))
	log.Info("asset job started")

	if err := w.runner.RunJob(ctx, payload.JobID); err != nil {
		if errors.Is(err, entity.ErrJobNotFound) || errors.Is(err, entity.ErrProductNotFound) {
			log.Warn("asset job dropped", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		log.Error("asset job failed", zap.Error(err))
		return err
	}

	log.Info("asset job finished")
	return nil
}

// Run processes tasks until ctx is cancelled, then waits for running tasks
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("asset worker failed to start", zap.Error(err))
		return fmt.Errorf("failed to start asset worker: %w", err)
	}

	<-ctx.Done()
	w.server.Shutdown()
	w.log.Info("asset worker stopped")
	return nil
}
