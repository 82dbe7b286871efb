package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"go.uber.org/zap"
)

type fakeRunner struct {
	jobs []string
	err  error
}

func (f *fakeRunner) RunJob(ctx context.Context, jobID string) error {
	f.jobs = append(f.jobs, jobID)
	return f.err
}

func TestTaskPayloadRoundTrip(t *testing.T) {
	task, err := NewProductAssetsTask(ProductAssetsPayload{JobID: "job-1", ProductID: 12})
	require.NoError(t, err)
	assert.Equal(t, TaskProductAssets, task.Type())

	payload, err := ParseProductAssetsPayload(task)
	require.NoError(t, err)
	assert.Equal(t, ProductAssetsPayload{JobID: "job-1", ProductID: 12}, payload)

	_, err = ParseProductAssetsPayload(asynq.NewTask(TaskProductAssets, []byte("{")))
	assert.Error(t, err)
}

func TestWorkerHandler(t *testing.T) {
	ctx := context.Background()
	task, err := NewProductAssetsTask(ProductAssetsPayload{JobID: "job-1", ProductID: 12})
	require.NoError(t, err)

	runner := &fakeRunner{}
	w := newWorker(runner, zap.NewNop())
	require.NoError(t, w.mux.ProcessTask(ctx, task))
	assert.Equal(t, []string{"job-1"}, runner.jobs)

	runner.err = fmt.Errorf("load job: %w", entity.ErrJobNotFound)
	err = w.mux.ProcessTask(ctx, task)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	runner.err = errors.New("database is locked")
	err = w.mux.ProcessTask(ctx, task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	err = w.mux.ProcessTask(ctx, asynq.NewTask(TaskProductAssets, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestClientEnqueue(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient("redis://"+mr.Addr()+"/0", "product-assets")
	require.NoError(t, err)
	defer client.Close()

	job := entity.AssetJob{ID: "3f1c2a9e", ProductID: 5, CreatedAt: time.Now()}
	require.NoError(t, client.EnqueueAssetJob(context.Background(), job))

	assert.True(t, mr.Exists("asynq:{product-assets}:t:3f1c2a9e"))

	err = client.EnqueueAssetJob(context.Background(), job)
	assert.ErrorIs(t, err, asynq.ErrTaskIDConflict)
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("", "q")
	assert.Error(t, err)

	_, err = NewWorker("", "q", 1, &fakeRunner{}, nil)
	assert.Error(t, err)
}
