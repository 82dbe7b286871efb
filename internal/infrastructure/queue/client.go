package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// jobTimeout upper bound for one product run (text calls plus image tries)
const jobTimeout = 10 * time.Minute

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(redisURL, queue string) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueAssetJob queues one product run; the job ID doubles as the task ID so a job is queued once
func (c *Client) EnqueueAssetJob(ctx context.Context, job entity.AssetJob) error {
	task, err := NewProductAssetsTask(ProductAssetsPayload{JobID: job.ID, ProductID: job.ProductID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(job.ID),
		asynq.MaxRetry(0),
		asynq.Timeout(jobTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}
	return nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
