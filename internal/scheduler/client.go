package scheduler

import (
	"context"
	"time"

	"enova_backend/platform/cache"
	"enova_backend/platform/config"

	"github.com/hibiken/asynq"
)

const (
	defaultQueue   = "default"
	warmupMaxRetry = 3
	warmupTimeout  = 30 * time.Minute
)

// WarmupEnqueuer queues cache warm-up runs.
type WarmupEnqueuer interface {
	EnqueueWarmup(ctx context.Context, payload WarmupPayload) error
}

// Client enqueues warm-up tasks for the worker.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisConnOpt(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{client: asynq.NewClient(opt), queue: queueName(cfg)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueWarmup queues one warm-up run. A nil client is a no-op.
func (c *Client) EnqueueWarmup(ctx context.Context, payload WarmupPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewWarmupTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, warmupOptions(c.queue)...)
	return err
}

func warmupOptions(queue string) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(queue),
		asynq.MaxRetry(warmupMaxRetry),
		asynq.Timeout(warmupTimeout),
	}
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return defaultQueue
}

// redisConnOpt reuses the cache's REDIS_URL parsing so the queue and the
// cache always talk to the same server.
func redisConnOpt(cfg config.CacheConfig) (asynq.RedisClientOpt, error) {
	opt, err := cache.ParseRedisURL(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
