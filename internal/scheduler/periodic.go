package scheduler

import (
	"context"
	"fmt"
	"time"

	"enova_backend/platform/config"
	"enova_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the warm-up task on the configured cron schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	entryID   string
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, err := redisConnOpt(cfg)
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})

	task, err := NewWarmupTask(WarmupPayload{})
	if err != nil {
		return nil, err
	}

	entryID, err := scheduler.Register(cfg.GetWarmupCron(), task, warmupOptions(queueName(cfg))...)
	if err != nil {
		return nil, fmt.Errorf("register warm-up schedule %q: %w", cfg.GetWarmupCron(), err)
	}

	return &Periodic{scheduler: scheduler, entryID: entryID, log: log}, nil
}

// Run starts the scheduler and blocks until ctx is done.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	if err := p.scheduler.Start(); err != nil {
		p.log.Error("warm-up scheduler failed to start", "error", err)
		return
	}
	p.log.Info("warm-up scheduler started", "entryID", p.entryID)

	<-ctx.Done()
	p.scheduler.Shutdown()
}
