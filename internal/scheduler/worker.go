package scheduler

import (
	"context"
	"fmt"
	"time"

	"enova_backend/platform/apperr"
	"enova_backend/platform/config"
	"enova_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// DefaultWarmupYears is how many recent years a warm-up covers when the
// payload names none.
const DefaultWarmupYears = 5

// Warmer refreshes cached energy data.
type Warmer interface {
	WarmUp(ctx context.Context, years []int, forceRefresh bool) error
	RecentYears(n int) []int
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	warmer Warmer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, warmer Warmer, log *logger.Logger) (*Worker, error) {
	opt, err := redisConnOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		Logger: newAsynqLogger(log),
	})

	w := newWorker(warmer, log)
	w.server = server
	return w, nil
}

func newWorker(warmer Warmer, log *logger.Logger) *Worker {
	w := &Worker{
		mux:    asynq.NewServeMux(),
		warmer: warmer,
		log:    log,
	}
	w.mux.HandleFunc(TaskEnergyDataWarmup, w.handleWarmup)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleWarmup(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseWarmupPayload(task)
	if err != nil {
		return fmt.Errorf("parse warm-up payload: %w: %w", err, asynq.SkipRetry)
	}

	if taskID, ok := asynq.GetTaskID(ctx); ok {
		ctx = context.WithValue(ctx, logger.TaskIDKey, taskID)
	}
	log := w.log.WithContext(ctx)

	years := payload.Years
	if len(years) == 0 {
		years = w.warmer.RecentYears(DefaultWarmupYears)
	}

	start := time.Now()
	log.Info("energy data warm-up started", "years", years, "forceRefresh", payload.ForceRefresh)
	if err := w.warmer.WarmUp(ctx, years, payload.ForceRefresh); err != nil {
		if !apperr.IsTransient(err) {
			log.Warn("energy data warm-up failed permanently", "error", err)
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	log.Info("energy data warm-up finished", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
