package payout

import (
	"context"
	"sync"
	"time"

	"github.com/fiadolabs/fiado/internal/observability/metrics"
	"github.com/fiadolabs/fiado/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	fenceTTL        = 2 * time.Minute
	fenceRetryDelay = 30 * time.Second
	janitorInterval = 30 * time.Second
)

// Worker drains the payout queue with a fixed-size pool.
type Worker struct {
	queue       *Queue
	locker      *Locker
	svc         domain.Service
	log         *zap.Logger
	concurrency int
	metrics     *metrics.Metrics
}

type WorkerParams struct {
	fx.In

	Queue       *Queue
	Locker      *Locker `optional:"true"`
	Service     domain.Service
	Log         *zap.Logger
	Concurrency int              `name:"payout_concurrency" optional:"true"`
	Metrics     *metrics.Metrics `optional:"true"`
}

func NewWorker(p WorkerParams) *Worker {
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Worker{
		queue:       p.Queue,
		locker:      p.Locker,
		svc:         p.Service,
		log:         p.Log.Named("payout.worker"),
		concurrency: concurrency,
		metrics:     p.Metrics,
	}
}

// Run blocks until the context is canceled, processing jobs with the pool
// and sweeping stuck jobs in the background.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("payout worker started", zap.Int("concurrency", w.concurrency))

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.janitor(ctx)
	}()

	wg.Wait()
	w.log.Info("payout worker stopped")
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		jobs, err := w.queue.Claim(ctx, 1)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("claim failed", zap.Error(err))
			w.sleep(ctx, w.queue.PollInterval())
			continue
		}
		if len(jobs) == 0 {
			w.sleep(ctx, w.queue.PollInterval())
			continue
		}

		for _, job := range jobs {
			w.process(ctx, job)
		}
	}
}

// Process runs a single claimed job. Exported for the queue tests.
func (w *Worker) Process(ctx context.Context, job domain.Job) {
	w.process(ctx, job)
}

func (w *Worker) process(ctx context.Context, job domain.Job) {
	log := w.log.With(zap.String("job_id", job.JobID), zap.Int("attempts", job.Attempts))

	if w.locker != nil {
		token, ok, err := w.locker.TryLock(ctx, "payout:fence:"+job.JobID, fenceTTL)
		if err != nil {
			log.Error("fence error", zap.Error(err))
			_ = w.queue.Reschedule(ctx, job.JobID, fenceRetryDelay)
			return
		}
		if !ok {
			log.Warn("fence held elsewhere, rescheduling")
			_ = w.queue.Reschedule(ctx, job.JobID, fenceRetryDelay)
			return
		}
		defer func() {
			_ = w.locker.Release(ctx, "payout:fence:"+job.JobID, token)
		}()
	}

	attempts := job.Attempts + 1
	if err := w.queue.MarkAttempt(ctx, job.JobID, attempts); err != nil {
		log.Error("mark attempt failed", zap.Error(err))
		_ = w.queue.Reschedule(ctx, job.JobID, fenceRetryDelay)
		return
	}
	job.Attempts = attempts

	started := time.Now()
	err := w.attempt(ctx, job)
	elapsed := time.Since(started).Seconds()

	if err != nil {
		w.metrics.RecordPayoutAttempt("error", elapsed)
		log.Warn("payout attempt failed", zap.Int("attempt", attempts), zap.Error(err))
		if failErr := w.queue.Fail(ctx, job.JobID, attempts, job.MaxAttempts, err); failErr != nil {
			log.Error("record failure failed", zap.Error(failErr))
		}
		return
	}

	w.metrics.RecordPayoutAttempt("ok", elapsed)
	if err := w.queue.Complete(ctx, job.JobID); err != nil {
		log.Error("mark complete failed", zap.Error(err))
	}
}

func (w *Worker) attempt(ctx context.Context, job domain.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("payout attempt panicked", zap.String("job_id", job.JobID), zap.Any("panic", r))
			err = &panicError{value: r}
		}
	}()
	return w.svc.Attempt(ctx, job)
}

func (w *Worker) janitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.queue.RecoverStuck(ctx); err != nil {
				w.log.Error("recovery sweep failed", zap.Error(err))
			}
			if _, err := w.queue.Depth(ctx); err != nil {
				w.log.Error("queue depth check failed", zap.Error(err))
			}
		}
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return "payout attempt panicked"
}
