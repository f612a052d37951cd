package payout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/observability/metrics"
	"github.com/fiadolabs/fiado/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QueueConfig controls claiming, retry and recovery behavior.
type QueueConfig struct {
	ClaimBatchSize int
	MaxAttempts    int
	InitialBackoff time.Duration
	StuckThreshold time.Duration
	PollInterval   time.Duration
}

func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		ClaimBatchSize: 10,
		MaxAttempts:    5,
		InitialBackoff: 5 * time.Second,
		StuckThreshold: 5 * time.Minute,
		PollInterval:   time.Second,
	}
}

func (c QueueConfig) withDefaults() QueueConfig {
	defaults := DefaultQueueConfig()
	if c.ClaimBatchSize <= 0 {
		c.ClaimBatchSize = defaults.ClaimBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaults.InitialBackoff
	}
	if c.StuckThreshold <= 0 {
		c.StuckThreshold = defaults.StuckThreshold
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	return c
}

// Queue is the durable payout job table. Jobs survive restarts and are
// claimed with row locks, so several worker processes can share it.
type Queue struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	cfg     QueueConfig
	metrics *metrics.Metrics
}

type QueueParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Config  QueueConfig      `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

func NewQueue(p QueueParams) *Queue {
	return &Queue{
		db:      p.DB,
		log:     p.Log.Named("payout.queue"),
		clock:   p.Clock,
		cfg:     p.Config.withDefaults(),
		metrics: p.Metrics,
	}
}

// Enqueue inserts a job on the caller's handle, which may be a transaction.
// A job id already present is left untouched, whatever its state.
func (q *Queue) Enqueue(ctx context.Context, db *gorm.DB, jobID string, payload domain.JobPayload) error {
	if db == nil {
		db = q.db
	}
	if jobID == "" {
		return fmt.Errorf("enqueue: empty job id")
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("enqueue: encode payload: %w", err)
	}

	now := q.clock.Now()
	return db.WithContext(ctx).Exec(
		`INSERT INTO payout_jobs (job_id, payload, status, attempts, max_attempts, run_at, last_error, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?, '', ?, ?)
		 ON CONFLICT (job_id) DO NOTHING`,
		jobID,
		encoded,
		domain.JobPending,
		q.cfg.MaxAttempts,
		now,
		now,
		now,
	).Error
}

// Claim moves up to limit due jobs to running and returns them. Rows are
// locked during selection so concurrent workers never claim the same job.
func (q *Queue) Claim(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = q.cfg.ClaimBatchSize
	}

	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	now := q.clock.Now()
	var jobs []domain.Job
	err := q.db.WithContext(claimCtx).Transaction(func(tx *gorm.DB) error {
		query := `SELECT job_id, payload, status, attempts, max_attempts, run_at, locked_at, last_error, created_at, updated_at
		 FROM payout_jobs
		 WHERE status = ? AND run_at <= ?
		 ORDER BY run_at ASC, job_id ASC`
		// sqlite has no row locks; the claim transaction is enough there.
		if q.supportsRowLocks() {
			query += "\n\t\t FOR UPDATE SKIP LOCKED"
		}
		query += "\n\t\t LIMIT ?"

		if err := tx.Raw(query, domain.JobPending, now, limit).Scan(&jobs).Error; err != nil {
			return err
		}
		for i := range jobs {
			if err := tx.Exec(
				`UPDATE payout_jobs SET status = ?, locked_at = ?, updated_at = ? WHERE job_id = ?`,
				domain.JobRunning, now, now, jobs[i].JobID,
			).Error; err != nil {
				return err
			}
			jobs[i].Status = domain.JobRunning
			lockedAt := now
			jobs[i].LockedAt = &lockedAt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkAttempt bumps the attempt counter for a claimed job.
func (q *Queue) MarkAttempt(ctx context.Context, jobID string, attempts int) error {
	return q.db.WithContext(ctx).Exec(
		`UPDATE payout_jobs SET attempts = ?, updated_at = ? WHERE job_id = ?`,
		attempts, q.clock.Now(), jobID,
	).Error
}

func (q *Queue) Complete(ctx context.Context, jobID string) error {
	now := q.clock.Now()
	return q.db.WithContext(ctx).Exec(
		`UPDATE payout_jobs SET status = ?, locked_at = NULL, last_error = '', updated_at = ? WHERE job_id = ?`,
		domain.JobCompleted, now, jobID,
	).Error
}

// Fail applies the retry policy after a failed attempt: reschedule with
// exponential backoff until attempts are exhausted, then park the job in a
// terminal failed state for inspection.
func (q *Queue) Fail(ctx context.Context, jobID string, attempts, maxAttempts int, attemptErr error) error {
	now := q.clock.Now()
	message := ""
	if attemptErr != nil {
		message = attemptErr.Error()
	}

	if attempts >= maxAttempts {
		q.log.Error("payout job exhausted retries",
			zap.String("job_id", jobID),
			zap.Int("attempts", attempts),
			zap.String("last_error", message),
		)
		return q.db.WithContext(ctx).Exec(
			`UPDATE payout_jobs SET status = ?, locked_at = NULL, last_error = ?, updated_at = ? WHERE job_id = ?`,
			domain.JobFailed, message, now, jobID,
		).Error
	}

	runAt := now.Add(q.Backoff(attempts))
	return q.db.WithContext(ctx).Exec(
		`UPDATE payout_jobs SET status = ?, locked_at = NULL, last_error = ?, run_at = ?, updated_at = ? WHERE job_id = ?`,
		domain.JobPending, message, runAt, now, jobID,
	).Error
}

// Reschedule returns a claimed job to the pending state after the given
// delay without charging an attempt, used when the execution fence is held
// elsewhere.
func (q *Queue) Reschedule(ctx context.Context, jobID string, delay time.Duration) error {
	now := q.clock.Now()
	return q.db.WithContext(ctx).Exec(
		`UPDATE payout_jobs SET status = ?, locked_at = NULL, run_at = ?, updated_at = ? WHERE job_id = ?`,
		domain.JobPending, now.Add(delay), now, jobID,
	).Error
}

// Backoff returns the delay before the attempt following attempt n, doubling
// from the initial 5s. With the default five attempts the delays applied are
// 5s, 10s, 20s and 40s; the fifth failure is terminal.
func (q *Queue) Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return q.cfg.InitialBackoff << (attempts - 1)
}

// RecoverStuck requeues running jobs whose worker disappeared. A job is
// considered stuck when its lock is older than the configured threshold.
func (q *Queue) RecoverStuck(ctx context.Context) (int64, error) {
	now := q.clock.Now()
	cutoff := now.Add(-q.cfg.StuckThreshold)
	result := q.db.WithContext(ctx).Exec(
		`UPDATE payout_jobs SET status = ?, locked_at = NULL, run_at = ?, updated_at = ?
		 WHERE status = ? AND locked_at IS NOT NULL AND locked_at <= ?`,
		domain.JobPending, now, now, domain.JobRunning, cutoff,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		q.log.Warn("requeued stuck payout jobs", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// Depth reports pending jobs and refreshes the queue depth gauge.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	var depth int64
	err := q.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM payout_jobs WHERE status = ?`,
		domain.JobPending,
	).Scan(&depth).Error
	if err != nil {
		return 0, err
	}
	q.metrics.SetQueueDepth(depth)
	return depth, nil
}

func (q *Queue) PollInterval() time.Duration {
	return q.cfg.PollInterval
}

func (q *Queue) supportsRowLocks() bool {
	switch q.db.Dialector.Name() {
	case "postgres", "mysql":
		return true
	default:
		return false
	}
}
