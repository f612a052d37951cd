package payout_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/payout"
	"github.com/fiadolabs/fiado/internal/payout/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEnqueueIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupQueueDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	q := newQueue(db, clk)

	payload := testPayload("100.00")
	if err := q.Enqueue(ctx, nil, "payout-AA11", payload); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	other := payload
	other.GrossAmount, _ = decimal.NewFromString("999.00")
	if err := q.Enqueue(ctx, nil, "payout-AA11", other); err != nil {
		t.Fatalf("enqueue replay: %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payout_jobs", 1)

	jobs, err := q.Claim(ctx, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	var got domain.JobPayload
	if err := jobsPayload(jobs[0], &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.GrossAmount.StringFixed(2) != "100.00" {
		t.Fatalf("expected original payload to survive the replay, got gross %s", got.GrossAmount.StringFixed(2))
	}
}

func TestClaimMovesJobsToRunning(t *testing.T) {
	ctx := context.Background()
	db := setupQueueDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	q := newQueue(db, clk)

	if err := q.Enqueue(ctx, nil, "payout-AA11", testPayload("10.00")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	jobs, err := q.Claim(ctx, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != domain.JobRunning {
		t.Fatalf("expected one running job, got %+v", jobs)
	}
	if jobs[0].LockedAt == nil {
		t.Fatalf("expected locked_at to be set")
	}

	again, err := q.Claim(ctx, 10)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected running job to be invisible, got %d", len(again))
	}
}

func TestClaimHonorsRunAt(t *testing.T) {
	ctx := context.Background()
	db := setupQueueDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	q := newQueue(db, clk)

	if err := q.Enqueue(ctx, nil, "payout-AA11", testPayload("10.00")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Reschedule(ctx, "payout-AA11", time.Minute); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	jobs, err := q.Claim(ctx, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no due jobs yet, got %d", len(jobs))
	}

	clk.Advance(time.Minute)
	jobs, err = q.Claim(ctx, 10)
	if err != nil {
		t.Fatalf("claim after advance: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected the job to be due, got %d", len(jobs))
	}
}

func TestBackoffSchedule(t *testing.T) {
	db := setupQueueDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	q := newQueue(db, clk)

	// With five attempts only four delays are ever applied; the fifth
	// failure parks the job instead of rescheduling it.
	expected := []time.Duration{
		5 * time.Second,
		10 * time.Second,
		20 * time.Second,
		40 * time.Second,
	}
	for i, want := range expected {
		if got := q.Backoff(i + 1); got != want {
			t.Fatalf("Backoff(%d) = %s, expected %s", i+1, got, want)
		}
	}
}

func TestFailReschedulesUntilExhausted(t *testing.T) {
	ctx := context.Background()
	db := setupQueueDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	q := newQueue(db, clk)

	if err := q.Enqueue(ctx, nil, "payout-AA11", testPayload("10.00")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := q.Claim(ctx, 1); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := q.Fail(ctx, "payout-AA11", 1, 5, errors.New("gateway down")); err != nil {
		t.Fatalf("fail: %v", err)
	}

	var job domain.Job
	if err := db.Raw("SELECT * FROM payout_jobs WHERE job_id = ?", "payout-AA11").Scan(&job).Error; err != nil {
		t.Fatalf("scan job: %v", err)
	}
	if job.Status != domain.JobPending {
		t.Fatalf("expected pending after first failure, got %s", job.Status)
	}
	if job.LastError != "gateway down" {
		t.Fatalf("expected last_error recorded, got %q", job.LastError)
	}
	wantRunAt := clk.Now().Add(5 * time.Second)
	if !job.RunAt.Equal(wantRunAt) {
		t.Fatalf("expected run_at %s, got %s", wantRunAt, job.RunAt)
	}

	if err := q.Fail(ctx, "payout-AA11", 5, 5, errors.New("still down")); err != nil {
		t.Fatalf("terminal fail: %v", err)
	}
	if err := db.Raw("SELECT * FROM payout_jobs WHERE job_id = ?", "payout-AA11").Scan(&job).Error; err != nil {
		t.Fatalf("scan job: %v", err)
	}
	if job.Status != domain.JobFailed {
		t.Fatalf("expected terminal failed state, got %s", job.Status)
	}
}

func TestRecoverStuckRequeuesAbandonedJobs(t *testing.T) {
	ctx := context.Background()
	db := setupQueueDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	q := newQueue(db, clk)

	if err := q.Enqueue(ctx, nil, "payout-AA11", testPayload("10.00")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := q.Claim(ctx, 1); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Inside the threshold nothing moves.
	clk.Advance(time.Minute)
	recovered, err := q.RecoverStuck(ctx)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered != 0 {
		t.Fatalf("expected no recovery before the threshold, got %d", recovered)
	}

	clk.Advance(10 * time.Minute)
	recovered, err = q.RecoverStuck(ctx)
	if err != nil {
		t.Fatalf("recover after threshold: %v", err)
	}
	if recovered != 1 {
		t.Fatalf("expected 1 recovered job, got %d", recovered)
	}

	jobs, err := q.Claim(ctx, 10)
	if err != nil {
		t.Fatalf("claim recovered: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected the recovered job to be claimable, got %d", len(jobs))
	}
}

func TestDepthCountsPendingJobs(t *testing.T) {
	ctx := context.Background()
	db := setupQueueDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	q := newQueue(db, clk)

	for i := 0; i < 3; i++ {
		jobID := fmt.Sprintf("payout-AA1%d", i)
		if err := q.Enqueue(ctx, nil, jobID, testPayload("10.00")); err != nil {
			t.Fatalf("enqueue %s: %v", jobID, err)
		}
	}
	if _, err := q.Claim(ctx, 1); err != nil {
		t.Fatalf("claim: %v", err)
	}

	depth, err := q.Depth(ctx)
	if err != nil {
		t.Fatalf("depth: %v", err)
	}
	if depth != 2 {
		t.Fatalf("expected depth 2, got %d", depth)
	}
}

func newQueue(db *gorm.DB, clk clock.Clock) *payout.Queue {
	return payout.NewQueue(payout.QueueParams{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clk,
	})
}

func testPayload(gross string) domain.JobPayload {
	amount, _ := decimal.NewFromString(gross)
	return domain.JobPayload{
		ChargeTxid:     "9E881F1EFD4C4B0F8E4B1C6A2D3F5A7B",
		DebtID:         "debt-1",
		MerchantID:     "merchant-1",
		GrossAmount:    amount,
		DestinationKey: "merchant@example.com",
	}
}

func jobsPayload(job domain.Job, out *domain.JobPayload) error {
	return json.Unmarshal(job.Payload, out)
}

func setupQueueDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.Exec(`CREATE TABLE payout_jobs (
		job_id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		run_at DATETIME NOT NULL,
		locked_at DATETIME,
		last_error TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("schema exec failed: %v", err)
	}

	return db
}

func assertCount(t *testing.T, db *gorm.DB, query string, expected int64) {
	t.Helper()

	var count int64
	if err := db.Raw(query).Scan(&count).Error; err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != expected {
		t.Fatalf("expected %d, got %d", expected, count)
	}
}
