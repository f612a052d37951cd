package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// Upsert inserts the payout on the first attempt; a replay for the same
	// key bumps the attempt counter and resets the status to IN_PROGRESS.
	Upsert(ctx context.Context, db *gorm.DB, payout *Payout) error

	FindByKey(ctx context.Context, db *gorm.DB, key string) (*Payout, error)
	MarkCompleted(ctx context.Context, db *gorm.DB, key, endToEndID string, now time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, key, lastError string, now time.Time) error
}
