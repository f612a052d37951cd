package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, charge *Charge) error
	FindByTxid(ctx context.Context, db *gorm.DB, txid string) (*Charge, error)

	// MarkCompleted flips an ACTIVE charge to COMPLETED and reports whether
	// a row changed, so duplicate notifications detect the replay.
	MarkCompleted(ctx context.Context, db *gorm.DB, txid, endToEndID string, paidAt, now time.Time) (bool, error)
}
