package repository

import (
	"context"
	"time"

	"github.com/fiadolabs/fiado/internal/payout/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, payout *domain.Payout) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payouts (id, payout_key, charge_txid, debt_id, merchant_id, gross_amount, fee_amount, net_amount, destination_key, status, attempts, end_to_end_id, last_error, completed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)
		 ON CONFLICT (payout_key) DO UPDATE SET
		   attempts = payouts.attempts + 1,
		   status = excluded.status,
		   updated_at = excluded.updated_at`,
		payout.ID,
		payout.PayoutKey,
		payout.ChargeTxid,
		payout.DebtID,
		payout.MerchantID,
		payout.GrossAmount,
		payout.FeeAmount,
		payout.NetAmount,
		payout.DestinationKey,
		payout.Status,
		payout.Attempts,
		payout.EndToEndID,
		payout.LastError,
		payout.CreatedAt,
		payout.UpdatedAt,
	).Error
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.Payout, error) {
	var payout domain.Payout
	err := db.WithContext(ctx).Raw(
		`SELECT id, payout_key, charge_txid, debt_id, merchant_id, gross_amount, fee_amount, net_amount, destination_key, status, attempts, end_to_end_id, last_error, completed_at, created_at, updated_at
		 FROM payouts WHERE payout_key = ?`,
		key,
	).Scan(&payout).Error
	if err != nil {
		return nil, err
	}
	if payout.PayoutKey == "" {
		return nil, nil
	}
	return &payout, nil
}

func (r *repo) MarkCompleted(ctx context.Context, db *gorm.DB, key, endToEndID string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payouts SET status = ?, end_to_end_id = ?, last_error = '', completed_at = ?, updated_at = ? WHERE payout_key = ?`,
		domain.StatusCompleted,
		endToEndID,
		now,
		now,
		key,
	).Error
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, key, lastError string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payouts SET status = ?, last_error = ?, updated_at = ? WHERE payout_key = ?`,
		domain.StatusFailed,
		lastError,
		now,
		key,
	).Error
}
