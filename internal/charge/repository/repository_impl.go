package repository

import (
	"context"
	"time"

	"github.com/fiadolabs/fiado/internal/charge/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, charge *domain.Charge) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO charges (txid, debt_id, merchant_id, amount, status, loc_id, loc_url, pix_copia_e_cola, qr_code_base64, end_to_end_id, paid_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		charge.Txid,
		charge.DebtID,
		charge.MerchantID,
		charge.Amount,
		charge.Status,
		charge.LocID,
		charge.LocURL,
		charge.PixCopiaECola,
		charge.QRCodeBase64,
		charge.EndToEndID,
		charge.PaidAt,
		charge.CreatedAt,
		charge.UpdatedAt,
	).Error
}

func (r *repo) FindByTxid(ctx context.Context, db *gorm.DB, txid string) (*domain.Charge, error) {
	var charge domain.Charge
	err := db.WithContext(ctx).Raw(
		`SELECT txid, debt_id, merchant_id, amount, status, loc_id, loc_url, pix_copia_e_cola, qr_code_base64, end_to_end_id, paid_at, created_at, updated_at
		 FROM charges WHERE txid = ?`,
		txid,
	).Scan(&charge).Error
	if err != nil {
		return nil, err
	}
	if charge.Txid == "" {
		return nil, nil
	}
	return &charge, nil
}

func (r *repo) MarkCompleted(ctx context.Context, db *gorm.DB, txid, endToEndID string, paidAt, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE charges SET status = ?, end_to_end_id = ?, paid_at = ?, updated_at = ?
		 WHERE txid = ? AND status = ?`,
		domain.StatusCompleted,
		endToEndID,
		paidAt,
		now,
		txid,
		domain.StatusActive,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
