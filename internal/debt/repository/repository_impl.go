package repository

import (
	"context"

	"github.com/fiadolabs/fiado/internal/debt/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, debt *domain.Debt) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO debts (id, merchant_id, customer_id, description, amount, status, due_date, paid_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		debt.ID,
		debt.MerchantID,
		debt.CustomerID,
		debt.Description,
		debt.Amount,
		debt.Status,
		debt.DueDate,
		debt.PaidAt,
		debt.CreatedAt,
		debt.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Debt, error) {
	var debt domain.Debt
	err := db.WithContext(ctx).Raw(
		`SELECT id, merchant_id, customer_id, description, amount, status, due_date, paid_at, created_at, updated_at
		 FROM debts WHERE id = ?`,
		id,
	).Scan(&debt).Error
	if err != nil {
		return nil, err
	}
	if debt.ID == "" {
		return nil, nil
	}
	return &debt, nil
}

func (r *repo) ListByMerchant(ctx context.Context, db *gorm.DB, merchantID string, statuses []domain.Status) ([]*domain.Debt, error) {
	var debts []*domain.Debt
	stmt := db.WithContext(ctx).
		Model(&domain.Debt{}).
		Where("merchant_id = ?", merchantID)
	if len(statuses) > 0 {
		stmt = stmt.Where("status IN ?", statuses)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&debts).Error
	if err != nil {
		return nil, err
	}
	return debts, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID string) ([]*domain.Debt, error) {
	var debts []*domain.Debt
	err := db.WithContext(ctx).
		Model(&domain.Debt{}).
		Where("customer_id = ?", customerID).
		Order("created_at desc, id desc").
		Find(&debts).Error
	if err != nil {
		return nil, err
	}
	return debts, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.Status, update domain.StatusUpdate) (bool, error) {
	var result *gorm.DB
	switch {
	case update.ClearPaid:
		result = db.WithContext(ctx).Exec(
			`UPDATE debts SET status = ?, paid_at = NULL, updated_at = ? WHERE id = ? AND status = ?`,
			to, update.Now, id, from,
		)
	case update.PaidAt != nil:
		result = db.WithContext(ctx).Exec(
			`UPDATE debts SET status = ?, paid_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
			to, update.PaidAt, update.Now, id, from,
		)
	default:
		result = db.WithContext(ctx).Exec(
			`UPDATE debts SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			to, update.Now, id, from,
		)
	}
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM debts WHERE id = ?`, id).Error
}
