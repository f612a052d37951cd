package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, debt *Debt) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Debt, error)
	ListByMerchant(ctx context.Context, db *gorm.DB, merchantID string, statuses []Status) ([]*Debt, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID string) ([]*Debt, error)

	// UpdateStatus is a compare-and-set on the current status. It reports
	// whether a row was updated, so callers can detect lost races.
	UpdateStatus(ctx context.Context, db *gorm.DB, id string, from, to Status, update StatusUpdate) (bool, error)

	Delete(ctx context.Context, db *gorm.DB, id string) error
}
