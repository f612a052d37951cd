package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	InsertMerchant(ctx context.Context, db *gorm.DB, merchant *Merchant) error
	FindMerchantByID(ctx context.Context, db *gorm.DB, id string) (*Merchant, error)
	UpdateMerchant(ctx context.Context, db *gorm.DB, merchant *Merchant) error

	InsertCustomer(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindCustomerByID(ctx context.Context, db *gorm.DB, id string) (*Customer, error)
	ListCustomers(ctx context.Context, db *gorm.DB, merchantID string) ([]*Customer, error)
	DeleteCustomer(ctx context.Context, db *gorm.DB, id string) error
}
