package domain

import (
	"context"
	"errors"
)

type CreateMerchantRequest struct {
	Name   string
	CNPJ   string
	PixKey string
}

type UpdateMerchantRequest struct {
	ID     string
	Name   *string
	CNPJ   *string
	PixKey *string
}

type CreateCustomerRequest struct {
	MerchantID string
	Name       string
	Phone      string
}

type Service interface {
	CreateMerchant(context.Context, CreateMerchantRequest) (Merchant, error)
	GetMerchant(ctx context.Context, id string) (Merchant, error)
	UpdateMerchant(context.Context, UpdateMerchantRequest) (Merchant, error)

	CreateCustomer(context.Context, CreateCustomerRequest) (Customer, error)
	GetCustomer(ctx context.Context, id string) (Customer, error)
	ListCustomers(ctx context.Context, merchantID string) ([]Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPixKey   = errors.New("invalid_pix_key")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidMerchant = errors.New("invalid_merchant")
)
