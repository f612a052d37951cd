package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateDebtRequest struct {
	CustomerID  string
	Description string
	Amount      decimal.Decimal
	DueDate     *time.Time
}

type ListDebtsRequest struct {
	MerchantID string
	// Statuses filters the result. Empty means the open set
	// (PENDING and AWAITING_PAYMENT).
	Statuses []Status
}

// StatusUpdate carries the side effects of a status change.
type StatusUpdate struct {
	PaidAt    *time.Time
	ClearPaid bool
	Now       time.Time
}

type Service interface {
	Create(context.Context, CreateDebtRequest) (Debt, error)
	GetByID(ctx context.Context, id string) (Debt, error)
	ListByMerchant(context.Context, ListDebtsRequest) ([]Debt, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Debt, error)

	// Transition applies a forward lifecycle step on the caller's handle,
	// which may be a transaction.
	Transition(ctx context.Context, db *gorm.DB, id string, from, to Status, paidAt *time.Time) error

	// SetManualStatus flips a debt between PENDING and PAID outside the
	// payment flow, for debts settled in cash or forgiven.
	SetManualStatus(ctx context.Context, id string, to Status) (Debt, error)

	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotFound          = errors.New("not_found")
	ErrDeleteForwarded   = errors.New("delete_forwarded_debt")
)
