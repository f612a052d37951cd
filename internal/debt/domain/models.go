package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending         Status = "PENDING"
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusForwarded       Status = "FORWARDED"
)

// CanTransition reports whether moving from one status to the next follows
// the forward-only lifecycle. Manual overrides go through SetManualStatus
// and are not covered here.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusAwaitingPayment
	case StatusAwaitingPayment:
		return to == StatusPaid
	case StatusPaid:
		return to == StatusForwarded
	default:
		return false
	}
}

type Debt struct {
	ID          string          `gorm:"primaryKey" json:"id"`
	MerchantID  string          `gorm:"not null;index" json:"merchant_id"`
	CustomerID  string          `gorm:"not null;index" json:"customer_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status      Status          `gorm:"not null;default:PENDING" json:"status"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
