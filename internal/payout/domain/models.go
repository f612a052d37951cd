package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Payout tracks forwarding one received payment to the merchant's key.
// PayoutKey doubles as the gateway idempotency token, so every retry of the
// same charge presents the same token.
type Payout struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	PayoutKey      string          `gorm:"uniqueIndex;not null" json:"payout_key"`
	ChargeTxid     string          `gorm:"not null" json:"charge_txid"`
	DebtID         string          `json:"debt_id"`
	MerchantID     string          `json:"merchant_id"`
	GrossAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"gross_amount"`
	FeeAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"fee_amount"`
	NetAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"net_amount"`
	DestinationKey string          `gorm:"not null" json:"destination_key"`
	Status         Status          `gorm:"not null;default:IN_PROGRESS" json:"status"`
	Attempts       int             `gorm:"not null;default:0" json:"attempts"`
	EndToEndID     *string         `gorm:"column:end_to_end_id" json:"end_to_end_id,omitempty"`
	LastError      string          `json:"last_error,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// KeyForTxid derives the payout key for a charge.
func KeyForTxid(txid string) string {
	return "payout-" + txid
}

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is one durable queue row. JobID equals the payout key, so enqueueing
// the same charge twice collapses into a single job.
type Job struct {
	JobID       string         `gorm:"primaryKey" json:"job_id"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"`
	Status      JobStatus      `gorm:"not null;default:pending" json:"status"`
	Attempts    int            `gorm:"not null;default:0" json:"attempts"`
	MaxAttempts int            `gorm:"not null;default:5" json:"max_attempts"`
	RunAt       time.Time      `gorm:"not null" json:"run_at"`
	LockedAt    *time.Time     `json:"locked_at,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Job) TableName() string {
	return "payout_jobs"
}

// JobPayload is the immutable description of the work, captured when the
// payment arrived.
type JobPayload struct {
	ChargeTxid     string          `json:"charge_txid"`
	DebtID         string          `json:"debt_id"`
	MerchantID     string          `json:"merchant_id"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	EndToEndID     string          `json:"end_to_end_id,omitempty"`
	DestinationKey string          `json:"destination_key"`
}
