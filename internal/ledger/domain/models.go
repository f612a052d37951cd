package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type EntryType string

const (
	EntryChargeCreated   EntryType = "charge_created"
	EntryPaymentReceived EntryType = "payment_received"
	EntryPayoutStarted   EntryType = "payout_started"
	EntryPayoutCompleted EntryType = "payout_completed"
	EntryPayoutFailed    EntryType = "payout_failed"
)

// Entry is an append-only audit record. Rows are never updated or deleted;
// (charge_txid, entry_type) is unique so replays collapse into one row.
type Entry struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	EntryType  EntryType       `gorm:"not null" json:"entry_type"`
	ChargeTxid string          `gorm:"not null" json:"charge_txid"`
	DebtID     string          `json:"debt_id"`
	MerchantID string          `json:"merchant_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Payload    datatypes.JSON  `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Entry) TableName() string {
	return "ledger_entries"
}
