package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// Charge is one gateway cob issued for a debt.
type Charge struct {
	Txid          string          `gorm:"primaryKey" json:"txid"`
	DebtID        string          `gorm:"not null;index" json:"debt_id"`
	MerchantID    string          `gorm:"not null" json:"merchant_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status        Status          `gorm:"not null;default:ACTIVE" json:"status"`
	LocID         int64           `gorm:"column:loc_id" json:"loc_id"`
	LocURL        string          `gorm:"column:loc_url" json:"loc_url"`
	PixCopiaECola string          `gorm:"column:pix_copia_e_cola" json:"pixCopiaECola"`
	QRCodeBase64  string          `gorm:"column:qr_code_base64" json:"qrCodeBase64"`
	EndToEndID    *string         `gorm:"column:end_to_end_id" json:"end_to_end_id,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// NewTxid returns a fresh 32-char uppercase hex transaction id, the format
// the gateway accepts for cob identifiers.
func NewTxid() string {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(raw[:]))
}

// ValidTxid reports whether the value is a well-formed transaction id.
func ValidTxid(txid string) bool {
	if len(txid) != 32 {
		return false
	}
	for _, c := range txid {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
