package domain

import "time"

// Merchant is the business collecting debts. PixKey is the payout destination
// used when received payments are forwarded.
type Merchant struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CNPJ      string    `gorm:"column:cnpj" json:"cnpj"`
	PixKey    string    `gorm:"column:pix_key" json:"pixKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type Customer struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	MerchantID string    `gorm:"not null;index" json:"merchant_id"`
	Name       string    `gorm:"not null" json:"name"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
