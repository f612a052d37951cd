package domain

import (
	"context"
	"errors"

	"github.com/fiadolabs/fiado/internal/gateway"
	"github.com/shopspring/decimal"
)

type CreateChargeRequest struct {
	DebtID     string
	MerchantID string
	// Amount must match the debt being charged.
	Amount      decimal.Decimal
	Description string
	// ExpirationSeconds defaults to 86400 when zero; values below 900 are
	// rejected.
	ExpirationSeconds int
}

// CreateChargeResponse is what the API returns so the payer can be charged.
type CreateChargeResponse struct {
	Txid          string `json:"txid"`
	PixCopiaECola string `json:"pixCopiaECola"`
	QRCodeBase64  string `json:"qrCodeBase64"`
	Expiracao     int    `json:"expiracao"`
	LocURL        string `json:"locUrl"`
}

// ChargeStatus pairs the stored charge with the provider's live view of it.
type ChargeStatus struct {
	Charge   Charge         `json:"charge"`
	Provider gateway.Charge `json:"provider"`
}

type Service interface {
	Create(context.Context, CreateChargeRequest) (CreateChargeResponse, error)
	GetByTxid(ctx context.Context, txid string) (ChargeStatus, error)
}

var (
	ErrInvalidTxid       = errors.New("invalid_txid")
	ErrNotFound          = errors.New("not_found")
	ErrDebtNotPayable    = errors.New("debt_not_payable")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrAmountMismatch    = errors.New("amount_mismatch")
	ErrMerchantMismatch  = errors.New("merchant_mismatch")
	ErrInvalidExpiration = errors.New("invalid_expiration")
)
