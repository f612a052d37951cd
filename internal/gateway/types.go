package gateway

import "context"

// API is the surface of the Pix gateway used by the rest of the system.
type API interface {
	CreateCharge(ctx context.Context, txid string, req CreateChargeRequest) (Charge, error)
	GetCharge(ctx context.Context, txid string) (Charge, error)
	GetQRCode(ctx context.Context, locID int64) (QRCode, error)
	Transfer(ctx context.Context, req TransferRequest) (TransferResult, error)
	RegisterWebhook(ctx context.Context, webhookURL string) error
	GetWebhook(ctx context.Context) (Webhook, error)
}

// CreateChargeRequest creates an immediate charge with a defined expiration.
type CreateChargeRequest struct {
	Calendario Calendario `json:"calendario"`
	Valor      Valor      `json:"valor"`
	Chave      string     `json:"chave"`
	Devedor    *Devedor   `json:"devedor,omitempty"`

	SolicitacaoPagador string `json:"solicitacaoPagador,omitempty"`
}

type Calendario struct {
	Expiracao int `json:"expiracao"`
}

type Valor struct {
	Original string `json:"original"`
}

type Devedor struct {
	Nome string `json:"nome,omitempty"`
	CPF  string `json:"cpf,omitempty"`
	CNPJ string `json:"cnpj,omitempty"`
}

// Charge is the gateway's representation of a cob.
type Charge struct {
	Txid          string     `json:"txid"`
	Status        string     `json:"status"`
	Calendario    Calendario `json:"calendario"`
	Valor         Valor      `json:"valor"`
	Chave         string     `json:"chave"`
	Loc           Loc        `json:"loc"`
	PixCopiaECola string     `json:"pixCopiaECola"`
}

type Loc struct {
	ID       int64  `json:"id"`
	Location string `json:"location"`
}

// QRCode carries the EMV string and the rendered image for a location.
type QRCode struct {
	QRCode       string `json:"qrcode"`
	ImagemQRCode string `json:"imagemQrcode"`
}

// TransferRequest sends a Pix payment to a key.
type TransferRequest struct {
	Valor        string      `json:"valor"`
	Destinatario Destinatario `json:"destinatario"`
	Descricao    string      `json:"descricao,omitempty"`

	// IdempotencyKey is sent as the x-id-idempotente header so retried
	// transfers never execute twice on the provider side.
	IdempotencyKey string `json:"-"`
}

type Destinatario struct {
	Tipo  string `json:"tipo"`
	Chave string `json:"chave"`
}

type TransferResult struct {
	CodigoTransacao string `json:"codigoTransacao"`
	EndToEndID      string `json:"endToEndId"`
}

// ReferenceID returns the provider identifier for the transfer, preferring
// the end-to-end id when present.
func (r TransferResult) ReferenceID() string {
	if r.EndToEndID != "" {
		return r.EndToEndID
	}
	return r.CodigoTransacao
}

type Webhook struct {
	WebhookURL string `json:"webhookUrl"`
	Chave      string `json:"chave,omitempty"`
	Criacao    string `json:"criacao,omitempty"`
}
