package webhook

import (
	"context"
	"time"
)

// Notification is the body the gateway posts when payments arrive. One
// request can carry several events.
type Notification struct {
	Pix []Event `json:"pix"`
}

// Event is a single received payment.
type Event struct {
	Txid        string    `json:"txid"`
	EndToEndID  string    `json:"endToEndId"`
	Valor       string    `json:"valor"`
	Horario     time.Time `json:"horario"`
	Pagador     *Pagador  `json:"pagador,omitempty"`
	InfoPagador string    `json:"infoPagador,omitempty"`
}

// Pagador identifies who paid; kept in the ledger snapshot for audits.
type Pagador struct {
	CPF  string `json:"cpf,omitempty"`
	CNPJ string `json:"cnpj,omitempty"`
	Nome string `json:"nome,omitempty"`
}

type Service interface {
	// Dispatch hands events to background processing. It returns
	// immediately; the HTTP response has already been written by then.
	Dispatch(events []Event)

	// ProcessEvent reconciles one payment event. Replays and unknown
	// transaction ids are no-ops.
	ProcessEvent(ctx context.Context, event Event) error
}
