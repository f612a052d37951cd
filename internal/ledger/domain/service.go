package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Service interface {
	// Append records an entry on the caller's handle, which may be a
	// transaction. Re-appending the same (txid, type) pair is a no-op.
	Append(ctx context.Context, db *gorm.DB, entry Entry) error

	ListByTxid(ctx context.Context, txid string) ([]Entry, error)
}

var (
	ErrInvalidEntryType = errors.New("invalid_entry_type")
	ErrInvalidTxid      = errors.New("invalid_txid")
)
