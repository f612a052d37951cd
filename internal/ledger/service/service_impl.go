package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		clock: p.Clock,
		genID: p.GenID,
	}
}

func (s *Service) Append(ctx context.Context, db *gorm.DB, entry domain.Entry) error {
	if db == nil {
		db = s.db
	}
	if !validEntryType(entry.EntryType) {
		return domain.ErrInvalidEntryType
	}
	if strings.TrimSpace(entry.ChargeTxid) == "" {
		return domain.ErrInvalidTxid
	}

	if entry.ID == 0 {
		entry.ID = s.genID.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now()
	}

	stmt := `INSERT INTO ledger_entries (id, entry_type, charge_txid, debt_id, merchant_id, amount, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	// charge_created and payment_received happen at most once per charge, so
	// a replay collapses on the partial unique index. Payout entries record
	// one row per attempt and are never deduplicated.
	if dedupedEntryType(entry.EntryType) {
		stmt += "\n\t\t ON CONFLICT DO NOTHING"
	}

	return db.WithContext(ctx).Exec(stmt,
		entry.ID,
		entry.EntryType,
		entry.ChargeTxid,
		entry.DebtID,
		entry.MerchantID,
		entry.Amount,
		entry.Payload,
		entry.CreatedAt,
	).Error
}

func dedupedEntryType(entryType domain.EntryType) bool {
	return entryType == domain.EntryChargeCreated || entryType == domain.EntryPaymentReceived
}

func (s *Service) ListByTxid(ctx context.Context, txid string) ([]domain.Entry, error) {
	txid = strings.TrimSpace(txid)
	if txid == "" {
		return nil, domain.ErrInvalidTxid
	}

	var entries []domain.Entry
	err := s.db.WithContext(ctx).
		Model(&domain.Entry{}).
		Where("charge_txid = ?", txid).
		Order("created_at asc, id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func validEntryType(entryType domain.EntryType) bool {
	switch entryType {
	case domain.EntryChargeCreated,
		domain.EntryPaymentReceived,
		domain.EntryPayoutStarted,
		domain.EntryPayoutCompleted,
		domain.EntryPayoutFailed:
		return true
	default:
		return false
	}
}
