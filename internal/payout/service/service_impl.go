package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/config"
	debtdomain "github.com/fiadolabs/fiado/internal/debt/domain"
	"github.com/fiadolabs/fiado/internal/gateway"
	ledgerdomain "github.com/fiadolabs/fiado/internal/ledger/domain"
	"github.com/fiadolabs/fiado/internal/payout/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Repo    domain.Repository
	Debts   debtdomain.Service
	Ledger  ledgerdomain.Service
	Gateway gateway.API
	Config  config.Config
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	repo       domain.Repository
	debts      debtdomain.Service
	ledger     ledgerdomain.Service
	gateway    gateway.API
	feePercent float64
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payout.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		repo:       p.Repo,
		debts:      p.Debts,
		ledger:     p.Ledger,
		gateway:    p.Gateway,
		feePercent: p.Config.FeePercent,
	}
}

// Attempt forwards one received payment to the merchant. Every retry reuses
// the payout key as the gateway idempotency token, so a transfer that
// succeeded on the provider side is never duplicated.
func (s *Service) Attempt(ctx context.Context, job domain.Job) error {
	var payload domain.JobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return domain.ErrInvalidPayload
	}
	if strings.TrimSpace(payload.ChargeTxid) == "" {
		return domain.ErrInvalidPayload
	}
	if strings.TrimSpace(payload.DestinationKey) == "" {
		return domain.ErrMissingDestination
	}

	log := s.log.With(
		zap.String("job_id", job.JobID),
		zap.String("txid", payload.ChargeTxid),
		zap.Int("attempt", job.Attempts),
	)

	existing, err := s.repo.FindByKey(ctx, s.db, job.JobID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Status == domain.StatusCompleted {
		log.Info("payout already completed, skipping")
		return nil
	}

	fee, net := domain.ComputeFee(payload.GrossAmount, s.feePercent)
	now := s.clock.Now()

	payout := domain.Payout{
		ID:             s.genID.Generate(),
		PayoutKey:      job.JobID,
		ChargeTxid:     payload.ChargeTxid,
		DebtID:         payload.DebtID,
		MerchantID:     payload.MerchantID,
		GrossAmount:    payload.GrossAmount,
		FeeAmount:      fee,
		NetAmount:      net,
		DestinationKey: payload.DestinationKey,
		Status:         domain.StatusInProgress,
		Attempts:       1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Upsert(ctx, s.db, &payout); err != nil {
		return err
	}

	startedPayload, _ := json.Marshal(map[string]any{
		"payout_key": job.JobID,
		"attempt":    job.Attempts,
		"gross":      payload.GrossAmount,
		"fee":        fee,
		"net":        net,
	})
	if err := s.ledger.Append(ctx, s.db, ledgerdomain.Entry{
		EntryType:  ledgerdomain.EntryPayoutStarted,
		ChargeTxid: payload.ChargeTxid,
		DebtID:     payload.DebtID,
		MerchantID: payload.MerchantID,
		Amount:     net,
		Payload:    datatypes.JSON(startedPayload),
	}); err != nil {
		return err
	}

	result, err := s.gateway.Transfer(ctx, gateway.TransferRequest{
		Valor: net.StringFixed(2),
		Destinatario: gateway.Destinatario{
			Tipo:  "CHAVE",
			Chave: payload.DestinationKey,
		},
		IdempotencyKey: job.JobID,
	})
	if err != nil {
		return s.recordFailure(ctx, job, payload, err)
	}

	return s.complete(ctx, job, payload, result)
}

func (s *Service) complete(ctx context.Context, job domain.Job, payload domain.JobPayload, result gateway.TransferResult) error {
	now := s.clock.Now()
	completedPayload, _ := json.Marshal(result)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.MarkCompleted(ctx, tx, job.JobID, result.ReferenceID(), now); err != nil {
			return err
		}
		if err := s.ledger.Append(ctx, tx, ledgerdomain.Entry{
			EntryType:  ledgerdomain.EntryPayoutCompleted,
			ChargeTxid: payload.ChargeTxid,
			DebtID:     payload.DebtID,
			MerchantID: payload.MerchantID,
			Amount:     decimalNet(payload, s.feePercent),
			Payload:    datatypes.JSON(completedPayload),
		}); err != nil {
			return err
		}
		if payload.DebtID != "" {
			if err := s.debts.Transition(ctx, tx, payload.DebtID, debtdomain.StatusPaid, debtdomain.StatusForwarded, nil); err != nil {
				if !errors.Is(err, debtdomain.ErrInvalidTransition) {
					return err
				}
				// A manually overridden debt no longer sits in PAID; the
				// payout itself still succeeded.
				s.log.Warn("debt not forwarded",
					zap.String("debt_id", payload.DebtID),
					zap.Error(err),
				)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("payout completed",
		zap.String("job_id", job.JobID),
		zap.String("end_to_end_id", result.ReferenceID()),
	)
	return nil
}

// recordFailure parks the payout in FAILED with a payout_failed ledger entry
// after every unsuccessful attempt. A later retry's Upsert moves it back to
// IN_PROGRESS; the original attempt error is always returned so the queue
// applies its backoff policy.
func (s *Service) recordFailure(ctx context.Context, job domain.Job, payload domain.JobPayload, attemptErr error) error {
	now := s.clock.Now()
	failedPayload, _ := json.Marshal(map[string]any{
		"payout_key": job.JobID,
		"attempt":    job.Attempts,
		"error":      attemptErr.Error(),
	})

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.MarkFailed(ctx, tx, job.JobID, attemptErr.Error(), now); err != nil {
			return err
		}
		return s.ledger.Append(ctx, tx, ledgerdomain.Entry{
			EntryType:  ledgerdomain.EntryPayoutFailed,
			ChargeTxid: payload.ChargeTxid,
			DebtID:     payload.DebtID,
			MerchantID: payload.MerchantID,
			Amount:     decimalNet(payload, s.feePercent),
			Payload:    datatypes.JSON(failedPayload),
		})
	})
	if err != nil {
		s.log.Error("record payout failure",
			zap.String("job_id", job.JobID),
			zap.Error(err),
		)
	}

	return attemptErr
}

func (s *Service) GetByKey(ctx context.Context, key string) (domain.Payout, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Payout{}, domain.ErrNotFound
	}

	item, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return domain.Payout{}, err
	}
	if item == nil {
		return domain.Payout{}, domain.ErrNotFound
	}
	return *item, nil
}

func decimalNet(payload domain.JobPayload, feePercent float64) decimal.Decimal {
	_, net := domain.ComputeFee(payload.GrossAmount, feePercent)
	return net
}
