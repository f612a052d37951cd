package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	chargedomain "github.com/fiadolabs/fiado/internal/charge/domain"
	"github.com/fiadolabs/fiado/internal/clock"
	debtdomain "github.com/fiadolabs/fiado/internal/debt/domain"
	ledgerdomain "github.com/fiadolabs/fiado/internal/ledger/domain"
	merchantdomain "github.com/fiadolabs/fiado/internal/merchant/domain"
	"github.com/fiadolabs/fiado/internal/observability/metrics"
	"github.com/fiadolabs/fiado/internal/payout"
	payoutdomain "github.com/fiadolabs/fiado/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const processTimeout = 30 * time.Second

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Charges   chargedomain.Repository
	Debts     debtdomain.Service
	Ledger    ledgerdomain.Service
	Merchants merchantdomain.Service
	Queue     *payout.Queue
	Metrics   *metrics.Metrics `optional:"true"`
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	charges   chargedomain.Repository
	debts     debtdomain.Service
	ledger    ledgerdomain.Service
	merchants merchantdomain.Service
	queue     *payout.Queue
	metrics   *metrics.Metrics
}

func New(p Params) Service {
	return &service{
		db:        p.DB,
		log:       p.Log.Named("webhook.service"),
		clock:     p.Clock,
		charges:   p.Charges,
		debts:     p.Debts,
		ledger:    p.Ledger,
		merchants: p.Merchants,
		queue:     p.Queue,
		metrics:   p.Metrics,
	}
}

// Dispatch runs after the HTTP ack. Each event is processed on its own
// goroutine; a failure in one never blocks the others, and the provider's
// redelivery covers anything lost here.
func (s *service) Dispatch(events []Event) {
	for _, event := range events {
		event := event
		go func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("webhook event panicked",
						zap.String("txid", event.Txid),
						zap.Any("panic", r),
					)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
			defer cancel()

			if err := s.ProcessEvent(ctx, event); err != nil {
				s.log.Error("webhook event failed",
					zap.String("txid", event.Txid),
					zap.Error(err),
				)
			}
		}()
	}
}

func (s *service) ProcessEvent(ctx context.Context, event Event) error {
	txid := strings.ToUpper(strings.TrimSpace(event.Txid))
	if txid == "" {
		s.metrics.RecordWebhookEvent("error")
		return chargedomain.ErrInvalidTxid
	}

	log := s.log.With(zap.String("txid", txid))

	charge, err := s.charges.FindByTxid(ctx, s.db, txid)
	if err != nil {
		s.metrics.RecordWebhookEvent("error")
		return err
	}
	if charge == nil {
		log.Warn("payment event for unknown txid")
		s.metrics.RecordWebhookEvent("unknown_txid")
		return nil
	}
	if charge.Status == chargedomain.StatusCompleted {
		log.Info("payment event replayed, charge already completed")
		s.metrics.RecordWebhookEvent("duplicate")
		return nil
	}

	merchant, err := s.merchants.GetMerchant(ctx, charge.MerchantID)
	if err != nil {
		s.metrics.RecordWebhookEvent("error")
		return err
	}

	paidAt := event.Horario
	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}
	now := s.clock.Now()
	eventPayload, _ := json.Marshal(event)

	var replay bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.charges.MarkCompleted(ctx, tx, txid, event.EndToEndID, paidAt, now)
		if err != nil {
			return err
		}
		if !updated {
			// Lost the race against a concurrent delivery of the same event.
			replay = true
			return nil
		}

		if err := s.ledger.Append(ctx, tx, ledgerdomain.Entry{
			EntryType:  ledgerdomain.EntryPaymentReceived,
			ChargeTxid: txid,
			DebtID:     charge.DebtID,
			MerchantID: charge.MerchantID,
			Amount:     charge.Amount,
			Payload:    datatypes.JSON(eventPayload),
		}); err != nil {
			return err
		}

		if err := s.debts.Transition(ctx, tx, charge.DebtID, debtdomain.StatusAwaitingPayment, debtdomain.StatusPaid, &paidAt); err != nil {
			if !errors.Is(err, debtdomain.ErrInvalidTransition) {
				return err
			}
			// Manual overrides can move the debt out of AWAITING_PAYMENT;
			// the payment itself is still recorded and forwarded.
			log.Warn("debt not marked paid", zap.String("debt_id", charge.DebtID), zap.Error(err))
		}

		return s.queue.Enqueue(ctx, tx, payoutdomain.KeyForTxid(txid), payoutdomain.JobPayload{
			ChargeTxid:     txid,
			DebtID:         charge.DebtID,
			MerchantID:     charge.MerchantID,
			GrossAmount:    charge.Amount,
			EndToEndID:     event.EndToEndID,
			DestinationKey: merchant.PixKey,
		})
	})
	if err != nil {
		s.metrics.RecordWebhookEvent("error")
		return err
	}

	if replay {
		log.Info("payment event replayed, no changes applied")
		s.metrics.RecordWebhookEvent("duplicate")
		return nil
	}

	s.metrics.RecordWebhookEvent("completed")
	log.Info("payment reconciled",
		zap.String("debt_id", charge.DebtID),
		zap.String("end_to_end_id", event.EndToEndID),
	)
	return nil
}
