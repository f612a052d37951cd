package service

import (
	"context"
	"encoding/json"
	"strings"

	chargedomain "github.com/fiadolabs/fiado/internal/charge/domain"
	"github.com/fiadolabs/fiado/internal/clock"
	debtdomain "github.com/fiadolabs/fiado/internal/debt/domain"
	"github.com/fiadolabs/fiado/internal/gateway"
	ledgerdomain "github.com/fiadolabs/fiado/internal/ledger/domain"
	"github.com/fiadolabs/fiado/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultExpirationSeconds = 86400
	minExpirationSeconds     = 900
	maxDescriptionLength     = 140
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    chargedomain.Repository
	Debts   debtdomain.Service
	Ledger  ledgerdomain.Service
	Gateway gateway.API
	Config  gateway.Config
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    chargedomain.Repository
	debts   debtdomain.Service
	ledger  ledgerdomain.Service
	gateway gateway.API
	chave   string
	metrics *metrics.Metrics
}

func New(p Params) chargedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("charge.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		debts:   p.Debts,
		ledger:  p.Ledger,
		gateway: p.Gateway,
		chave:   p.Config.ReceiverKey,
		metrics: p.Metrics,
	}
}

// Create issues a gateway charge for a pending debt and records it
// atomically with the ledger entry and the debt transition.
func (s *Service) Create(ctx context.Context, req chargedomain.CreateChargeRequest) (chargedomain.CreateChargeResponse, error) {
	if !req.Amount.IsPositive() {
		return chargedomain.CreateChargeResponse{}, chargedomain.ErrInvalidAmount
	}
	expiration := req.ExpirationSeconds
	if expiration == 0 {
		expiration = defaultExpirationSeconds
	}
	if expiration < minExpirationSeconds {
		return chargedomain.CreateChargeResponse{}, chargedomain.ErrInvalidExpiration
	}

	debt, err := s.debts.GetByID(ctx, req.DebtID)
	if err != nil {
		return chargedomain.CreateChargeResponse{}, err
	}
	if debt.Status != debtdomain.StatusPending {
		return chargedomain.CreateChargeResponse{}, chargedomain.ErrDebtNotPayable
	}
	if req.MerchantID != "" && req.MerchantID != debt.MerchantID {
		return chargedomain.CreateChargeResponse{}, chargedomain.ErrMerchantMismatch
	}
	if !req.Amount.Equal(debt.Amount) {
		return chargedomain.CreateChargeResponse{}, chargedomain.ErrAmountMismatch
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = debt.Description
	}
	description = truncate(description, maxDescriptionLength)

	txid := chargedomain.NewTxid()
	gwCharge, err := s.gateway.CreateCharge(ctx, txid, gateway.CreateChargeRequest{
		Calendario:         gateway.Calendario{Expiracao: expiration},
		Valor:              gateway.Valor{Original: debt.Amount.StringFixed(2)},
		Chave:              s.chave,
		SolicitacaoPagador: description,
	})
	if err != nil {
		s.metrics.RecordChargeCreated("gateway_error")
		return chargedomain.CreateChargeResponse{}, err
	}

	qr, err := s.gateway.GetQRCode(ctx, gwCharge.Loc.ID)
	if err != nil {
		s.metrics.RecordChargeCreated("gateway_error")
		return chargedomain.CreateChargeResponse{}, err
	}

	now := s.clock.Now()
	charge := chargedomain.Charge{
		Txid:          txid,
		DebtID:        debt.ID,
		MerchantID:    debt.MerchantID,
		Amount:        debt.Amount,
		Status:        chargedomain.StatusActive,
		LocID:         gwCharge.Loc.ID,
		LocURL:        gwCharge.Loc.Location,
		PixCopiaECola: gwCharge.PixCopiaECola,
		QRCodeBase64:  qr.ImagemQRCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	payload, _ := json.Marshal(gwCharge)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &charge); err != nil {
			return err
		}
		if err := s.ledger.Append(ctx, tx, ledgerdomain.Entry{
			EntryType:  ledgerdomain.EntryChargeCreated,
			ChargeTxid: txid,
			DebtID:     debt.ID,
			MerchantID: debt.MerchantID,
			Amount:     debt.Amount,
			Payload:    datatypes.JSON(payload),
		}); err != nil {
			return err
		}
		return s.debts.Transition(ctx, tx, debt.ID, debtdomain.StatusPending, debtdomain.StatusAwaitingPayment, nil)
	})
	if err != nil {
		s.metrics.RecordChargeCreated("db_error")
		return chargedomain.CreateChargeResponse{}, err
	}

	s.metrics.RecordChargeCreated("ok")
	s.log.Info("charge created",
		zap.String("txid", txid),
		zap.String("debt_id", debt.ID),
		zap.String("amount", debt.Amount.StringFixed(2)),
	)

	return chargedomain.CreateChargeResponse{
		Txid:          txid,
		PixCopiaECola: charge.PixCopiaECola,
		QRCodeBase64:  charge.QRCodeBase64,
		Expiracao:     expiration,
		LocURL:        charge.LocURL,
	}, nil
}

// GetByTxid returns the stored charge together with the provider's current
// view of it, so callers see payment state the provider has not pushed yet.
func (s *Service) GetByTxid(ctx context.Context, txid string) (chargedomain.ChargeStatus, error) {
	txid = strings.ToUpper(strings.TrimSpace(txid))
	if !chargedomain.ValidTxid(txid) {
		return chargedomain.ChargeStatus{}, chargedomain.ErrInvalidTxid
	}

	item, err := s.repo.FindByTxid(ctx, s.db, txid)
	if err != nil {
		return chargedomain.ChargeStatus{}, err
	}
	if item == nil {
		return chargedomain.ChargeStatus{}, chargedomain.ErrNotFound
	}

	provider, err := s.gateway.GetCharge(ctx, txid)
	if err != nil {
		return chargedomain.ChargeStatus{}, err
	}
	return chargedomain.ChargeStatus{Charge: *item, Provider: provider}, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
