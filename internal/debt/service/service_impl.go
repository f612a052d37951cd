package service

import (
	"context"
	"strings"
	"time"

	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/debt/domain"
	merchantdomain "github.com/fiadolabs/fiado/internal/merchant/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      domain.Repository
	Merchants merchantdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	merchants merchantdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("debt.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		merchants: p.Merchants,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDebtRequest) (domain.Debt, error) {
	if !req.Amount.IsPositive() {
		return domain.Debt{}, domain.ErrInvalidAmount
	}

	customer, err := s.merchants.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return domain.Debt{}, domain.ErrInvalidCustomer
	}

	now := s.clock.Now()
	debt := domain.Debt{
		ID:          ulid.Make().String(),
		MerchantID:  customer.MerchantID,
		CustomerID:  customer.ID,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount.Round(2),
		Status:      domain.StatusPending,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &debt); err != nil {
		return domain.Debt{}, err
	}
	return debt, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Debt, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Debt{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Debt{}, err
	}
	if item == nil {
		return domain.Debt{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) ListByMerchant(ctx context.Context, req domain.ListDebtsRequest) ([]domain.Debt, error) {
	merchantID := strings.TrimSpace(req.MerchantID)
	if merchantID == "" {
		return nil, domain.ErrInvalidID
	}

	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = []domain.Status{domain.StatusPending, domain.StatusAwaitingPayment}
	}
	for _, status := range statuses {
		if !validStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
	}

	items, err := s.repo.ListByMerchant(ctx, s.db, merchantID, statuses)
	if err != nil {
		return nil, err
	}
	return collect(items), nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.Debt, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, domain.ErrInvalidID
	}

	items, err := s.repo.ListByCustomer(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	return collect(items), nil
}

func (s *Service) Transition(ctx context.Context, db *gorm.DB, id string, from, to domain.Status, paidAt *time.Time) error {
	if db == nil {
		db = s.db
	}
	if !domain.CanTransition(from, to) {
		return domain.ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, db, id, from, to, domain.StatusUpdate{
		PaidAt: paidAt,
		Now:    s.clock.Now(),
	})
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (s *Service) SetManualStatus(ctx context.Context, id string, to domain.Status) (domain.Debt, error) {
	if to != domain.StatusPending && to != domain.StatusPaid {
		return domain.Debt{}, domain.ErrInvalidStatus
	}

	debt, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Debt{}, err
	}
	if debt.Status == domain.StatusForwarded {
		return domain.Debt{}, domain.ErrInvalidTransition
	}
	if debt.Status == to {
		return debt, nil
	}

	now := s.clock.Now()
	update := domain.StatusUpdate{Now: now}
	if to == domain.StatusPaid {
		update.PaidAt = &now
	} else {
		update.ClearPaid = true
	}

	updated, err := s.repo.UpdateStatus(ctx, s.db, debt.ID, debt.Status, to, update)
	if err != nil {
		return domain.Debt{}, err
	}
	if !updated {
		return domain.Debt{}, domain.ErrInvalidTransition
	}

	s.log.Info("debt status overridden",
		zap.String("debt_id", debt.ID),
		zap.String("from", string(debt.Status)),
		zap.String("to", string(to)),
	)

	return s.GetByID(ctx, debt.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	debt, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if debt.Status == domain.StatusForwarded {
		return domain.ErrDeleteForwarded
	}
	return s.repo.Delete(ctx, s.db, debt.ID)
}

func validStatus(status domain.Status) bool {
	switch status {
	case domain.StatusPending, domain.StatusAwaitingPayment, domain.StatusPaid, domain.StatusForwarded:
		return true
	default:
		return false
	}
}

func collect(items []*domain.Debt) []domain.Debt {
	debts := make([]domain.Debt, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		debts = append(debts, *item)
	}
	return debts
}
