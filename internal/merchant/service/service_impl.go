package service

import (
	"context"
	"strings"

	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/merchant/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("merchant.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateMerchant(ctx context.Context, req domain.CreateMerchantRequest) (domain.Merchant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Merchant{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	merchant := domain.Merchant{
		ID:        ulid.Make().String(),
		Name:      name,
		CNPJ:      strings.TrimSpace(req.CNPJ),
		PixKey:    strings.TrimSpace(req.PixKey),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertMerchant(ctx, s.db, &merchant); err != nil {
		return domain.Merchant{}, err
	}

	return merchant, nil
}

func (s *Service) GetMerchant(ctx context.Context, id string) (domain.Merchant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Merchant{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindMerchantByID(ctx, s.db, id)
	if err != nil {
		return domain.Merchant{}, err
	}
	if item == nil {
		return domain.Merchant{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) UpdateMerchant(ctx context.Context, req domain.UpdateMerchantRequest) (domain.Merchant, error) {
	merchant, err := s.GetMerchant(ctx, req.ID)
	if err != nil {
		return domain.Merchant{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Merchant{}, domain.ErrInvalidName
		}
		merchant.Name = name
	}
	if req.CNPJ != nil {
		merchant.CNPJ = strings.TrimSpace(*req.CNPJ)
	}
	if req.PixKey != nil {
		key := strings.TrimSpace(*req.PixKey)
		if key == "" {
			return domain.Merchant{}, domain.ErrInvalidPixKey
		}
		merchant.PixKey = key
	}
	merchant.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateMerchant(ctx, s.db, &merchant); err != nil {
		return domain.Merchant{}, err
	}
	return merchant, nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	merchant, err := s.repo.FindMerchantByID(ctx, s.db, strings.TrimSpace(req.MerchantID))
	if err != nil {
		return domain.Customer{}, err
	}
	if merchant == nil {
		return domain.Customer{}, domain.ErrInvalidMerchant
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:         ulid.Make().String(),
		MerchantID: merchant.ID,
		Name:       name,
		Phone:      strings.TrimSpace(req.Phone),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.InsertCustomer(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Customer{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindCustomerByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) ListCustomers(ctx context.Context, merchantID string) ([]domain.Customer, error) {
	merchantID = strings.TrimSpace(merchantID)
	if merchantID == "" {
		return nil, domain.ErrInvalidMerchant
	}

	items, err := s.repo.ListCustomers(ctx, s.db, merchantID)
	if err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}
	return customers, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteCustomer(ctx, s.db, strings.TrimSpace(id))
}
