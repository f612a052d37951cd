package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/merchant/domain"
	merchantrepo "github.com/fiadolabs/fiado/internal/merchant/repository"
	merchantservice "github.com/fiadolabs/fiado/internal/merchant/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateMerchantValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := buildService(t)

	if _, err := svc.CreateMerchant(ctx, domain.CreateMerchantRequest{PixKey: "k"}); err != domain.ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	merchant, err := svc.CreateMerchant(ctx, domain.CreateMerchantRequest{
		Name:   "  Mercearia do Zé  ",
		PixKey: "ze@example.com",
	})
	if err != nil {
		t.Fatalf("create merchant: %v", err)
	}
	if merchant.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if merchant.Name != "Mercearia do Zé" {
		t.Fatalf("expected trimmed name, got %q", merchant.Name)
	}
}

func TestUpdateMerchantPatchesFields(t *testing.T) {
	ctx := context.Background()
	svc := buildService(t)

	merchant, err := svc.CreateMerchant(ctx, domain.CreateMerchantRequest{
		Name:   "Mercearia do Zé",
		CNPJ:   "12.345.678/0001-00",
		PixKey: "ze@example.com",
	})
	if err != nil {
		t.Fatalf("create merchant: %v", err)
	}

	newKey := "novo@example.com"
	updated, err := svc.UpdateMerchant(ctx, domain.UpdateMerchantRequest{
		ID:     merchant.ID,
		PixKey: &newKey,
	})
	if err != nil {
		t.Fatalf("update merchant: %v", err)
	}
	if updated.PixKey != newKey {
		t.Fatalf("expected pix key updated, got %s", updated.PixKey)
	}
	if updated.Name != merchant.Name || updated.CNPJ != merchant.CNPJ {
		t.Fatalf("expected untouched fields preserved, got %+v", updated)
	}

	if _, err := svc.UpdateMerchant(ctx, domain.UpdateMerchantRequest{ID: "missing"}); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCustomerLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := buildService(t)

	merchant, err := svc.CreateMerchant(ctx, domain.CreateMerchantRequest{
		Name:   "Mercearia do Zé",
		PixKey: "ze@example.com",
	})
	if err != nil {
		t.Fatalf("create merchant: %v", err)
	}

	if _, err := svc.CreateCustomer(ctx, domain.CreateCustomerRequest{
		MerchantID: "missing",
		Name:       "Maria",
	}); err != domain.ErrInvalidMerchant {
		t.Fatalf("expected ErrInvalidMerchant, got %v", err)
	}

	customer, err := svc.CreateCustomer(ctx, domain.CreateCustomerRequest{
		MerchantID: merchant.ID,
		Name:       "Maria",
		Phone:      "+5511999990000",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	listed, err := svc.ListCustomers(ctx, merchant.ID)
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != customer.ID {
		t.Fatalf("expected the created customer, got %+v", listed)
	}

	if err := svc.DeleteCustomer(ctx, customer.ID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	if _, err := svc.GetCustomer(ctx, customer.ID); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func buildService(t *testing.T) domain.Service {
	t.Helper()

	db := setupTestDB(t)
	return merchantservice.New(merchantservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  merchantrepo.Provide(),
	})
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE merchants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			cnpj TEXT,
			pix_key TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE customers (
			id TEXT PRIMARY KEY,
			merchant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			phone TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}
	return db
}
