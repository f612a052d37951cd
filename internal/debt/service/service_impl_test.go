package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fiadolabs/fiado/internal/clock"
	debtdomain "github.com/fiadolabs/fiado/internal/debt/domain"
	debtrepo "github.com/fiadolabs/fiado/internal/debt/repository"
	debtservice "github.com/fiadolabs/fiado/internal/debt/service"
	merchantdomain "github.com/fiadolabs/fiado/internal/merchant/domain"
	merchantrepo "github.com/fiadolabs/fiado/internal/merchant/repository"
	merchantservice "github.com/fiadolabs/fiado/internal/merchant/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateDebtRoundsAmount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	merchants, debts := buildServices(t, db, clk)

	customer := seedMerchantAndCustomer(t, ctx, merchants)

	amount, _ := decimal.NewFromString("10.005")
	debt, err := debts.Create(ctx, debtdomain.CreateDebtRequest{
		CustomerID:  customer.ID,
		Description: "feira da semana",
		Amount:      amount,
	})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}

	if debt.Amount.StringFixed(2) != "10.01" {
		t.Fatalf("expected amount 10.01, got %s", debt.Amount.StringFixed(2))
	}
	if debt.Status != debtdomain.StatusPending {
		t.Fatalf("expected status PENDING, got %s", debt.Status)
	}
	if debt.MerchantID != customer.MerchantID {
		t.Fatalf("expected merchant %s, got %s", customer.MerchantID, debt.MerchantID)
	}
}

func TestCreateDebtRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	merchants, debts := buildServices(t, db, clk)

	customer := seedMerchantAndCustomer(t, ctx, merchants)

	_, err := debts.Create(ctx, debtdomain.CreateDebtRequest{
		CustomerID: customer.ID,
		Amount:     decimal.Zero,
	})
	if err != debtdomain.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransitionIsForwardOnly(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	merchants, debts := buildServices(t, db, clk)

	customer := seedMerchantAndCustomer(t, ctx, merchants)
	debt := seedDebt(t, ctx, debts, customer)

	if err := debts.Transition(ctx, nil, debt.ID, debtdomain.StatusPending, debtdomain.StatusAwaitingPayment, nil); err != nil {
		t.Fatalf("pending -> awaiting: %v", err)
	}

	// The row already moved on; the compare-and-set must miss.
	err := debts.Transition(ctx, nil, debt.ID, debtdomain.StatusPending, debtdomain.StatusAwaitingPayment, nil)
	if err != debtdomain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on replay, got %v", err)
	}

	err = debts.Transition(ctx, nil, debt.ID, debtdomain.StatusAwaitingPayment, debtdomain.StatusPending, nil)
	if err != debtdomain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on backward move, got %v", err)
	}

	paidAt := clk.Now()
	if err := debts.Transition(ctx, nil, debt.ID, debtdomain.StatusAwaitingPayment, debtdomain.StatusPaid, &paidAt); err != nil {
		t.Fatalf("awaiting -> paid: %v", err)
	}

	updated, err := debts.GetByID(ctx, debt.ID)
	if err != nil {
		t.Fatalf("get debt: %v", err)
	}
	if updated.Status != debtdomain.StatusPaid {
		t.Fatalf("expected PAID, got %s", updated.Status)
	}
	if updated.PaidAt == nil {
		t.Fatalf("expected paid_at to be set")
	}
}

func TestManualStatusOverride(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	merchants, debts := buildServices(t, db, clk)

	customer := seedMerchantAndCustomer(t, ctx, merchants)
	debt := seedDebt(t, ctx, debts, customer)

	if err := debts.Transition(ctx, nil, debt.ID, debtdomain.StatusPending, debtdomain.StatusAwaitingPayment, nil); err != nil {
		t.Fatalf("pending -> awaiting: %v", err)
	}

	paid, err := debts.SetManualStatus(ctx, debt.ID, debtdomain.StatusPaid)
	if err != nil {
		t.Fatalf("manual paid: %v", err)
	}
	if paid.Status != debtdomain.StatusPaid || paid.PaidAt == nil {
		t.Fatalf("expected PAID with paid_at, got %s paid_at=%v", paid.Status, paid.PaidAt)
	}

	reopened, err := debts.SetManualStatus(ctx, debt.ID, debtdomain.StatusPending)
	if err != nil {
		t.Fatalf("manual pending: %v", err)
	}
	if reopened.Status != debtdomain.StatusPending {
		t.Fatalf("expected PENDING, got %s", reopened.Status)
	}
	if reopened.PaidAt != nil {
		t.Fatalf("expected paid_at cleared, got %v", reopened.PaidAt)
	}

	if _, err := debts.SetManualStatus(ctx, debt.ID, debtdomain.StatusAwaitingPayment); err != debtdomain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus for AWAITING_PAYMENT target, got %v", err)
	}
}

func TestForwardedDebtIsImmutable(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	merchants, debts := buildServices(t, db, clk)

	customer := seedMerchantAndCustomer(t, ctx, merchants)
	debt := seedDebt(t, ctx, debts, customer)

	if err := db.Exec(`UPDATE debts SET status = ? WHERE id = ?`, debtdomain.StatusForwarded, debt.ID).Error; err != nil {
		t.Fatalf("force forwarded: %v", err)
	}

	if _, err := debts.SetManualStatus(ctx, debt.ID, debtdomain.StatusPending); err != debtdomain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on forwarded override, got %v", err)
	}
	if err := debts.Delete(ctx, debt.ID); err != debtdomain.ErrDeleteForwarded {
		t.Fatalf("expected ErrDeleteForwarded, got %v", err)
	}
}

func TestListByMerchantDefaultsToOpenDebts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	merchants, debts := buildServices(t, db, clk)

	customer := seedMerchantAndCustomer(t, ctx, merchants)

	open := seedDebt(t, ctx, debts, customer)
	settled := seedDebt(t, ctx, debts, customer)
	if err := db.Exec(`UPDATE debts SET status = ? WHERE id = ?`, debtdomain.StatusForwarded, settled.ID).Error; err != nil {
		t.Fatalf("force forwarded: %v", err)
	}

	listed, err := debts.ListByMerchant(ctx, debtdomain.ListDebtsRequest{MerchantID: customer.MerchantID})
	if err != nil {
		t.Fatalf("list by merchant: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != open.ID {
		t.Fatalf("expected only the open debt, got %d items", len(listed))
	}

	_, err = debts.ListByMerchant(ctx, debtdomain.ListDebtsRequest{
		MerchantID: customer.MerchantID,
		Statuses:   []debtdomain.Status{"BOGUS"},
	})
	if err != debtdomain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func buildServices(t *testing.T, db *gorm.DB, clk clock.Clock) (merchantdomain.Service, debtdomain.Service) {
	t.Helper()

	merchants := merchantservice.New(merchantservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clk,
		Repo:  merchantrepo.Provide(),
	})
	debts := debtservice.New(debtservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     clk,
		Repo:      debtrepo.Provide(),
		Merchants: merchants,
	})
	return merchants, debts
}

func seedMerchantAndCustomer(t *testing.T, ctx context.Context, merchants merchantdomain.Service) merchantdomain.Customer {
	t.Helper()

	merchant, err := merchants.CreateMerchant(ctx, merchantdomain.CreateMerchantRequest{
		Name:   "Mercearia do Zé",
		PixKey: "ze@example.com",
	})
	if err != nil {
		t.Fatalf("create merchant: %v", err)
	}

	customer, err := merchants.CreateCustomer(ctx, merchantdomain.CreateCustomerRequest{
		MerchantID: merchant.ID,
		Name:       "Maria",
		Phone:      "+5511999990000",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func seedDebt(t *testing.T, ctx context.Context, debts debtdomain.Service, customer merchantdomain.Customer) debtdomain.Debt {
	t.Helper()

	amount, _ := decimal.NewFromString("25.00")
	debt, err := debts.Create(ctx, debtdomain.CreateDebtRequest{
		CustomerID: customer.ID,
		Amount:     amount,
	})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}
	return debt
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
		`CREATE TABLE debts (
			id TEXT PRIMARY KEY,
			merchant_id TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			description TEXT,
			amount NUMERIC NOT NULL,
			status TEXT NOT NULL,
			due_date DATETIME,
			paid_at DATETIME,
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
