package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/internal/infrastructure/ledger/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)

var cashier = entity.Operator{ID: uuid.MustParse("8d7f3c1e-2f0a-4c55-9a0e-3b1c6d2e4f10"), Name: "Aminata"}

func testOptions() SettlementOptions {
	opts := DefaultSettlementOptions()
	opts.Now = func() time.Time { return testNow }
	return opts
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store    *memory.Store
	opts     SettlementOptions
	settings *SettingsService
	sales    *SaleService
	payments *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(memory.WithClock(func() time.Time { return testNow }))
	opts := testOptions()
	settings := NewSettingsService(store, opts)
	return &fixture{
		store:    store,
		opts:     opts,
		settings: settings,
		sales:    NewSaleService(store, settings, opts),
		payments: NewPaymentService(store, settings, opts),
	}
}

func (f *fixture) product(t *testing.T, price string, qty int) *entity.Product {
	t.Helper()
	p := &entity.Product{ID: uuid.New(), Name: "Riz parfumé 5kg", Price: dec(price), Quantity: qty, ReorderThreshold: 2}
	require.NoError(t, f.store.CommitBatch(context.Background(), ledger.NewBatch().CreateProduct(p)))
	return p
}

func (f *fixture) customer(t *testing.T, balance string) *entity.Customer {
	t.Helper()
	c := &entity.Customer{ID: uuid.New(), Name: "Moussa Diop", Balance: dec(balance)}
	require.NoError(t, f.store.CommitBatch(context.Background(), ledger.NewBatch().CreateCustomer(c)))
	return c
}

func (f *fixture) quantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	c, err := f.store.GetCustomer(context.Background(), id)
	require.NoError(t, err)
	return c.Balance
}

func (f *fixture) saleCount(t *testing.T) int {
	t.Helper()
	sales, err := f.store.ListSales(context.Background(), ledger.SaleFilter{})
	require.NoError(t, err)
	return len(sales)
}

// flakyStore fails the first n commits with a guard conflict before delegating.
type flakyStore struct {
	ledger.Store
	failures atomic.Int32
	commits  atomic.Int32
}

func (s *flakyStore) CommitBatch(ctx context.Context, b *ledger.Batch) error {
	s.commits.Add(1)
	if s.failures.Add(-1) >= 0 {
		return ledger.ErrConflict
	}
	return s.Store.CommitBatch(ctx, b)
}

// racingStore runs interleave once, right before the first commit it forwards.
type racingStore struct {
	ledger.Store
	interleave func()
	once       sync.Once
}

func (s *racingStore) CommitBatch(ctx context.Context, b *ledger.Batch) error {
	s.once.Do(s.interleave)
	return s.Store.CommitBatch(ctx, b)
}

func (f *fixture) sellCash(t *testing.T, productID, customerID uuid.UUID, qty int) {
	t.Helper()
	_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: productID, CustomerID: customerID, Quantity: qty,
		PaymentType: enum.PaymentTypeCash, Operator: cashier,
	})
	require.NoError(t, err)
}
