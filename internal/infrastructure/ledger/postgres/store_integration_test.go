//go:build integration

package postgres

// Run with: go test -tags integration ./internal/infrastructure/ledger/postgres/...

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/internal/infrastructure/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("creance_test"),
		tcPostgres.WithUsername("creance"),
		tcPostgres.WithPassword("creance"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(dsn, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	store := NewStore(db, ledger.NewLocalNotifier())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_GuardedBatch(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := &entity.Product{ID: uuid.New(), Name: "Huile 1L", Quantity: 2, Price: decimal.RequireFromString("1250.50")}
	c := &entity.Customer{ID: uuid.New(), Name: "Fatou", Balance: decimal.NewFromInt(100)}
	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().CreateProduct(p).CreateCustomer(c)))

	sale := &entity.Sale{
		ID: uuid.New(), InvoiceNo: "INV-A", ProductID: p.ID, ProductName: p.Name,
		CustomerID: c.ID, CustomerName: c.Name, Quantity: 5, SaleDate: time.Now(),
		UnitPrice: p.Price, Subtotal: p.Price, TotalPrice: p.Price, CreatedByID: uuid.New(),
	}
	err := store.CommitBatch(ctx, ledger.NewBatch().CreateSale(sale).DecrementStock(p.ID, 5))
	assert.ErrorIs(t, err, ledger.ErrConflict)

	_, err = store.GetSale(ctx, sale.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.True(t, decimal.RequireFromString("1250.50").Equal(got.Price))

	err = store.CommitBatch(ctx, ledger.NewBatch().AdjustBalance(c.ID, decimal.NewFromInt(-150)))
	assert.ErrorIs(t, err, ledger.ErrConflict)
	err = store.CommitBatch(ctx, ledger.NewBatch().AdjustBalance(uuid.New(), decimal.NewFromInt(10)))
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestStore_ConcurrentDecrementsNeverOversell(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := &entity.Product{ID: uuid.New(), Name: "Sucre", Quantity: 10, Price: decimal.NewFromInt(500)}
	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().CreateProduct(p)))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.CommitBatch(ctx, ledger.NewBatch().DecrementStock(p.ID, 1)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, got.Quantity)
}

func TestStore_SettleSaleCompareAndSwap(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	sale := &entity.Sale{
		ID: uuid.New(), InvoiceNo: "INV-B", ProductID: uuid.New(), CustomerID: uuid.New(),
		Quantity: 1, TotalPrice: decimal.NewFromInt(3000), PaymentType: enum.PaymentTypeCreditNote,
		Status: enum.SaleStatusCredit, SaleDate: time.Now(), CreatedByID: uuid.New(),
	}
	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().CreateSale(sale)))

	first := ledger.Settlement{ExpectedPaid: decimal.Zero, PaidAmount: decimal.NewFromInt(1000), Status: enum.SaleStatusCredit}
	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().SettleSale(sale.ID, first)))

	err := store.CommitBatch(ctx, ledger.NewBatch().SettleSale(sale.ID, first))
	assert.ErrorIs(t, err, ledger.ErrConflict)

	cash := enum.PaymentTypeCash
	rest := ledger.Settlement{ExpectedPaid: decimal.NewFromInt(1000), PaidAmount: decimal.NewFromInt(3000), Status: enum.SaleStatusCompleted, PaymentType: &cash}
	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().SettleSale(sale.ID, rest)))

	got, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.SaleStatusCompleted, got.Status)
	assert.Equal(t, enum.PaymentTypeCash, got.PaymentType)
	assert.True(t, decimal.NewFromInt(3000).Equal(got.PaidAmount))
}

func TestStore_CompanyProfileUpsert(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.GetCompanyProfile(ctx)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().SaveCompanyProfile(&entity.CompanyProfile{Name: "A"})))
	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().SaveCompanyProfile(&entity.CompanyProfile{Name: "B", Phone: "33 800 00 00"})))

	got, err := store.GetCompanyProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, "33 800 00 00", got.Phone)
}

func TestStore_CatalogWritesLeaveSoldStockAlone(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	cat := &entity.Category{ID: uuid.New(), Name: "Céréales"}
	p := &entity.Product{ID: uuid.New(), Name: "Riz 5kg", CategoryID: &cat.ID, Quantity: 10, Price: decimal.NewFromInt(1000)}
	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().CreateCategory(cat).CreateProduct(p)))

	stale := *p
	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().DecrementStock(p.ID, 3)))

	stale.Name = "Riz brisé 5kg"
	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().UpdateProduct(&stale)))
	err := store.CommitBatch(ctx, ledger.NewBatch().CorrectStock(p.ID, 10, 25))
	assert.ErrorIs(t, err, ledger.ErrConflict)

	require.NoError(t, store.CommitBatch(ctx, ledger.NewBatch().DetachCategory(cat.ID).DeleteCategory(cat.ID)))

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Riz brisé 5kg", got.Name)
	assert.Equal(t, 7, got.Quantity)
	assert.Nil(t, got.CategoryID)
}
