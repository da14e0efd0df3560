package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Random sales, payments and deposits from several goroutines must never drive a
// customer balance below zero, neither in the store nor in any published snapshot.
func TestCreditNeverNegative_UnderConcurrentWorkflows(t *testing.T) {
	f := newFixture(t)
	f.opts.MaxAttempts = 20
	sales := NewSaleService(f.store, f.settings, f.opts)
	payments := NewPaymentService(f.store, f.settings, f.opts)
	customers := NewCustomerService(f.store, f.opts)

	products := []*entity.Product{f.product(t, "150", 400), f.product(t, "975.50", 400)}
	buyers := []*entity.Customer{f.customer(t, "2000"), f.customer(t, "500"), f.customer(t, "0")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps, err := f.store.Subscribe(ctx, ledger.Customers)
	require.NoError(t, err)

	var (
		watched  int
		negative []string
		watchWG  sync.WaitGroup
	)
	watchWG.Add(1)
	go func() {
		defer watchWG.Done()
		for snap := range snaps {
			watched++
			for _, c := range snap.Customers {
				if c.Balance.IsNegative() {
					negative = append(negative, c.Name+" "+c.Balance.String())
				}
			}
		}
	}()

	const workers, opsPerWorker = 6, 40
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			var open []*entity.Sale
			for i := 0; i < opsPerWorker; i++ {
				c := buyers[rng.Intn(len(buyers))]
				switch rng.Intn(4) {
				case 0:
					_, _ = customers.Deposit(context.Background(), c.ID, decimal.NewFromInt(int64(rng.Intn(800)+1)))
				case 1:
					p := products[rng.Intn(len(products))]
					_, _ = sales.RecordSale(context.Background(), &RecordSaleInput{
						ProductID: p.ID, CustomerID: c.ID, Quantity: rng.Intn(3) + 1,
						PaymentType: enum.PaymentTypeCustomerCredit, Operator: cashier,
					})
				case 2:
					p := products[rng.Intn(len(products))]
					res, err := sales.RecordSale(context.Background(), &RecordSaleInput{
						ProductID: p.ID, CustomerID: c.ID, Quantity: 1,
						PaymentType: enum.PaymentTypeCreditNote, Operator: cashier,
					})
					if err == nil {
						open = append(open, res.Sale)
					}
				default:
					if len(open) == 0 {
						continue
					}
					sale := open[rng.Intn(len(open))]
					pt := enum.PaymentTypeCustomerCredit
					if rng.Intn(2) == 0 {
						pt = enum.PaymentTypeCash
					}
					_, _ = payments.ApplyPayment(context.Background(), &ApplyPaymentInput{
						SaleID: sale.ID, Amount: decimal.NewFromInt(int64(rng.Intn(300) + 1)),
						PaymentType: pt, Operator: cashier,
					})
				}
			}
		}(int64(w + 1))
	}
	wg.Wait()

	for _, c := range buyers {
		assert.False(t, f.balance(t, c.ID).IsNegative(), c.Name)
	}

	all, err := f.store.ListSales(context.Background(), ledger.SaleFilter{})
	require.NoError(t, err)
	for i := range all {
		assertSettlementConsistent(t, &all[i])
	}

	time.Sleep(50 * time.Millisecond)
	cancel()
	watchWG.Wait()
	assert.Positive(t, watched)
	assert.Empty(t, negative)
}
