package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats_LoadsBeforeSubscriptionsAreLive(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 3)
	c := f.customer(t, "0")
	_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 1, PaymentType: enum.PaymentTypeCreditNote, Operator: cashier,
	})
	require.NoError(t, err)

	svc := NewDashboardService(f.store, f.opts)
	assert.False(t, svc.Ready())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 1, stats.TotalCustomers)
	assert.True(t, dec("1000").Equal(stats.TodaySales))
	assert.True(t, dec("1000").Equal(stats.OutstandingCredit))
	require.Len(t, stats.LowStock, 1)
	assert.Len(t, stats.Debts, 1)
}

func TestDashboardStats_FollowsLiveSnapshots(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "500", 10)
	c := f.customer(t, "0")

	svc := NewDashboardService(f.store, f.opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, svc.Ready, time.Second, 5*time.Millisecond)

	_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 8, PaymentType: enum.PaymentTypeCash, Operator: cashier,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stats, err := svc.Stats(context.Background())
		return err == nil && len(stats.RecentSales) == 1 && len(stats.LowStock) == 1
	}, time.Second, 5*time.Millisecond)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.True(t, dec("4000").Equal(stats.TodaySales))
	assert.True(t, stats.OutstandingCredit.IsZero())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dashboard did not stop")
	}
}
