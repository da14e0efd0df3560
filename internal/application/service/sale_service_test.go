package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/internal/domain/settlement"
	"github.com/sangkips/creance-pos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSale_CustomerCredit(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 10)
	c := f.customer(t, "5000")

	result, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID:   p.ID,
		CustomerID:  c.ID,
		Quantity:    3,
		PaymentType: enum.PaymentTypeCustomerCredit,
		Operator:    cashier,
	})
	require.NoError(t, err)

	sale := result.Sale
	assert.True(t, dec("3000").Equal(sale.TotalPrice))
	assert.True(t, dec("3000").Equal(sale.PaidAmount))
	assert.Equal(t, enum.SaleStatusCompleted, sale.Status)
	assert.Equal(t, p.Name, sale.ProductName)
	assert.Equal(t, c.Name, sale.CustomerName)
	assert.Equal(t, cashier.Name, sale.CreatedByName)

	assert.Equal(t, 7, f.quantity(t, p.ID))
	assert.True(t, dec("2000").Equal(f.balance(t, c.ID)))

	require.NotNil(t, result.Receipt)
	assert.Equal(t, 7, result.Receipt.Product.Quantity)
	assert.True(t, dec("2000").Equal(result.Receipt.Customer.Balance))
	assert.Equal(t, "Ma Boutique", result.Receipt.Company.Name)
}

func TestRecordSale_StockConservation(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "250", 12)
	c := f.customer(t, "0")

	for _, qty := range []int{1, 4, 2, 5} {
		before := f.quantity(t, p.ID)
		_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
			ProductID: p.ID, CustomerID: c.ID, Quantity: qty,
			PaymentType: enum.PaymentTypeCash, Operator: cashier,
		})
		require.NoError(t, err)
		assert.Equal(t, before-qty, f.quantity(t, p.ID))
	}
	assert.Equal(t, 0, f.quantity(t, p.ID))

	_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 1,
		PaymentType: enum.PaymentTypeCash, Operator: cashier,
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, 0, f.quantity(t, p.ID))
}

func TestRecordSale_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 2)
	c := f.customer(t, "100000")

	_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 5,
		PaymentType: enum.PaymentTypeCustomerCredit, Operator: cashier,
	})

	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Contains(t, err.Error(), p.Name)
	assert.Equal(t, 2, f.quantity(t, p.ID))
	assert.True(t, dec("100000").Equal(f.balance(t, c.ID)))
	assert.Equal(t, 0, f.saleCount(t))
}

func TestRecordSale_AtomicOnFailedPrecondition(t *testing.T) {
	tests := []struct {
		name    string
		qty     int
		balance string
		pt      enum.PaymentType
		disc    settlement.Discount
		wantErr error
	}{
		{"insufficient credit", 3, "2999", enum.PaymentTypeCustomerCredit, settlement.Discount{}, apperror.ErrInsufficientCredit},
		{"discount above subtotal", 1, "0", enum.PaymentTypeCash, settlement.Discount{Type: enum.DiscountTypeFixed, Value: dec("1500")}, apperror.ErrInvalidAmount},
		{"zero quantity", 0, "0", enum.PaymentTypeCash, settlement.Discount{}, apperror.ErrInvalidAmount},
		{"too many units", 11, "50000", enum.PaymentTypeCustomerCredit, settlement.Discount{}, apperror.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.product(t, "1000", 10)
			c := f.customer(t, tt.balance)

			_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
				ProductID: p.ID, CustomerID: c.ID, Quantity: tt.qty,
				PaymentType: tt.pt, Discount: tt.disc, Operator: cashier,
			})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 10, f.quantity(t, p.ID))
			assert.True(t, dec(tt.balance).Equal(f.balance(t, c.ID)))
			assert.Equal(t, 0, f.saleCount(t))
		})
	}
}

func TestRecordSale_DiscountAndVAT(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 10)
	c := f.customer(t, "0")

	result, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID:   p.ID,
		CustomerID:  c.ID,
		Quantity:    2,
		PaymentType: enum.PaymentTypeMobileMoneyA,
		Discount:    settlement.Discount{Type: enum.DiscountTypePercentage, Value: dec("10")},
		ApplyVAT:    true,
		Operator:    cashier,
	})
	require.NoError(t, err)

	sale := result.Sale
	assert.True(t, dec("2000").Equal(sale.Subtotal))
	assert.True(t, dec("200").Equal(sale.DiscountAmount))
	assert.True(t, dec("324").Equal(sale.VATAmount))
	assert.True(t, dec("2124").Equal(sale.TotalPrice))
	assert.Equal(t, enum.SaleStatusCompleted, sale.Status)
}

func TestRecordSale_DeferredHasNoReceipt(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 10)
	c := f.customer(t, "0")

	result, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 3,
		PaymentType: enum.PaymentTypeCreditNote, Operator: cashier,
	})
	require.NoError(t, err)

	assert.Equal(t, enum.SaleStatusCredit, result.Sale.Status)
	assert.True(t, result.Sale.PaidAmount.IsZero())
	assert.Nil(t, result.Receipt)
	assert.Equal(t, 7, f.quantity(t, p.ID))

	_, err = f.sales.GetSaleReceipt(context.Background(), result.Sale.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRecordSale_UnknownRecords(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 10)
	c := f.customer(t, "0")

	_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: uuid.New(), CustomerID: c.ID, Quantity: 1,
		PaymentType: enum.PaymentTypeCash, Operator: cashier,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: uuid.New(), Quantity: 1,
		PaymentType: enum.PaymentTypeCash, Operator: cashier,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, 10, f.quantity(t, p.ID))
}

func TestRecordSale_RetriesGuardConflicts(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 10)
	c := f.customer(t, "0")

	flaky := &flakyStore{Store: f.store}
	flaky.failures.Store(2)
	svc := NewSaleService(flaky, f.settings, f.opts)

	_, err := svc.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 1,
		PaymentType: enum.PaymentTypeCash, Operator: cashier,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), flaky.commits.Load())
	assert.Equal(t, 9, f.quantity(t, p.ID))
}

func TestRecordSale_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 10)
	c := f.customer(t, "0")

	flaky := &flakyStore{Store: f.store}
	flaky.failures.Store(100)
	svc := NewSaleService(flaky, f.settings, f.opts)

	_, err := svc.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 1,
		PaymentType: enum.PaymentTypeCash, Operator: cashier,
	})
	assert.ErrorIs(t, err, apperror.ErrStoreCommitFailure)
	assert.True(t, errors.Is(err, ledger.ErrConflict))
	assert.Equal(t, int32(f.opts.MaxAttempts), flaky.commits.Load())
	assert.Equal(t, 10, f.quantity(t, p.ID))
}

func TestRecordSale_RequiresOperator(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 10)
	c := f.customer(t, "0")

	_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 1, PaymentType: enum.PaymentTypeCash,
	})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestGetSaleReceipt_UsesSnapshotWhenProductDeleted(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "1000", 10)
	c := f.customer(t, "0")

	result, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 1,
		PaymentType: enum.PaymentTypeCash, Operator: cashier,
	})
	require.NoError(t, err)
	require.NoError(t, f.store.CommitBatch(context.Background(), ledger.NewBatch().DeleteProduct(p.ID)))

	receipt, err := f.sales.GetSaleReceipt(context.Background(), result.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, receipt.Product.Name)
	assert.Equal(t, result.Sale.InvoiceNo, receipt.Sale.InvoiceNo)
}

func TestListSales_RangeAndOutstanding(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "500", 50)
	c := f.customer(t, "0")

	record := func(qty int, pt enum.PaymentType) {
		_, err := f.sales.RecordSale(context.Background(), &RecordSaleInput{
			ProductID: p.ID, CustomerID: c.ID, Quantity: qty, PaymentType: pt, Operator: cashier,
		})
		require.NoError(t, err)
	}
	record(2, enum.PaymentTypeCash)
	record(1, enum.PaymentTypeCreditNote)
	record(4, enum.PaymentTypeCreditNote)

	list, err := f.sales.ListSales(context.Background(), &ListSalesInput{Range: enum.DateRangeToday})
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
	assert.True(t, dec("3500").Equal(list.RangeTotal))

	outstanding, total, err := f.sales.ListOutstanding(context.Background())
	require.NoError(t, err)
	assert.Len(t, outstanding, 2)
	assert.True(t, dec("2500").Equal(total))

	_, err = f.sales.ListSales(context.Background(), &ListSalesInput{Range: enum.DateRangeCustom})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}
