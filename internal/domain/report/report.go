// Package report derives read-only views from ledger snapshots. Every function is pure.
package report

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var ErrCustomRangeIncomplete = errors.New("custom range needs both start and end dates")

// Window is a closed interval of sale dates. A nil bound is open.
type Window struct {
	From *time.Time
	To   *time.Time
}

func (w Window) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && t.After(*w.To) {
		return false
	}
	return true
}

// LowStock returns products that are in stock but at or below their reorder threshold,
// lowest quantity first.
func LowStock(products []entity.Product) []entity.Product {
	out := make([]entity.Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Total sums TotalPrice over sales.
func Total(sales []entity.Sale) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range sales {
		sum = sum.Add(s.TotalPrice)
	}
	return sum
}

// TodaySalesTotal sums sales dated on now's calendar day, in now's location.
func TodaySalesTotal(sales []entity.Sale, now time.Time) decimal.Decimal {
	w, _ := ResolveRange(enum.DateRangeToday, now, nil, nil)
	sum := decimal.Zero
	for _, s := range sales {
		if w.Contains(s.SaleDate.In(now.Location())) {
			sum = sum.Add(s.TotalPrice)
		}
	}
	return sum
}

// OutstandingCredit sums what is still owed on Credit sales.
func OutstandingCredit(sales []entity.Sale) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range sales {
		if s.IsOutstanding() {
			sum = sum.Add(s.Remaining())
		}
	}
	return sum
}

// Outstanding lists Credit sales, newest first.
func Outstanding(sales []entity.Sale) []entity.Sale {
	out := make([]entity.Sale, 0)
	for _, s := range sales {
		if s.IsOutstanding() {
			out = append(out, s)
		}
	}
	SortBySaleDateDesc(out)
	return out
}

// CustomerHistory lists one customer's sales, newest first.
func CustomerHistory(sales []entity.Sale, customerID uuid.UUID) []entity.Sale {
	out := make([]entity.Sale, 0)
	for _, s := range sales {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	SortBySaleDateDesc(out)
	return out
}

// FilterByRange keeps sales inside w, newest first.
func FilterByRange(sales []entity.Sale, w Window) []entity.Sale {
	out := make([]entity.Sale, 0)
	for _, s := range sales {
		if w.Contains(s.SaleDate) {
			out = append(out, s)
		}
	}
	SortBySaleDateDesc(out)
	return out
}

// SortBySaleDateDesc orders sales newest first, breaking ties by invoice number.
func SortBySaleDateDesc(sales []entity.Sale) {
	sort.SliceStable(sales, func(i, j int) bool {
		if !sales[i].SaleDate.Equal(sales[j].SaleDate) {
			return sales[i].SaleDate.After(sales[j].SaleDate)
		}
		return sales[i].InvoiceNo > sales[j].InvoiceNo
	})
}

// SortPaymentsByDateDesc orders payments newest first.
func SortPaymentsByDateDesc(payments []entity.Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].PaymentDate.After(payments[j].PaymentDate)
	})
}
