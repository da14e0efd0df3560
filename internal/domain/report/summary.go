package report

import (
	"time"

	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const recentSalesLimit = 5

// Summary is the dashboard view of the shop.
type Summary struct {
	TotalProducts     int              `json:"total_products"`
	TotalCustomers    int              `json:"total_customers"`
	TotalCategories   int              `json:"total_categories"`
	TodaySales        decimal.Decimal  `json:"today_sales"`
	OutstandingCredit decimal.Decimal  `json:"outstanding_credit"`
	LowStock          []entity.Product `json:"low_stock"`
	RecentSales       []entity.Sale    `json:"recent_sales"`
	Debts             []entity.Sale    `json:"debts"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// Input is the set of collection snapshots a summary is computed from.
type Input struct {
	Products   []entity.Product
	Customers  []entity.Customer
	Categories []entity.Category
	Sales      []entity.Sale
}

// Summarize computes the dashboard. The same input and now always give the same summary.
func Summarize(in Input, now time.Time) Summary {
	sales := make([]entity.Sale, len(in.Sales))
	copy(sales, in.Sales)
	SortBySaleDateDesc(sales)

	recent := sales
	if len(recent) > recentSalesLimit {
		recent = recent[:recentSalesLimit]
	}

	return Summary{
		TotalProducts:     len(in.Products),
		TotalCustomers:    len(in.Customers),
		TotalCategories:   len(in.Categories),
		TodaySales:        TodaySalesTotal(sales, now),
		OutstandingCredit: OutstandingCredit(sales),
		LowStock:          LowStock(in.Products),
		RecentSales:       append([]entity.Sale(nil), recent...),
		Debts:             Outstanding(sales),
		GeneratedAt:       now,
	}
}
