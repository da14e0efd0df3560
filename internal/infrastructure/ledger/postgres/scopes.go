package postgres

import (
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"gorm.io/gorm"
)

func productScope(filter ledger.ProductFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			db = db.Where("name ILIKE ?", "%"+filter.Search+"%")
		}
		if filter.CategoryID != nil {
			db = db.Where("category_id = ?", *filter.CategoryID)
		}
		return db
	}
}

func customerScope(filter ledger.CustomerFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			db = db.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", like, like, like)
		}
		return db
	}
}

func saleScope(filter ledger.SaleFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.CustomerID != nil {
			db = db.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.Status != nil {
			db = db.Where("status = ?", *filter.Status)
		}
		if filter.From != nil {
			db = db.Where("sale_date >= ?", *filter.From)
		}
		if filter.To != nil {
			db = db.Where("sale_date <= ?", *filter.To)
		}
		return db
	}
}

func paymentScope(filter ledger.PaymentFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.SaleID != nil {
			db = db.Where("sale_id = ?", *filter.SaleID)
		}
		return db
	}
}
