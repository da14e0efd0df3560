package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a stocked item
type Product struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID       *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	Quantity         int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	Price            decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"price"`
	ReorderThreshold int             `gorm:"not null;default:0" json:"reorder_threshold"`
	Photo            *string         `gorm:"size:255" json:"photo,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether the product is still in stock but at or below its reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity > 0 && p.Quantity <= p.ReorderThreshold
}

func (p *Product) HasStock(qty int) bool {
	return p.Quantity >= qty
}

// Category groups products. Categories nest at most two levels deep.
type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ParentID  *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil
}
