package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	CategoryID       *uuid.UUID      `json:"category_id"`
	Name             string          `json:"name" binding:"required,max=255"`
	Quantity         int             `json:"quantity" binding:"min=0"`
	Price            decimal.Decimal `json:"price"`
	ReorderThreshold int             `json:"reorder_threshold" binding:"min=0"`
	Photo            *string         `json:"photo" binding:"omitempty,max=255"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	CategoryID       *uuid.UUID       `json:"category_id"`
	ClearCategory    bool             `json:"clear_category"`
	Name             *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Quantity         *int             `json:"quantity" binding:"omitempty,min=0"`
	Price            *decimal.Decimal `json:"price"`
	ReorderThreshold *int             `json:"reorder_threshold" binding:"omitempty,min=0"`
	Photo            *string          `json:"photo" binding:"omitempty,max=255"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// CategoryRequest creates or edits a category
type CategoryRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=255"`
	ParentID    *uuid.UUID `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`
}

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name  string  `json:"name" binding:"required,max=255"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone" binding:"omitempty,max=50"`
}

// UpdateCustomerRequest edits contact details only
type UpdateCustomerRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone" binding:"omitempty,max=50"`
}

// DepositRequest tops up a customer's credit
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CompanyProfileRequest replaces the company profile
type CompanyProfileRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Address string  `json:"address" binding:"max=500"`
	Phone   string  `json:"phone" binding:"max=50"`
	Logo    *string `json:"logo" binding:"omitempty,max=255"`
}
