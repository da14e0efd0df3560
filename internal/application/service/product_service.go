package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/internal/domain/report"
	"github.com/sangkips/creance-pos/internal/domain/settlement"
	"github.com/sangkips/creance-pos/pkg/apperror"
	"github.com/sangkips/creance-pos/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductService handles the product catalog
type ProductService struct {
	store ledger.Store
	opts  SettlementOptions
}

// NewProductService creates a new product service
func NewProductService(store ledger.Store, opts SettlementOptions) *ProductService {
	return &ProductService{store: store, opts: opts}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	CategoryID       *uuid.UUID
	Name             string
	Quantity         int
	Price            decimal.Decimal
	ReorderThreshold int
	Photo            *string
}

// CreateProduct adds a product to the catalog
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	product := &entity.Product{
		ID:               uuid.New(),
		CategoryID:       input.CategoryID,
		Name:             strings.TrimSpace(input.Name),
		Quantity:         input.Quantity,
		Price:            input.Price,
		ReorderThreshold: input.ReorderThreshold,
		Photo:            input.Photo,
	}
	if err := validateProduct(product, s.opts.Pricing); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}
	if err := s.store.CommitBatch(ctx, ledger.NewBatch().CreateProduct(product)); err != nil {
		return nil, apperror.NewStoreCommitFailure(err)
	}
	return s.store.GetProduct(ctx, product.ID)
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Product")
	}
	return product, nil
}

// ListProductsInput filters the product list
type ListProductsInput struct {
	Search     string
	CategoryID *uuid.UUID
	Pagination *pagination.PaginationParams
}

// ListProducts lists products by name
func (s *ProductService) ListProducts(ctx context.Context, input *ListProductsInput) (*pagination.PaginatedResult[entity.Product], error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	products, err := s.store.ListProducts(ctx, ledger.ProductFilter{
		Search:     strings.TrimSpace(input.Search),
		CategoryID: input.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return pagination.Paginate(products, input.Pagination), nil
}

// LowStock lists products that are in stock but at or below their reorder threshold
func (s *ProductService) LowStock(ctx context.Context) ([]entity.Product, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	products, err := s.store.ListProducts(ctx, ledger.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return report.LowStock(products), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	ID               uuid.UUID
	CategoryID       *uuid.UUID
	ClearCategory    bool
	Name             *string
	Quantity         *int
	Price            *decimal.Decimal
	ReorderThreshold *int
	Photo            *string
}

// UpdateProduct edits a product's catalog fields. A new quantity is committed as a
// stock correction that fails with a conflict if a sale moved the stock since the read.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	product, err := s.store.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, lookupError(err, "Product")
	}
	observed := product.Quantity

	switch {
	case input.ClearCategory:
		product.CategoryID = nil
	case input.CategoryID != nil:
		product.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.ReorderThreshold != nil {
		product.ReorderThreshold = *input.ReorderThreshold
	}
	if input.Photo != nil {
		product.Photo = input.Photo
	}

	if err := validateProduct(product, s.opts.Pricing); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	batch := ledger.NewBatch().UpdateProduct(product)
	if input.Quantity != nil && *input.Quantity != observed {
		batch.CorrectStock(product.ID, observed, *input.Quantity)
	}
	if err := s.store.CommitBatch(ctx, batch); err != nil {
		return nil, catalogCommitError(err, "Product")
	}
	return s.store.GetProduct(ctx, product.ID)
}

// DeleteProduct removes a product. Sales keep the captured product name.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	if err := s.store.CommitBatch(ctx, ledger.NewBatch().DeleteProduct(id)); err != nil {
		return catalogCommitError(err, "Product")
	}
	return nil
}

func (s *ProductService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.store.GetCategory(ctx, *id); err != nil {
		return lookupError(err, "Category")
	}
	return nil
}

func validateProduct(p *entity.Product, pricing settlement.Pricing) error {
	var fieldErrors []apperror.FieldError
	if p.Name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Product name is required"})
	}
	if p.Quantity < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "Quantity cannot be negative"})
	}
	if p.Price.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: "Price cannot be negative"})
	} else if !pricing.InScale(p.Price) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: fmt.Sprintf("Price cannot have more than %d decimal places", pricing.Places)})
	}
	if p.ReorderThreshold < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "reorder_threshold", Message: "Reorder threshold cannot be negative"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}
