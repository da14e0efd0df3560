package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/internal/domain/report"
	"github.com/sangkips/creance-pos/internal/domain/settlement"
	"github.com/sangkips/creance-pos/pkg/apperror"
	"github.com/sangkips/creance-pos/pkg/pagination"
	"github.com/sangkips/creance-pos/pkg/utils"
	"github.com/shopspring/decimal"
)

// SaleService records sales and serves sale listings
type SaleService struct {
	store    ledger.Store
	settings *SettingsService
	opts     SettlementOptions
}

// NewSaleService creates a new sale service
func NewSaleService(store ledger.Store, settings *SettingsService, opts SettlementOptions) *SaleService {
	return &SaleService{store: store, settings: settings, opts: opts}
}

// RecordSaleInput represents the record sale input
type RecordSaleInput struct {
	ProductID   uuid.UUID
	CustomerID  uuid.UUID
	Quantity    int
	PaymentType enum.PaymentType
	Discount    settlement.Discount
	ApplyVAT    bool
	Operator    entity.Operator
}

// RecordSaleResult carries the committed sale and, unless it is on credit, its receipt
type RecordSaleResult struct {
	Sale    *entity.Sale        `json:"sale"`
	Receipt *entity.SaleReceipt `json:"receipt,omitempty"`
}

func (in *RecordSaleInput) validate() error {
	if in.Quantity < 1 {
		return apperror.NewInvalidAmountError("Quantity must be at least 1")
	}
	if !in.PaymentType.IsValid() {
		return apperror.NewInvalidAmountError("Unknown payment type")
	}
	if in.Discount.Value.IsNegative() {
		return apperror.NewInvalidAmountError("Discount cannot be negative")
	}
	if in.Operator.ID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	return nil
}

// RecordSale validates stock and credit, prices the sale and commits the sale record,
// the stock decrement and any credit consumption as one batch.
func (s *SaleService) RecordSale(ctx context.Context, input *RecordSaleInput) (*RecordSaleResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var (
		sale     *entity.Sale
		product  *entity.Product
		customer *entity.Customer
	)
	err := s.opts.retryOnConflict(ctx, "record_sale", func(ctx context.Context) error {
		var err error
		product, err = s.store.GetProduct(ctx, input.ProductID)
		if err != nil {
			return lookupError(err, "Product")
		}
		if !product.HasStock(input.Quantity) {
			return apperror.NewInsufficientStockError(fmt.Sprintf("Insufficient stock for %s: %d available, %d requested", product.Name, product.Quantity, input.Quantity))
		}

		customer, err = s.store.GetCustomer(ctx, input.CustomerID)
		if err != nil {
			return lookupError(err, "Customer")
		}

		quote, err := s.opts.Pricing.Quote(product.Price, input.Quantity, input.Discount, input.ApplyVAT)
		if err != nil {
			return pricingError(err)
		}

		if input.PaymentType.ConsumesCredit() && !customer.CanCover(quote.Total) {
			return apperror.NewInsufficientCreditError(fmt.Sprintf("Insufficient credit for %s: balance %s, total %s", customer.Name, customer.Balance.StringFixed(2), quote.Total.StringFixed(2)))
		}

		sale = s.newSale(input, product, customer, quote)

		batch := ledger.NewBatch().
			CreateSale(sale).
			DecrementStock(product.ID, input.Quantity)
		if input.PaymentType.ConsumesCredit() {
			batch.AdjustBalance(customer.ID, quote.Total.Neg())
		}
		if err := s.store.CommitBatch(ctx, batch); err != nil {
			return workflowCommitError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("invoice_no", sale.InvoiceNo).
		Str("product", sale.ProductName).
		Int("quantity", sale.Quantity).
		Str("total", sale.TotalPrice.String()).
		Str("payment_type", sale.PaymentType.String()).
		Str("status", sale.Status.String()).
		Str("operator", input.Operator.Name).
		Msg("sale recorded")

	result := &RecordSaleResult{Sale: sale}
	if sale.Status != enum.SaleStatusCredit {
		product.Quantity -= input.Quantity
		if input.PaymentType.ConsumesCredit() {
			customer.Balance = customer.Balance.Sub(sale.TotalPrice)
		}
		result.Receipt = &entity.SaleReceipt{
			Sale:     *sale,
			Product:  *product,
			Customer: *customer,
			Company:  s.settings.receiptProfile(ctx),
		}
	}
	return result, nil
}

func (s *SaleService) newSale(input *RecordSaleInput, product *entity.Product, customer *entity.Customer, quote settlement.Quote) *entity.Sale {
	now := s.opts.now()
	paid, status := settlement.InitialSettlement(input.PaymentType, quote.Total)
	return &entity.Sale{
		ID:             uuid.New(),
		InvoiceNo:      utils.GenerateReferenceNo("INV", now),
		ProductID:      product.ID,
		ProductName:    product.Name,
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		Quantity:       input.Quantity,
		UnitPrice:      product.Price,
		Subtotal:       quote.Subtotal,
		DiscountType:   input.Discount.Type,
		DiscountValue:  input.Discount.Value,
		DiscountAmount: quote.DiscountAmount,
		VATApplied:     input.ApplyVAT,
		VATAmount:      quote.VATAmount,
		TotalPrice:     quote.Total,
		PaidAmount:     paid,
		PaymentType:    input.PaymentType,
		Status:         status,
		SaleDate:       now,
		CreatedByID:    input.Operator.ID,
		CreatedByName:  input.Operator.Name,
	}
}

// GetSale retrieves a sale by ID
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	sale, err := s.store.GetSale(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Sale")
	}
	return sale, nil
}

// GetSaleReceipt rebuilds the receipt of a settled sale from current records.
// Sale fields come from the sale itself; product and customer are their current state.
func (s *SaleService) GetSaleReceipt(ctx context.Context, id uuid.UUID) (*entity.SaleReceipt, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status == enum.SaleStatusCredit {
		return nil, apperror.NewConflictError("Receipt is issued once the sale is fully paid")
	}

	storeCtx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	receipt := &entity.SaleReceipt{
		Sale:    *sale,
		Company: s.settings.receiptProfile(ctx),
	}
	if product, err := s.store.GetProduct(storeCtx, sale.ProductID); err == nil {
		receipt.Product = *product
	} else {
		receipt.Product = entity.Product{ID: sale.ProductID, Name: sale.ProductName, Price: sale.UnitPrice}
	}
	if customer, err := s.store.GetCustomer(storeCtx, sale.CustomerID); err == nil {
		receipt.Customer = *customer
	} else {
		receipt.Customer = entity.Customer{ID: sale.CustomerID, Name: sale.CustomerName}
	}
	return receipt, nil
}

// ListSalesInput selects sales by named date range
type ListSalesInput struct {
	Range      enum.DateRange
	Start      *time.Time
	End        *time.Time
	CustomerID *uuid.UUID
	Pagination *pagination.PaginationParams
}

// SalesList is one page of sales plus the total of every sale in the range
type SalesList struct {
	*pagination.PaginatedResult[entity.Sale]
	RangeTotal decimal.Decimal `json:"range_total"`
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
}

// ListSales lists sales in a date range, newest first
func (s *SaleService) ListSales(ctx context.Context, input *ListSalesInput) (*SalesList, error) {
	window, err := report.ResolveRange(input.Range, s.opts.now(), input.Start, input.End)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}

	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	sales, err := s.store.ListSales(ctx, ledger.SaleFilter{CustomerID: input.CustomerID, From: window.From, To: window.To})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales = report.FilterByRange(sales, window)

	return &SalesList{
		PaginatedResult: pagination.Paginate(sales, input.Pagination),
		RangeTotal:      report.Total(sales),
		From:            window.From,
		To:              window.To,
	}, nil
}

// ListOutstanding lists sales still on credit, newest first
func (s *SaleService) ListOutstanding(ctx context.Context) ([]entity.Sale, decimal.Decimal, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	status := enum.SaleStatusCredit
	sales, err := s.store.ListSales(ctx, ledger.SaleFilter{Status: &status})
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("list outstanding sales: %w", err)
	}
	return report.Outstanding(sales), report.OutstandingCredit(sales), nil
}

func pricingError(err error) error {
	switch {
	case errors.Is(err, settlement.ErrDiscountExceedsSubtotal):
		return apperror.NewInvalidAmountError("Discount cannot exceed the subtotal")
	case errors.Is(err, settlement.ErrNegativeDiscount):
		return apperror.NewInvalidAmountError("Discount cannot be negative")
	case errors.Is(err, settlement.ErrInvalidQuantity):
		return apperror.NewInvalidAmountError("Quantity must be at least 1")
	case errors.Is(err, settlement.ErrNegativePrice):
		return apperror.NewInvalidAmountError("Product price cannot be negative")
	case errors.Is(err, settlement.ErrUnknownDiscountType):
		return apperror.NewInvalidAmountError("Unknown discount type")
	}
	return err
}
