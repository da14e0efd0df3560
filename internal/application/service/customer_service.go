package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/internal/domain/report"
	"github.com/sangkips/creance-pos/pkg/apperror"
	"github.com/sangkips/creance-pos/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerService handles customer records and credit deposits
type CustomerService struct {
	store ledger.Store
	opts  SettlementOptions
}

// NewCustomerService creates a new customer service
func NewCustomerService(store ledger.Store, opts SettlementOptions) *CustomerService {
	return &CustomerService{store: store, opts: opts}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name  string
	Email *string
	Phone *string
}

// CreateCustomer creates a new customer with a zero balance
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "Customer name is required"}})
	}

	customer := &entity.Customer{
		ID:      uuid.New(),
		Name:    name,
		Email:   input.Email,
		Phone:   input.Phone,
		Balance: decimal.Zero,
	}

	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	if err := s.store.CommitBatch(ctx, ledger.NewBatch().CreateCustomer(customer)); err != nil {
		return nil, apperror.NewStoreCommitFailure(err)
	}
	return s.store.GetCustomer(ctx, customer.ID)
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	customer, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Customer")
	}
	return customer, nil
}

// ListCustomers lists customers by name
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	customers, err := s.store.ListCustomers(ctx, ledger.CustomerFilter{Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return pagination.Paginate(customers, params), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID    uuid.UUID
	Name  *string
	Email *string
	Phone *string
}

// UpdateCustomer edits contact details. The balance only changes through sales,
// payments and deposits.
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	customer, err := s.store.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, lookupError(err, "Customer")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "Customer name is required"}})
		}
		customer.Name = name
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}

	if err := s.store.CommitBatch(ctx, ledger.NewBatch().UpdateCustomer(customer)); err != nil {
		return nil, catalogCommitError(err, "Customer")
	}
	return s.store.GetCustomer(ctx, customer.ID)
}

// DeleteCustomer deletes a customer. Their past sales keep the captured name.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	if err := s.store.CommitBatch(ctx, ledger.NewBatch().DeleteCustomer(id)); err != nil {
		return catalogCommitError(err, "Customer")
	}
	return nil
}

// Deposit tops up a customer's credit balance.
func (s *CustomerService) Deposit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) (*entity.Customer, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewInvalidDepositError("Deposit amount must be greater than zero")
	}
	if !s.opts.Pricing.InScale(amount) {
		return nil, apperror.NewInvalidDepositError(fmt.Sprintf("Deposit amount cannot have more than %d decimal places", s.opts.Pricing.Places))
	}

	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, apperror.NewInvalidDepositError("Customer not found")
		}
		return nil, lookupError(err, "Customer")
	}

	if err := s.store.CommitBatch(ctx, ledger.NewBatch().AdjustBalance(customerID, amount)); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, apperror.NewInvalidDepositError("Customer not found")
		}
		return nil, apperror.NewStoreCommitFailure(err)
	}

	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, lookupError(err, "Customer")
	}

	log.Info().
		Str("customer_id", customerID.String()).
		Str("amount", amount.String()).
		Str("balance", customer.Balance.String()).
		Msg("customer deposit recorded")
	return customer, nil
}

// SalesHistory lists one customer's sales, newest first
func (s *CustomerService) SalesHistory(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Sale], error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return nil, lookupError(err, "Customer")
	}
	sales, err := s.store.ListSales(ctx, ledger.SaleFilter{CustomerID: &customerID})
	if err != nil {
		return nil, fmt.Errorf("list customer sales: %w", err)
	}
	return pagination.Paginate(report.CustomerHistory(sales, customerID), params), nil
}
