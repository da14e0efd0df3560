package service

import (
	"context"
	"errors"
	"fmt"

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

// PaymentService applies payments against outstanding sales
type PaymentService struct {
	store    ledger.Store
	settings *SettingsService
	opts     SettlementOptions
}

// NewPaymentService creates a new payment service
func NewPaymentService(store ledger.Store, settings *SettingsService, opts SettlementOptions) *PaymentService {
	return &PaymentService{store: store, settings: settings, opts: opts}
}

// ApplyPaymentInput represents the apply payment input
type ApplyPaymentInput struct {
	SaleID      uuid.UUID
	Amount      decimal.Decimal
	PaymentType enum.PaymentType
	Operator    entity.Operator
}

// validate checks the request on its own. Sale lookups and the remaining balance
// come after, so a malformed amount is reported even when the sale does not exist.
func (in *ApplyPaymentInput) validate(pricing settlement.Pricing) error {
	if !in.Amount.IsPositive() {
		return apperror.NewInvalidAmountError("Payment amount must be greater than zero")
	}
	if !pricing.InScale(in.Amount) {
		return apperror.NewInvalidAmountError(fmt.Sprintf("Payment amount cannot have more than %d decimal places", pricing.Places))
	}
	if !in.PaymentType.IsValid() {
		return apperror.NewInvalidAmountError("Unknown payment type")
	}
	if in.PaymentType.IsDeferred() {
		return apperror.NewInvalidAmountError(fmt.Sprintf("%s cannot be used to settle a sale", in.PaymentType.Label()))
	}
	if in.Operator.ID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	return nil
}

// ApplyPayment records a payment and advances the sale's paid amount in one batch.
// The sale update is conditional on the paid amount read at the start of the attempt,
// so two concurrent payments can never both count against the same remaining balance.
func (s *PaymentService) ApplyPayment(ctx context.Context, input *ApplyPaymentInput) (*entity.PaymentReceipt, error) {
	if err := input.validate(s.opts.Pricing); err != nil {
		return nil, err
	}

	var (
		payment   *entity.Payment
		customer  entity.Customer
		remaining decimal.Decimal
		status    enum.SaleStatus
	)
	err := s.opts.retryOnConflict(ctx, "apply_payment", func(ctx context.Context) error {
		sale, err := s.store.GetSale(ctx, input.SaleID)
		if err != nil {
			return lookupError(err, "Sale")
		}

		remaining = sale.Remaining()
		if !remaining.IsPositive() {
			return apperror.NewInvalidAmountError("Sale is already fully paid")
		}
		if input.Amount.GreaterThan(remaining) {
			return apperror.NewInvalidAmountError(fmt.Sprintf("Payment of %s exceeds the remaining balance of %s", input.Amount.StringFixed(2), remaining.StringFixed(2)))
		}

		customer, err = s.saleCustomer(ctx, sale, input.PaymentType.ConsumesCredit())
		if err != nil {
			return err
		}
		if input.PaymentType.ConsumesCredit() && !customer.CanCover(input.Amount) {
			return apperror.NewInsufficientCreditError(fmt.Sprintf("Insufficient credit for %s: balance %s, payment %s", customer.Name, customer.Balance.StringFixed(2), input.Amount.StringFixed(2)))
		}

		newPaid := sale.PaidAmount.Add(input.Amount)
		status = settlement.DeriveStatus(newPaid, sale.TotalPrice, true)
		change := ledger.Settlement{
			ExpectedPaid: sale.PaidAmount,
			PaidAmount:   newPaid,
			Status:       status,
		}
		if status == enum.SaleStatusCompleted {
			pt := input.PaymentType
			change.PaymentType = &pt
		}

		now := s.opts.now()
		payment = &entity.Payment{
			ID:           uuid.New(),
			ReferenceNo:  utils.GenerateReferenceNo("PAY", now),
			SaleID:       sale.ID,
			CustomerName: sale.CustomerName,
			Amount:       input.Amount,
			PaymentType:  input.PaymentType,
			PaymentDate:  now,
			RecordedByID: input.Operator.ID,
			RecordedBy:   input.Operator.Name,
		}

		batch := ledger.NewBatch()
		if input.PaymentType.ConsumesCredit() {
			batch.AdjustBalance(customer.ID, input.Amount.Neg())
		}
		batch.CreatePayment(payment).SettleSale(sale.ID, change)

		if err := s.store.CommitBatch(ctx, batch); err != nil {
			return workflowCommitError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.PaymentType.ConsumesCredit() {
		customer.Balance = customer.Balance.Sub(input.Amount)
	}

	log.Info().
		Str("payment_id", payment.ID.String()).
		Str("sale_id", payment.SaleID.String()).
		Str("amount", payment.Amount.String()).
		Str("payment_type", payment.PaymentType.String()).
		Str("status", status.String()).
		Str("operator", input.Operator.Name).
		Msg("payment applied")

	return &entity.PaymentReceipt{
		Payment:          *payment,
		Customer:         customer,
		RemainingBalance: remaining.Sub(input.Amount),
		Company:          s.settings.receiptProfile(ctx),
	}, nil
}

// saleCustomer loads the sale's customer. When the customer record is gone and the
// payment does not draw on their credit, the name captured on the sale is used instead.
func (s *PaymentService) saleCustomer(ctx context.Context, sale *entity.Sale, required bool) (entity.Customer, error) {
	customer, err := s.store.GetCustomer(ctx, sale.CustomerID)
	if err == nil {
		return *customer, nil
	}
	if errors.Is(err, ledger.ErrNotFound) && !required {
		return entity.Customer{ID: sale.CustomerID, Name: sale.CustomerName}, nil
	}
	return entity.Customer{}, lookupError(err, "Customer")
}

// ListPayments lists payments, newest first, optionally for one sale
func (s *PaymentService) ListPayments(ctx context.Context, saleID *uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Payment], error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	payments, err := s.store.ListPayments(ctx, ledger.PaymentFilter{SaleID: saleID})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	report.SortPaymentsByDateDesc(payments)
	return pagination.Paginate(payments, params), nil
}
