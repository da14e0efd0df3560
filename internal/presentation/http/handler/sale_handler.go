package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/creance-pos/internal/application/service"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/sangkips/creance-pos/internal/domain/settlement"
	"github.com/sangkips/creance-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/creance-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/creance-pos/pkg/pagination"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// SaleHandler handles sale and payment HTTP requests
type SaleHandler struct {
	saleService    *service.SaleService
	paymentService *service.PaymentService
	location       *time.Location
}

// NewSaleHandler creates a new sale handler. Custom range dates are read in loc.
func NewSaleHandler(saleService *service.SaleService, paymentService *service.PaymentService, loc *time.Location) *SaleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{saleService: saleService, paymentService: paymentService, location: loc}
}

// Create records a sale
func (h *SaleHandler) Create(c *gin.Context) {
	operator, ok := GetOperator(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.RecordSaleInput{
		ProductID:   req.ProductID,
		CustomerID:  req.CustomerID,
		Quantity:    req.Quantity,
		PaymentType: *req.PaymentType,
		ApplyVAT:    req.ApplyVAT,
		Operator:    operator,
	}
	if req.Discount != nil {
		input.Discount = settlement.Discount{Type: req.Discount.Type, Value: req.Discount.Value}
	}

	result, err := h.saleService.RecordSale(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale recorded successfully", result)
}

// List lists sales in a date range
func (h *SaleHandler) List(c *gin.Context) {
	var req request.SaleFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	dateRange, err := enum.ParseDateRange(req.Range)
	if err != nil {
		response.BadRequest(c, "Invalid range")
		return
	}
	start, ok := h.parseDate(req.Start)
	if !ok {
		response.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
		return
	}
	end, ok := h.parseDate(req.End)
	if !ok {
		response.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
		return
	}

	result, err := h.saleService.ListSales(c.Request.Context(), &service.ListSalesInput{
		Range:      dateRange,
		Start:      start,
		End:        end,
		CustomerID: optionalID(req.CustomerID),
		Pagination: &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales retrieved successfully", result)
}

// Outstanding lists sales that are still on credit
func (h *SaleHandler) Outstanding(c *gin.Context) {
	sales, total, err := h.saleService.ListOutstanding(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Outstanding sales retrieved successfully", struct {
		Sales []entity.Sale   `json:"sales"`
		Total decimal.Decimal `json:"total"`
	}{sales, total})
}

// Get handles getting a single sale
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// Receipt returns the receipt of a settled sale
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	receipt, err := h.saleService.GetSaleReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// ApplyPayment records a payment against an outstanding sale
func (h *SaleHandler) ApplyPayment(c *gin.Context) {
	operator, ok := GetOperator(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req request.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	receipt, err := h.paymentService.ApplyPayment(c.Request.Context(), &service.ApplyPaymentInput{
		SaleID:      id,
		Amount:      req.Amount,
		PaymentType: *req.PaymentType,
		Operator:    operator,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment applied successfully", receipt)
}

// Payments lists recorded payments, newest first
func (h *SaleHandler) Payments(c *gin.Context) {
	var req request.PaymentFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.paymentService.ListPayments(c.Request.Context(), optionalID(req.SaleID), &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Payments retrieved successfully", result)
}

func (h *SaleHandler) parseDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation(dateLayout, raw, h.location)
	if err != nil {
		return nil, false
	}
	return &t, true
}
