package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpDelete
	OpDecrementStock
	OpAdjustBalance
	OpSettleSale
	OpSaveCompanyProfile
	OpCorrectStock
	OpDetachCategory
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpDecrementStock:
		return "decrement_stock"
	case OpAdjustBalance:
		return "adjust_balance"
	case OpSettleSale:
		return "settle_sale"
	case OpSaveCompanyProfile:
		return "save_company_profile"
	case OpCorrectStock:
		return "correct_stock"
	case OpDetachCategory:
		return "detach_category"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Settlement is the guarded change applied to a sale by a payment.
// The write only happens if the stored paid amount still equals ExpectedPaid.
type Settlement struct {
	ExpectedPaid decimal.Decimal
	PaidAmount   decimal.Decimal
	Status       enum.SaleStatus
	PaymentType  *enum.PaymentType
}

// Op is one write inside a batch. Which fields are set depends on Kind.
type Op struct {
	Kind       OpKind
	Collection Collection
	ID         uuid.UUID
	Record     any
	Quantity   int
	Expected   int
	Amount     decimal.Decimal
	Settlement *Settlement
}

// Batch collects writes to commit atomically. Operations apply in insertion order.
type Batch struct {
	ops []Op
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Ops() []Op {
	return b.ops
}

func (b *Batch) Len() int {
	return len(b.ops)
}

// Collections lists the distinct collections the batch touches.
func (b *Batch) Collections() []Collection {
	seen := make(map[Collection]bool)
	var out []Collection
	for _, op := range b.ops {
		if !seen[op.Collection] {
			seen[op.Collection] = true
			out = append(out, op.Collection)
		}
	}
	return out
}

func (b *Batch) add(op Op) *Batch {
	b.ops = append(b.ops, op)
	return b
}

func (b *Batch) CreateProduct(p *entity.Product) *Batch {
	return b.add(Op{Kind: OpCreate, Collection: Products, ID: p.ID, Record: p})
}

// UpdateProduct overwrites the catalog fields of an existing product.
// Quantity is not a catalog field; see CorrectStock.
func (b *Batch) UpdateProduct(p *entity.Product) *Batch {
	return b.add(Op{Kind: OpUpdate, Collection: Products, ID: p.ID, Record: p})
}

func (b *Batch) DeleteProduct(id uuid.UUID) *Batch {
	return b.add(Op{Kind: OpDelete, Collection: Products, ID: id})
}

// CorrectStock sets a product's quantity, guarded by the quantity the caller observed.
func (b *Batch) CorrectStock(productID uuid.UUID, expected, qty int) *Batch {
	return b.add(Op{Kind: OpCorrectStock, Collection: Products, ID: productID, Expected: expected, Quantity: qty})
}

// DetachCategory clears the category of every product currently filed under categoryID.
func (b *Batch) DetachCategory(categoryID uuid.UUID) *Batch {
	return b.add(Op{Kind: OpDetachCategory, Collection: Products, ID: categoryID})
}

func (b *Batch) CreateCategory(c *entity.Category) *Batch {
	return b.add(Op{Kind: OpCreate, Collection: Categories, ID: c.ID, Record: c})
}

func (b *Batch) UpdateCategory(c *entity.Category) *Batch {
	return b.add(Op{Kind: OpUpdate, Collection: Categories, ID: c.ID, Record: c})
}

func (b *Batch) DeleteCategory(id uuid.UUID) *Batch {
	return b.add(Op{Kind: OpDelete, Collection: Categories, ID: id})
}

func (b *Batch) CreateCustomer(c *entity.Customer) *Batch {
	return b.add(Op{Kind: OpCreate, Collection: Customers, ID: c.ID, Record: c})
}

// UpdateCustomer overwrites contact details. The balance is never touched.
func (b *Batch) UpdateCustomer(c *entity.Customer) *Batch {
	return b.add(Op{Kind: OpUpdate, Collection: Customers, ID: c.ID, Record: c})
}

func (b *Batch) DeleteCustomer(id uuid.UUID) *Batch {
	return b.add(Op{Kind: OpDelete, Collection: Customers, ID: id})
}

func (b *Batch) CreateSale(s *entity.Sale) *Batch {
	return b.add(Op{Kind: OpCreate, Collection: Sales, ID: s.ID, Record: s})
}

func (b *Batch) CreatePayment(p *entity.Payment) *Batch {
	return b.add(Op{Kind: OpCreate, Collection: Payments, ID: p.ID, Record: p})
}

// DecrementStock removes qty units, guarded by quantity >= qty.
func (b *Batch) DecrementStock(productID uuid.UUID, qty int) *Batch {
	return b.add(Op{Kind: OpDecrementStock, Collection: Products, ID: productID, Quantity: qty})
}

// AdjustBalance adds delta to a customer's balance. A negative delta is guarded by
// balance >= -delta.
func (b *Batch) AdjustBalance(customerID uuid.UUID, delta decimal.Decimal) *Batch {
	return b.add(Op{Kind: OpAdjustBalance, Collection: Customers, ID: customerID, Amount: delta})
}

// SettleSale writes a new paid amount and status, guarded by the previously observed paid amount.
func (b *Batch) SettleSale(saleID uuid.UUID, s Settlement) *Batch {
	return b.add(Op{Kind: OpSettleSale, Collection: Sales, ID: saleID, Settlement: &s})
}

func (b *Batch) SaveCompanyProfile(p *entity.CompanyProfile) *Batch {
	return b.add(Op{Kind: OpSaveCompanyProfile, Collection: Company, Record: p})
}

// Validate checks that every op carries the fields its kind requires.
func (b *Batch) Validate() error {
	for i, op := range b.ops {
		switch op.Kind {
		case OpCreate, OpUpdate, OpSaveCompanyProfile:
			if op.Record == nil {
				return fmt.Errorf("ledger: op %d (%s %s) has no record", i, op.Kind, op.Collection)
			}
		case OpDecrementStock:
			if op.Quantity < 1 {
				return fmt.Errorf("ledger: op %d decrements by %d", i, op.Quantity)
			}
		case OpCorrectStock:
			if op.Quantity < 0 || op.Expected < 0 {
				return fmt.Errorf("ledger: op %d sets stock from %d to %d", i, op.Expected, op.Quantity)
			}
		case OpSettleSale:
			if op.Settlement == nil {
				return fmt.Errorf("ledger: op %d has no settlement", i)
			}
		}
		if op.Kind != OpSaveCompanyProfile && op.ID == uuid.Nil {
			return fmt.Errorf("ledger: op %d (%s %s) has no id", i, op.Kind, op.Collection)
		}
	}
	return nil
}
