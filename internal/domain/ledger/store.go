// Package ledger defines the port through which workflows read and atomically write
// the shop's records.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/enum"
)

var (
	// ErrNotFound is returned by Get calls and by writes that target a missing record.
	ErrNotFound = errors.New("ledger: record not found")
	// ErrConflict means a guard failed at commit time; nothing in the batch was applied.
	ErrConflict = errors.New("ledger: guard failed, batch rolled back")
)

// Collection names a record set that can be listed and watched.
type Collection string

const (
	Products   Collection = "products"
	Categories Collection = "categories"
	Customers  Collection = "customers"
	Sales      Collection = "sales"
	Payments   Collection = "payments"
	Company    Collection = "company_profile"
)

type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
}

type CustomerFilter struct {
	Search string
}

// SaleFilter results are ordered by sale date, newest first.
type SaleFilter struct {
	CustomerID *uuid.UUID
	Status     *enum.SaleStatus
	From       *time.Time
	To         *time.Time
}

// PaymentFilter results are ordered by payment date, newest first.
type PaymentFilter struct {
	SaleID *uuid.UUID
}

// Reader is the read half of the store.
type Reader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetCompanyProfile(ctx context.Context) (*entity.CompanyProfile, error)

	ListProducts(ctx context.Context, filter ProductFilter) ([]entity.Product, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]entity.Customer, error)
	ListSales(ctx context.Context, filter SaleFilter) ([]entity.Sale, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]entity.Payment, error)
}

// Store is the ledger as seen by the workflows.
type Store interface {
	Reader

	// CommitBatch applies every operation or none of them.
	// A failed guard returns ErrConflict.
	CommitBatch(ctx context.Context, batch *Batch) error

	// Subscribe streams full snapshots of a collection: one immediately, then one after
	// each committed change. The channel closes when ctx is done.
	Subscribe(ctx context.Context, c Collection) (<-chan Snapshot, error)

	Ping(ctx context.Context) error
	Close() error
}

// Snapshot is the full content of one collection at a point in time.
// Only the field matching Collection is populated.
type Snapshot struct {
	Collection Collection
	TakenAt    time.Time
	Products   []entity.Product
	Categories []entity.Category
	Customers  []entity.Customer
	Sales      []entity.Sale
	Payments   []entity.Payment
}

// Len is the number of records in the snapshot.
func (s Snapshot) Len() int {
	switch s.Collection {
	case Products:
		return len(s.Products)
	case Categories:
		return len(s.Categories)
	case Customers:
		return len(s.Customers)
	case Sales:
		return len(s.Sales)
	case Payments:
		return len(s.Payments)
	}
	return 0
}

// Load reads a full snapshot of c.
func Load(ctx context.Context, r Reader, c Collection) (Snapshot, error) {
	snap := Snapshot{Collection: c, TakenAt: time.Now()}
	var err error
	switch c {
	case Products:
		snap.Products, err = r.ListProducts(ctx, ProductFilter{})
	case Categories:
		snap.Categories, err = r.ListCategories(ctx)
	case Customers:
		snap.Customers, err = r.ListCustomers(ctx, CustomerFilter{})
	case Sales:
		snap.Sales, err = r.ListSales(ctx, SaleFilter{})
	case Payments:
		snap.Payments, err = r.ListPayments(ctx, PaymentFilter{})
	default:
		err = errors.New("ledger: collection " + string(c) + " cannot be watched")
	}
	return snap, err
}
