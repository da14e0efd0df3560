// Package memory is an in-process ledger store. It backs tests and single-node demos.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
)

type state struct {
	products   map[uuid.UUID]entity.Product
	categories map[uuid.UUID]entity.Category
	customers  map[uuid.UUID]entity.Customer
	sales      map[uuid.UUID]entity.Sale
	payments   map[uuid.UUID]entity.Payment
	company    *entity.CompanyProfile
}

func newState() *state {
	return &state{
		products:   make(map[uuid.UUID]entity.Product),
		categories: make(map[uuid.UUID]entity.Category),
		customers:  make(map[uuid.UUID]entity.Customer),
		sales:      make(map[uuid.UUID]entity.Sale),
		payments:   make(map[uuid.UUID]entity.Payment),
	}
}

func (s *state) clone() *state {
	cp := newState()
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.categories {
		cp.categories[k] = v
	}
	for k, v := range s.customers {
		cp.customers[k] = v
	}
	for k, v := range s.sales {
		cp.sales[k] = v
	}
	for k, v := range s.payments {
		cp.payments[k] = v
	}
	if s.company != nil {
		c := *s.company
		cp.company = &c
	}
	return cp
}

// Store keeps every collection in maps guarded by a single lock.
// A batch is applied to a copy of the state and swapped in only if every op succeeds.
type Store struct {
	mu       sync.RWMutex
	state    *state
	notifier ledger.Notifier
	now      func() time.Time
}

type Option func(*Store)

// WithNotifier replaces the default in-process notifier.
func WithNotifier(n ledger.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithClock sets the clock used for CreatedAt and UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		state:    newState(),
		notifier: ledger.NewLocalNotifier(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.products[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.categories[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.customers[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.state.sales[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &sale, nil
}

func (s *Store) GetCompanyProfile(ctx context.Context) (*entity.CompanyProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.company == nil {
		return nil, ledger.ErrNotFound
	}
	c := *s.state.company
	return &c, nil
}

func (s *Store) ListProducts(ctx context.Context, filter ledger.ProductFilter) ([]entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Product, 0, len(s.state.products))
	for _, p := range s.state.products {
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		if !matches(p.Name, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return byName(out[i].Name, out[j].Name, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]entity.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Category, 0, len(s.state.categories))
	for _, c := range s.state.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return byName(out[i].Name, out[j].Name, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *Store) ListCustomers(ctx context.Context, filter ledger.CustomerFilter) ([]entity.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Customer, 0, len(s.state.customers))
	for _, c := range s.state.customers {
		if !customerMatches(c, filter.Search) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return byName(out[i].Name, out[j].Name, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *Store) ListSales(ctx context.Context, filter ledger.SaleFilter) ([]entity.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Sale, 0, len(s.state.sales))
	for _, sale := range s.state.sales {
		if filter.CustomerID != nil && sale.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != nil && sale.Status != *filter.Status {
			continue
		}
		if filter.From != nil && sale.SaleDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && sale.SaleDate.After(*filter.To) {
			continue
		}
		out = append(out, sale)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.After(out[j].SaleDate)
		}
		return out[i].InvoiceNo > out[j].InvoiceNo
	})
	return out, nil
}

func (s *Store) ListPayments(ctx context.Context, filter ledger.PaymentFilter) ([]entity.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Payment, 0, len(s.state.payments))
	for _, p := range s.state.payments {
		if filter.SaleID != nil && p.SaleID != *filter.SaleID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.After(out[j].PaymentDate)
		}
		return out[i].ReferenceNo > out[j].ReferenceNo
	})
	return out, nil
}

func (s *Store) CommitBatch(ctx context.Context, batch *ledger.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	next := s.state.clone()
	now := s.now()
	for i, op := range batch.Ops() {
		if err := apply(next, op, now); err != nil {
			s.mu.Unlock()
			log.Debug().Err(err).Int("op", i).Str("kind", op.Kind.String()).Msg("memory ledger batch rolled back")
			return err
		}
	}
	s.state = next
	s.mu.Unlock()

	for _, c := range batch.Collections() {
		if err := s.notifier.Publish(ctx, c); err != nil {
			log.Warn().Err(err).Str("collection", string(c)).Msg("change notification failed")
		}
	}
	return nil
}

func (s *Store) Subscribe(ctx context.Context, c ledger.Collection) (<-chan ledger.Snapshot, error) {
	return ledger.Watch(ctx, s, s.notifier, c)
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

func apply(st *state, op ledger.Op, now time.Time) error {
	switch op.Kind {
	case ledger.OpCreate:
		return applyCreate(st, op, now)
	case ledger.OpUpdate:
		return applyUpdate(st, op, now)
	case ledger.OpDelete:
		return applyDelete(st, op)
	case ledger.OpDecrementStock:
		p, ok := st.products[op.ID]
		if !ok {
			return ledger.ErrNotFound
		}
		if p.Quantity < op.Quantity {
			return fmt.Errorf("%w: product %s has %d, needs %d", ledger.ErrConflict, p.ID, p.Quantity, op.Quantity)
		}
		p.Quantity -= op.Quantity
		p.UpdatedAt = now
		st.products[op.ID] = p
	case ledger.OpCorrectStock:
		p, ok := st.products[op.ID]
		if !ok {
			return ledger.ErrNotFound
		}
		if p.Quantity != op.Expected {
			return fmt.Errorf("%w: product %s stock moved from %d to %d", ledger.ErrConflict, p.ID, op.Expected, p.Quantity)
		}
		p.Quantity = op.Quantity
		p.UpdatedAt = now
		st.products[op.ID] = p
	case ledger.OpDetachCategory:
		for id, p := range st.products {
			if p.CategoryID != nil && *p.CategoryID == op.ID {
				p.CategoryID = nil
				p.UpdatedAt = now
				st.products[id] = p
			}
		}
	case ledger.OpAdjustBalance:
		c, ok := st.customers[op.ID]
		if !ok {
			return ledger.ErrNotFound
		}
		next := c.Balance.Add(op.Amount)
		if op.Amount.IsNegative() && next.IsNegative() {
			return fmt.Errorf("%w: customer %s balance %s cannot cover %s", ledger.ErrConflict, c.ID, c.Balance, op.Amount.Neg())
		}
		c.Balance = next
		c.UpdatedAt = now
		st.customers[op.ID] = c
	case ledger.OpSettleSale:
		sale, ok := st.sales[op.ID]
		if !ok {
			return ledger.ErrNotFound
		}
		set := op.Settlement
		if !sale.PaidAmount.Equal(set.ExpectedPaid) {
			return fmt.Errorf("%w: sale %s paid amount moved from %s to %s", ledger.ErrConflict, sale.ID, set.ExpectedPaid, sale.PaidAmount)
		}
		sale.PaidAmount = set.PaidAmount
		sale.Status = set.Status
		if set.PaymentType != nil {
			sale.PaymentType = *set.PaymentType
		}
		sale.UpdatedAt = now
		st.sales[op.ID] = sale
	case ledger.OpSaveCompanyProfile:
		p, ok := op.Record.(*entity.CompanyProfile)
		if !ok {
			return badRecord(op)
		}
		cp := *p
		cp.ID = entity.CompanyProfileID
		cp.UpdatedAt = now
		st.company = &cp
	default:
		return fmt.Errorf("memory ledger: unsupported op %s", op.Kind)
	}
	return nil
}

func applyCreate(st *state, op ledger.Op, now time.Time) error {
	switch rec := op.Record.(type) {
	case *entity.Product:
		if _, exists := st.products[rec.ID]; exists {
			return duplicate(op)
		}
		p := *rec
		p.CreatedAt, p.UpdatedAt = now, now
		st.products[p.ID] = p
	case *entity.Category:
		if _, exists := st.categories[rec.ID]; exists {
			return duplicate(op)
		}
		c := *rec
		c.CreatedAt, c.UpdatedAt = now, now
		st.categories[c.ID] = c
	case *entity.Customer:
		if _, exists := st.customers[rec.ID]; exists {
			return duplicate(op)
		}
		c := *rec
		c.CreatedAt, c.UpdatedAt = now, now
		st.customers[c.ID] = c
	case *entity.Sale:
		if _, exists := st.sales[rec.ID]; exists {
			return duplicate(op)
		}
		sale := *rec
		sale.CreatedAt, sale.UpdatedAt = now, now
		st.sales[sale.ID] = sale
	case *entity.Payment:
		if _, exists := st.payments[rec.ID]; exists {
			return duplicate(op)
		}
		p := *rec
		p.CreatedAt = now
		st.payments[p.ID] = p
	default:
		return badRecord(op)
	}
	return nil
}

func applyUpdate(st *state, op ledger.Op, now time.Time) error {
	switch rec := op.Record.(type) {
	case *entity.Product:
		cur, ok := st.products[rec.ID]
		if !ok {
			return ledger.ErrNotFound
		}
		cur.Name = rec.Name
		cur.CategoryID = rec.CategoryID
		cur.Price = rec.Price
		cur.ReorderThreshold = rec.ReorderThreshold
		cur.Photo = rec.Photo
		cur.UpdatedAt = now
		st.products[cur.ID] = cur
	case *entity.Category:
		cur, ok := st.categories[rec.ID]
		if !ok {
			return ledger.ErrNotFound
		}
		cur.Name = rec.Name
		cur.ParentID = rec.ParentID
		cur.UpdatedAt = now
		st.categories[cur.ID] = cur
	case *entity.Customer:
		cur, ok := st.customers[rec.ID]
		if !ok {
			return ledger.ErrNotFound
		}
		cur.Name = rec.Name
		cur.Email = rec.Email
		cur.Phone = rec.Phone
		cur.UpdatedAt = now
		st.customers[cur.ID] = cur
	default:
		return badRecord(op)
	}
	return nil
}

func applyDelete(st *state, op ledger.Op) error {
	switch op.Collection {
	case ledger.Products:
		if _, ok := st.products[op.ID]; !ok {
			return ledger.ErrNotFound
		}
		delete(st.products, op.ID)
	case ledger.Categories:
		if _, ok := st.categories[op.ID]; !ok {
			return ledger.ErrNotFound
		}
		delete(st.categories, op.ID)
	case ledger.Customers:
		if _, ok := st.customers[op.ID]; !ok {
			return ledger.ErrNotFound
		}
		delete(st.customers, op.ID)
	default:
		return fmt.Errorf("memory ledger: %s records cannot be deleted", op.Collection)
	}
	return nil
}

func duplicate(op ledger.Op) error {
	return fmt.Errorf("memory ledger: %s %s already exists", op.Collection, op.ID)
}

func badRecord(op ledger.Op) error {
	return fmt.Errorf("memory ledger: unexpected record %T for %s %s", op.Record, op.Kind, op.Collection)
}

func matches(name, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

// customerMatches mirrors the postgres search over name, email and phone.
func customerMatches(c entity.Customer, search string) bool {
	if search == "" || matches(c.Name, search) {
		return true
	}
	return (c.Email != nil && matches(*c.Email, search)) || (c.Phone != nil && matches(*c.Phone, search))
}

func byName(a, b string, idA, idB uuid.UUID) bool {
	if a != b {
		return a < b
	}
	return idA.String() < idB.String()
}
