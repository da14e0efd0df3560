// Package postgres is the gorm-backed ledger store.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store runs every batch inside one database transaction.
// Guards are expressed as WHERE clauses; an update that touches no row fails the batch.
type Store struct {
	db       *gorm.DB
	notifier ledger.Notifier
}

// NewStore wraps db. Change signals go to notifier, which may be shared with other replicas.
func NewStore(db *gorm.DB, notifier ledger.Notifier) *Store {
	if notifier == nil {
		notifier = ledger.NewLocalNotifier()
	}
	return &Store{db: db, notifier: notifier}
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var p entity.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var c entity.Category
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var c entity.Customer
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Store) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	if err := s.db.WithContext(ctx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &sale, nil
}

func (s *Store) GetCompanyProfile(ctx context.Context) (*entity.CompanyProfile, error) {
	var p entity.CompanyProfile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", entity.CompanyProfileID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter ledger.ProductFilter) ([]entity.Product, error) {
	var products []entity.Product
	err := s.db.WithContext(ctx).
		Scopes(productScope(filter)).
		Order("name ASC, id ASC").
		Find(&products).Error
	return products, err
}

func (s *Store) ListCategories(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&categories).Error
	return categories, err
}

func (s *Store) ListCustomers(ctx context.Context, filter ledger.CustomerFilter) ([]entity.Customer, error) {
	var customers []entity.Customer
	err := s.db.WithContext(ctx).
		Scopes(customerScope(filter)).
		Order("name ASC, id ASC").
		Find(&customers).Error
	return customers, err
}

func (s *Store) ListSales(ctx context.Context, filter ledger.SaleFilter) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := s.db.WithContext(ctx).
		Scopes(saleScope(filter)).
		Order("sale_date DESC, invoice_no DESC").
		Find(&sales).Error
	return sales, err
}

func (s *Store) ListPayments(ctx context.Context, filter ledger.PaymentFilter) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := s.db.WithContext(ctx).
		Scopes(paymentScope(filter)).
		Order("payment_date DESC, reference_no DESC").
		Find(&payments).Error
	return payments, err
}

// CommitBatch applies the batch in a transaction. Any failed guard rolls back the whole
// transaction and surfaces as ledger.ErrConflict.
func (s *Store) CommitBatch(ctx context.Context, batch *ledger.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, op := range batch.Ops() {
			if err := apply(tx, op); err != nil {
				return fmt.Errorf("op %d (%s %s): %w", i, op.Kind, op.Collection, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

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
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func apply(tx *gorm.DB, op ledger.Op) error {
	switch op.Kind {
	case ledger.OpCreate:
		return tx.Create(op.Record).Error
	case ledger.OpUpdate:
		return applyUpdate(tx, op)
	case ledger.OpDelete:
		return applyDelete(tx, op)
	case ledger.OpDecrementStock:
		result := tx.Model(&entity.Product{}).
			Where("id = ? AND quantity >= ?", op.ID, op.Quantity).
			Update("quantity", gorm.Expr("quantity - ?", op.Quantity))
		return guarded(tx, result, &entity.Product{}, op.ID)
	case ledger.OpCorrectStock:
		result := tx.Model(&entity.Product{}).
			Where("id = ? AND quantity = ?", op.ID, op.Expected).
			Update("quantity", op.Quantity)
		return guarded(tx, result, &entity.Product{}, op.ID)
	case ledger.OpDetachCategory:
		return tx.Model(&entity.Product{}).
			Where("category_id = ?", op.ID).
			Update("category_id", nil).Error
	case ledger.OpAdjustBalance:
		query := tx.Model(&entity.Customer{}).Where("id = ?", op.ID)
		if op.Amount.IsNegative() {
			query = query.Where("balance >= ?", op.Amount.Neg())
		}
		result := query.Update("balance", gorm.Expr("balance + ?", op.Amount))
		return guarded(tx, result, &entity.Customer{}, op.ID)
	case ledger.OpSettleSale:
		set := op.Settlement
		updates := map[string]interface{}{
			"paid_amount": set.PaidAmount,
			"status":      set.Status,
		}
		if set.PaymentType != nil {
			updates["payment_type"] = *set.PaymentType
		}
		result := tx.Model(&entity.Sale{}).
			Where("id = ? AND paid_amount = ?", op.ID, set.ExpectedPaid).
			Updates(updates)
		return guarded(tx, result, &entity.Sale{}, op.ID)
	case ledger.OpSaveCompanyProfile:
		p, ok := op.Record.(*entity.CompanyProfile)
		if !ok {
			return fmt.Errorf("unexpected record %T", op.Record)
		}
		row := *p
		row.ID = entity.CompanyProfileID
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "address", "phone", "logo", "updated_at"}),
		}).Create(&row).Error
	}
	return fmt.Errorf("unsupported op %s", op.Kind)
}

func applyUpdate(tx *gorm.DB, op ledger.Op) error {
	var result *gorm.DB
	switch rec := op.Record.(type) {
	case *entity.Product:
		result = tx.Model(&entity.Product{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
			"name":              rec.Name,
			"category_id":       rec.CategoryID,
			"price":             rec.Price,
			"reorder_threshold": rec.ReorderThreshold,
			"photo":             rec.Photo,
		})
	case *entity.Category:
		result = tx.Model(&entity.Category{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
			"name":      rec.Name,
			"parent_id": rec.ParentID,
		})
	case *entity.Customer:
		result = tx.Model(&entity.Customer{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
			"name":  rec.Name,
			"email": rec.Email,
			"phone": rec.Phone,
		})
	default:
		return fmt.Errorf("unexpected record %T", op.Record)
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func applyDelete(tx *gorm.DB, op ledger.Op) error {
	var model interface{}
	switch op.Collection {
	case ledger.Products:
		model = &entity.Product{}
	case ledger.Categories:
		model = &entity.Category{}
	case ledger.Customers:
		model = &entity.Customer{}
	default:
		return fmt.Errorf("%s records cannot be deleted", op.Collection)
	}
	result := tx.Delete(model, "id = ?", op.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// guarded turns a zero-row guarded update into ErrConflict, or ErrNotFound when the
// target row does not exist at all.
func guarded(tx *gorm.DB, result *gorm.DB, model interface{}, id uuid.UUID) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ledger.ErrNotFound
	}
	return ledger.ErrConflict
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledger.ErrNotFound
	}
	return err
}
