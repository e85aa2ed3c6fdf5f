package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned by CompareAndSwap when the stored version
// differs from the expected one.
var ErrVersionConflict = errors.New("version conflict")

type ListFilter struct {
	Status domain.Status
	Offset int
	Limit  int
}

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

func (r *GormRepo) Get(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	var m models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return toDomain(m), nil
}

// CompareAndSwap writes next over the order row in a single statement, but
// only if the stored version still equals expectedVersion.
func (r *GormRepo) CompareAndSwap(ctx context.Context, id uuid.UUID, expectedVersion int64, next domain.Order) (domain.Order, error) {
	cols := mutableColumns(next)
	cols["version"] = gorm.Expr("version + 1")

	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(cols)
	if res.Error != nil {
		return domain.Order{}, fmt.Errorf("update order %s: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return domain.Order{}, fmt.Errorf("count order %s: %w", id, err)
		}
		if count == 0 {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, ErrVersionConflict
	}

	out := next.Clone()
	out.ID = id
	out.Version = expectedVersion + 1
	return out, nil
}

// Create reserves stock for every line item and inserts the order in one
// transaction. The stored order starts at version 1.
func (r *GormRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	o = o.Clone()
	o.Version = 1
	m := fromDomain(o)

	reserve := make(map[uuid.UUID]int, len(o.Items))
	order := make([]uuid.UUID, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := reserve[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		reserve[it.ProductID] += it.Quantity
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, productID := range order {
			qty := reserve[productID]
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", productID, qty).
				Update("stock", gorm.Expr("stock - ?", qty))
			if res.Error != nil {
				return fmt.Errorf("reserve stock for %s: %w", productID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", domain.ErrOutOfStock, productID)
			}
		}

		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return o, nil
}

func (r *GormRepo) ListByUser(ctx context.Context, userID uuid.UUID, f ListFilter) (int64, []domain.Order, error) {
	return r.list(ctx, "user_id = ?", userID, f)
}

func (r *GormRepo) ListByStore(ctx context.Context, storeID uuid.UUID, f ListFilter) (int64, []domain.Order, error) {
	return r.list(ctx, "store_id = ?", storeID, f)
}

func (r *GormRepo) list(ctx context.Context, where string, owner uuid.UUID, f ListFilter) (int64, []domain.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where(where, owner)
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("count orders: %w", err)
	}

	var rows []models.Order
	err := q.Session(&gorm.Session{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Order("id ASC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&rows).Error
	if err != nil {
		return 0, nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]domain.Order, len(rows))
	for i := range rows {
		out[i] = toDomain(rows[i])
	}
	return total, out, nil
}
