package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/marketplace/services/order/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrStoreNotFound   = errors.New("store not found")
)

// GormRepo reads the product and store rows that checkout snapshots into
// orders. Catalog management itself lives elsewhere; the write methods exist
// for seeding.
type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, id)
		}
		return nil, err
	}
	return &store, nil
}

// GetProducts returns the requested products keyed by id. Missing ids fail
// with ErrProductNotFound.
func (r *GormRepo) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.Product{}, nil
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]models.Product, len(items))
	for _, p := range items {
		out[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
	}
	return out, nil
}

func (r *GormRepo) CreateStore(ctx context.Context, store *models.Store) (*models.Store, error) {
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	if err := r.DB.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if prod.ID == uuid.Nil {
		prod.ID = uuid.New()
	}
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}
