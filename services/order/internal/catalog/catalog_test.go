package catalog

import (
	"context"
	"testing"

	pkgdb "github.com/Skotchmaster/marketplace/pkg/db"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	db, err := pkgdb.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return &GormRepo{DB: db}
}

func TestGetStore(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	store, err := r.CreateStore(ctx, &models.Store{Name: "Corner"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, store.ID)

	got, err := r.GetStore(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corner", got.Name)

	_, err = r.GetStore(ctx, uuid.New())
	require.ErrorIs(t, err, ErrStoreNotFound)
}

func TestGetProducts(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	storeID := uuid.New()
	a, err := r.CreateProduct(ctx, &models.Product{StoreID: storeID, Name: "a", Price: decimal.RequireFromString("9.99"), Stock: 1})
	require.NoError(t, err)
	b, err := r.CreateProduct(ctx, &models.Product{StoreID: storeID, Name: "b", Price: decimal.NewFromInt(5), Stock: 1})
	require.NoError(t, err)

	got, err := r.GetProducts(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "9.99", got[a.ID].Price.StringFixed(2))
	assert.Equal(t, "b", got[b.ID].Name)

	_, err = r.GetProducts(ctx, []uuid.UUID{a.ID, uuid.New()})
	require.ErrorIs(t, err, ErrProductNotFound)

	empty, err := r.GetProducts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
