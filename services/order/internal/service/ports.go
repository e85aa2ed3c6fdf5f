package service

import (
	"context"

	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
	"github.com/Skotchmaster/marketplace/services/order/internal/payment"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
	"github.com/Skotchmaster/marketplace/services/order/internal/search"
	"github.com/google/uuid"
)

type OrderStore interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Order, error)
	CompareAndSwap(ctx context.Context, id uuid.UUID, expectedVersion int64, next domain.Order) (domain.Order, error)
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, f repo.ListFilter) (int64, []domain.Order, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, f repo.ListFilter) (int64, []domain.Order, error)
}

type Catalog interface {
	GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type PaymentProvider interface {
	Confirm(ctx context.Context, reference string) (payment.Confirmation, error)
}

// Notifier is told about every successful order mutation. Its errors are
// logged and never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, ev domain.Event) error
}

type Searcher interface {
	Search(ctx context.Context, q search.Query) (int64, []search.Document, error)
}
