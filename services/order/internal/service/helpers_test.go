package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	pkgdb "github.com/Skotchmaster/marketplace/pkg/db"
	"github.com/Skotchmaster/marketplace/services/order/internal/catalog"
	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
	"github.com/Skotchmaster/marketplace/services/order/internal/payment"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	mu      sync.Mutex
	results map[string]payment.Confirmation
	err     error
	calls   int
}

func (f *fakeProvider) set(ref string, valid bool, amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.results == nil {
		f.results = map[string]payment.Confirmation{}
	}
	f.results[ref] = payment.Confirmation{Valid: valid, Amount: decimal.RequireFromString(amount)}
}

func (f *fakeProvider) Confirm(_ context.Context, ref string) (payment.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return payment.Confirmation{}, f.err
	}
	return f.results[ref], nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
	// delay holds back delivery of the given event types
	delay map[string]time.Duration
}

func (n *recordingNotifier) Notify(_ context.Context, ev domain.Event) error {
	if d := n.delay[ev.Type]; d > 0 {
		time.Sleep(d)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Type
	}
	return out
}

// barrierStore holds every Get until n callers have read, so concurrent
// writers are guaranteed to race on the same version.
type barrierStore struct {
	OrderStore
	reads *sync.WaitGroup
}

func (b barrierStore) Get(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	o, err := b.OrderStore.Get(ctx, id)
	b.reads.Done()
	b.reads.Wait()
	return o, err
}

type testEnv struct {
	svc      *OrderService
	repo     *repo.GormRepo
	catalog  *catalog.GormRepo
	provider *fakeProvider
	notifier *recordingNotifier
	store    *models.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := pkgdb.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))
	cat := &catalog.GormRepo{DB: db}

	store, err := cat.CreateStore(context.Background(), &models.Store{Name: "Corner Store"})
	require.NoError(t, err)

	env := &testEnv{
		repo:     r,
		catalog:  cat,
		provider: &fakeProvider{},
		notifier: &recordingNotifier{},
		store:    store,
	}
	env.svc = &OrderService{
		Store:    r,
		Catalog:  cat,
		Payments: env.provider,
		Notifier: env.notifier,
		Now:      func() time.Time { return testNow },
	}
	t.Cleanup(env.svc.Wait)
	return env
}

func (e *testEnv) product(t *testing.T, price string, stock int) models.Product {
	t.Helper()
	p, err := e.catalog.CreateProduct(context.Background(), &models.Product{
		StoreID: e.store.ID,
		Name:    "item " + price,
		Image:   "item.png",
		Price:   decimal.RequireFromString(price),
		Stock:   stock,
	})
	require.NoError(t, err)
	return *p
}

func checkoutRequest(method string, items ...any) transport.CreateOrderRequest {
	req := transport.CreateOrderRequest{
		PaymentMethod:   method,
		CustomerName:    "Ann",
		CustomerPhone:   "+10000000000",
		DeliveryAddress: "1 Main St",
	}
	for i := 0; i+1 < len(items); i += 2 {
		req.Items = append(req.Items, transport.CreateOrderItem{
			ProductID: items[i].(uuid.UUID),
			Quantity:  json.Number(items[i+1].(string)),
		})
	}
	return req
}

// scenarioOrder creates [{100 x 2}, {50 x 1}] and sets a transportation
// charge of 20.
func (e *testEnv) scenarioOrder(t *testing.T, method domain.PaymentMethod) domain.Order {
	t.Helper()
	ctx := context.Background()
	a := e.product(t, "100", 10)
	b := e.product(t, "50", 10)

	o, err := e.svc.CreateOrder(ctx, checkoutRequest(string(method), a.ID, "2", b.ID, "1"), uuid.New())
	require.NoError(t, err)

	o, err = e.svc.UpdateTransportationCharge(ctx, o.ID, decimal.NewFromInt(20), e.store.ID)
	require.NoError(t, err)
	return o
}

var errProviderDown = errors.New("provider down")
