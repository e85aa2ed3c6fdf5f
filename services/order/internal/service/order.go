package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/pkg/metrics"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
	"github.com/Skotchmaster/marketplace/services/order/internal/catalog"
	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
	"github.com/Skotchmaster/marketplace/services/order/internal/search"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultNotifyTimeout = 5 * time.Second

type OrderService struct {
	Store    OrderStore
	Catalog  Catalog
	Payments PaymentProvider
	Notifier Notifier
	Search   Searcher
	Metrics  *metrics.ServerMetrics

	Now           func() time.Time
	NotifyTimeout time.Duration

	// notifications are delivered one at a time in the order they were queued
	queueMu  sync.Mutex
	queue    []queuedEvent
	draining bool
	inflight sync.WaitGroup
}

type queuedEvent struct {
	ctx context.Context
	ev  domain.Event
}

// Viewer is the authenticated caller. For the store role UserID is the
// store's id.
type Viewer struct {
	UserID uuid.UUID
	Role   string
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OrderService) ComputePricing(items []domain.LineItem, charge decimal.Decimal) (domain.Pricing, error) {
	return domain.ComputePricing(items, charge)
}

// TransitionOrder moves an order to target under the status rules and
// persists it with a single compare-and-swap.
func (s *OrderService) TransitionOrder(ctx context.Context, id uuid.UUID, target domain.Status, tc domain.TransitionContext) (domain.Order, error) {
	cur, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := checkStore(cur, tc.StoreID); err != nil {
		return domain.Order{}, err
	}
	if tc.ExpectedVersion != 0 && tc.ExpectedVersion != cur.Version {
		s.Metrics.ObserveTransition(string(cur.Status), string(target), "conflict")
		return domain.Order{}, fmt.Errorf("%w: expected version %d, have %d", domain.ErrConcurrentModification, tc.ExpectedVersion, cur.Version)
	}

	next, err := domain.Transition(cur, target, tc, s.now())
	if err != nil {
		s.Metrics.ObserveTransition(string(cur.Status), string(target), "refused")
		return domain.Order{}, err
	}

	saved, err := s.swap(ctx, cur, next)
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			s.Metrics.ObserveTransition(string(cur.Status), string(target), "conflict")
		}
		return domain.Order{}, err
	}

	s.Metrics.ObserveTransition(string(cur.Status), string(target), "ok")
	s.notify(ctx, domain.Event{Type: domain.EventOrderStatusChanged, From: cur.Status, Order: saved, OccurredAt: saved.UpdatedAt})
	return saved, nil
}

// VerifyPayment is the only path that marks an order paid. Verifying an
// already paid order returns it unchanged.
func (s *OrderService) VerifyPayment(ctx context.Context, id uuid.UUID, reference string) (domain.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.Order{}, fmt.Errorf("%w: payment reference required", domain.ErrValidation)
	}

	cur, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if cur.IsPaid() {
		s.Metrics.ObservePayment("already_paid")
		return cur, nil
	}

	conf, err := s.Payments.Confirm(ctx, reference)
	if err != nil {
		s.Metrics.ObservePayment("error")
		return domain.Order{}, fmt.Errorf("confirm payment %s: %w", reference, err)
	}
	if !conf.Valid {
		s.Metrics.ObservePayment("invalid")
		return domain.Order{}, domain.ErrPaymentInvalid
	}
	if !domain.MoneyEqual(conf.Amount, cur.TotalAmount) {
		s.Metrics.ObservePayment("amount_mismatch")
		logging.FromContext(ctx).Error("payment_amount_mismatch",
			"order_id", cur.ID.String(),
			"reference", reference,
			"order_total", cur.TotalAmount.StringFixed(2),
			"provider_amount", conf.Amount.StringFixed(2),
		)
		return domain.Order{}, fmt.Errorf("%w: order %s, provider %s", domain.ErrAmountMismatch,
			cur.TotalAmount.StringFixed(2), conf.Amount.StringFixed(2))
	}

	now := s.now()
	next := cur.MarkPaid(reference, now)
	autoConfirmed := false
	if next.PaymentMethod == domain.PaymentOnline && next.Status == domain.StatusPending {
		if confirmed, err := domain.Transition(next, domain.StatusConfirmed, domain.TransitionContext{}, now); err == nil {
			next = confirmed
			autoConfirmed = true
		}
	}

	saved, err := s.swap(ctx, cur, next)
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			s.Metrics.ObservePayment("conflict")
		}
		return domain.Order{}, err
	}

	s.Metrics.ObservePayment("paid")
	events := []domain.Event{{Type: domain.EventOrderPaymentVerified, From: cur.Status, Order: saved, OccurredAt: now}}
	if autoConfirmed {
		s.Metrics.ObserveTransition(string(cur.Status), string(saved.Status), "ok")
		events = append(events, domain.Event{Type: domain.EventOrderStatusChanged, From: cur.Status, Order: saved, OccurredAt: now})
	}
	s.notify(ctx, events...)
	return saved, nil
}

// UpdateTransportationCharge reprices a pending order. storeID of uuid.Nil
// skips the ownership check.
func (s *OrderService) UpdateTransportationCharge(ctx context.Context, id uuid.UUID, charge decimal.Decimal, storeID uuid.UUID) (domain.Order, error) {
	cur, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := checkStore(cur, storeID); err != nil {
		return domain.Order{}, err
	}

	next, err := cur.WithTransportationCharge(charge, s.now())
	if err != nil {
		return domain.Order{}, err
	}

	saved, err := s.swap(ctx, cur, next)
	if err != nil {
		return domain.Order{}, err
	}

	s.notify(ctx, domain.Event{Type: domain.EventOrderChargeUpdated, From: cur.Status, Order: saved, OccurredAt: saved.UpdatedAt})
	return saved, nil
}

// CreateOrder checks out a cart of products from one store. Prices, names
// and images are copied from the catalog and stock is reserved atomically
// with the insert.
func (s *OrderService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest, userID uuid.UUID) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: items required", domain.ErrValidation)
	}
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return domain.Order{}, err
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return domain.Order{}, fmt.Errorf("%w: delivery_address required", domain.ErrValidation)
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	quantities := make([]int, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for i, it := range req.Items {
		if it.ProductID == uuid.Nil {
			return domain.Order{}, fmt.Errorf("%w: item %d: product_id required", domain.ErrValidation, i)
		}
		q, err := domain.ParseQuantity(it.Quantity.String())
		if err != nil {
			return domain.Order{}, fmt.Errorf("item %d: %w", i, err)
		}
		quantities[i] = q
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	products, err := s.Catalog.GetProducts(ctx, ids)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return domain.Order{}, fmt.Errorf("load products: %w", err)
	}

	storeID := products[ids[0]].StoreID
	items := make([]domain.LineItem, len(req.Items))
	for i, it := range req.Items {
		p := products[it.ProductID]
		if p.StoreID != storeID {
			return domain.Order{}, fmt.Errorf("%w: items must come from one store", domain.ErrValidation)
		}
		items[i] = domain.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Quantity:  quantities[i],
			UnitPrice: p.Price,
		}
	}

	store, err := s.Catalog.GetStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, catalog.ErrStoreNotFound) {
			return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return domain.Order{}, fmt.Errorf("load store: %w", err)
	}

	o, err := domain.NewOrder(
		uuid.New(),
		domain.StoreRef{ID: store.ID, Name: store.Name},
		domain.CustomerRef{
			ID:      userID,
			Name:    strings.TrimSpace(req.CustomerName),
			Phone:   strings.TrimSpace(req.CustomerPhone),
			Address: strings.TrimSpace(req.DeliveryAddress),
		},
		method,
		items,
		s.now(),
	)
	if err != nil {
		return domain.Order{}, err
	}

	created, err := s.Store.Create(ctx, o)
	if err != nil {
		return domain.Order{}, err
	}
	s.notify(ctx, domain.Event{Type: domain.EventOrderCreated, Order: created, OccurredAt: created.CreatedAt})

	if method == domain.PaymentOnline && strings.TrimSpace(req.PaymentReference) != "" {
		paid, err := s.VerifyPayment(ctx, created.ID, req.PaymentReference)
		if err != nil {
			logging.FromContext(ctx).Warn("checkout_payment_unverified", "order_id", created.ID.String(), "error", err)
			return created, nil
		}
		return paid, nil
	}
	return created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID, v Viewer) (domain.Order, error) {
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !canView(o, v) {
		// hide existence from other accounts
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, status domain.Status, offset, limit int) (int64, []domain.Order, error) {
	return s.Store.ListByUser(ctx, userID, repo.ListFilter{Status: status, Offset: offset, Limit: limit})
}

func (s *OrderService) ListStoreOrders(ctx context.Context, storeID uuid.UUID, status domain.Status, offset, limit int) (int64, []domain.Order, error) {
	return s.Store.ListByStore(ctx, storeID, repo.ListFilter{Status: status, Offset: offset, Limit: limit})
}

func (s *OrderService) SearchStoreOrders(ctx context.Context, storeID uuid.UUID, text string, status domain.Status, offset, limit int) (int64, []search.Document, error) {
	if s.Search == nil {
		return 0, nil, ErrSearchDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil, fmt.Errorf("%w: query required", domain.ErrValidation)
	}
	return s.Search.Search(ctx, search.Query{StoreID: storeID, Text: text, Status: status, From: offset, Size: limit})
}

// Wait blocks until notifications started so far have finished.
func (s *OrderService) Wait() {
	s.inflight.Wait()
}

func (s *OrderService) swap(ctx context.Context, cur, next domain.Order) (domain.Order, error) {
	saved, err := s.Store.CompareAndSwap(ctx, cur.ID, cur.Version, next)
	if err != nil {
		if errors.Is(err, repo.ErrVersionConflict) {
			return domain.Order{}, fmt.Errorf("%w: order %s", domain.ErrConcurrentModification, cur.ID)
		}
		return domain.Order{}, err
	}
	return saved, nil
}

// notify queues events for delivery detached from the request, so a client
// hanging up does not cancel them. One worker drains the queue, which keeps
// the events of an order in the order they were recorded.
func (s *OrderService) notify(ctx context.Context, events ...domain.Event) {
	if s.Notifier == nil || len(events) == 0 {
		return
	}
	dctx := context.WithoutCancel(ctx)

	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	for _, ev := range events {
		s.queue = append(s.queue, queuedEvent{ctx: dctx, ev: ev})
	}
	s.inflight.Add(len(events))
	if !s.draining {
		s.draining = true
		go s.drain()
	}
}

func (s *OrderService) drain() {
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	for {
		s.queueMu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.queueMu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue[0] = queuedEvent{}
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		s.deliver(next, timeout)
		s.inflight.Done()
	}
}

func (s *OrderService) deliver(q queuedEvent, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(q.ctx, timeout)
	defer cancel()
	if err := s.Notifier.Notify(ctx, q.ev); err != nil {
		logging.FromContext(q.ctx).Warn("order_notify_failed", "event", q.ev.Type, "order_id", q.ev.Order.ID.String(), "error", err)
	}
}

// checkStore reports another store's order as missing, like GetOrder.
func checkStore(o domain.Order, storeID uuid.UUID) error {
	if storeID != uuid.Nil && o.Store.ID != storeID {
		return domain.ErrOrderNotFound
	}
	return nil
}

func canView(o domain.Order, v Viewer) bool {
	switch v.Role {
	case tokens.RoleAdmin:
		return true
	case tokens.RoleStore:
		return o.Store.ID == v.UserID
	default:
		return o.Customer.ID == v.UserID
	}
}
