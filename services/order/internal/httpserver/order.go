package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
	"github.com/Skotchmaster/marketplace/services/order/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

var errUnauthorized = errors.New("unauthorized")

func viewer(c echo.Context) (service.Viewer, error) {
	s, ok := c.Get(middleware.CtxUserID).(string)
	if !ok || s == "" {
		return service.Viewer{}, errUnauthorized
	}
	userID, err := uuid.Parse(s)
	if err != nil {
		return service.Viewer{}, errUnauthorized
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return service.Viewer{UserID: userID, Role: role}, nil
}

// actingStore is the store a mutation is restricted to; admins act for
// every store.
func actingStore(v service.Viewer) uuid.UUID {
	if v.Role == tokens.RoleAdmin {
		return uuid.Nil
	}
	return v.UserID
}

func orderID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func statusFilter(raw string) (domain.Status, error) {
	if raw == "" {
		return "", nil
	}
	return domain.ParseStatus(raw)
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	v, err := viewer(c)
	if err != nil {
		l.Warn("create_order_error", "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order", "invalid body", err)
	}

	order, err := h.Svc.CreateOrder(ctx, req, v.UserID)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", order.ID.String(), "total", order.TotalAmount.StringFixed(2))
	return c.JSON(http.StatusCreated, transport.FromDomain(order))
}

func (h *OrderHTTP) ComputePricing(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.compute_pricing")

	var req transport.PricingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "compute_pricing", "invalid body", err)
	}

	items := make([]domain.LineItem, len(req.Items))
	for i, it := range req.Items {
		price, err := domain.ParseAmount(it.UnitPrice, domain.ErrInvalidPrice)
		if err != nil {
			return fail(l, "compute_pricing", err)
		}
		qty, err := domain.ParseQuantity(it.Quantity.String())
		if err != nil {
			return fail(l, "compute_pricing", err)
		}
		items[i] = domain.LineItem{Quantity: qty, UnitPrice: price}
	}

	charge := decimal.Zero
	if req.TransportationCharge != "" {
		var err error
		if charge, err = domain.ParseAmount(req.TransportationCharge, domain.ErrInvalidCharge); err != nil {
			return fail(l, "compute_pricing", err)
		}
	}

	p, err := h.Svc.ComputePricing(items, charge)
	if err != nil {
		return fail(l, "compute_pricing", err)
	}

	return c.JSON(http.StatusOK, transport.PricingResponse{
		Subtotal:    p.Subtotal.StringFixed(2),
		TotalAmount: p.TotalAmount.StringFixed(2),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	v, err := viewer(c)
	if err != nil {
		l.Warn("get_order_error", "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := orderID(c)
	if err != nil {
		return badRequest(l, "get_order", "id is not a uuid", err)
	}

	order, err := h.Svc.GetOrder(ctx, id, v)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, transport.FromDomain(order))
}

func (h *OrderHTTP) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_my_orders")

	v, err := viewer(c)
	if err != nil {
		l.Warn("list_my_orders_error", "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return h.list(c, "list_my_orders", v.UserID, h.Svc.ListUserOrders)
}

func (h *OrderHTTP) ListStoreOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_store_orders")

	v, err := viewer(c)
	if err != nil {
		l.Warn("list_store_orders_error", "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return h.list(c, "list_store_orders", v.UserID, h.Svc.ListStoreOrders)
}

type listFunc func(ctx context.Context, owner uuid.UUID, status domain.Status, offset, limit int) (int64, []domain.Order, error)

func (h *OrderHTTP) list(c echo.Context, op string, owner uuid.UUID, fn listFunc) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order."+op)

	status, err := statusFilter(c.QueryParam("status"))
	if err != nil {
		return fail(l, op, err)
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := fn(ctx, owner, status, offset, limit)
	if err != nil {
		return fail(l, op, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": transport.FromDomainList(orders),
		"meta": transport.NewPageMeta(offset, limit, total),
	})
}

func (h *OrderHTTP) SearchStoreOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.search_store_orders")

	v, err := viewer(c)
	if err != nil {
		l.Warn("search_store_orders_error", "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	status, err := statusFilter(c.QueryParam("status"))
	if err != nil {
		return fail(l, "search_store_orders", err)
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, docs, err := h.Svc.SearchStoreOrders(ctx, v.UserID, c.QueryParam("q"), status, offset, limit)
	if err != nil {
		return fail(l, "search_store_orders", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": docs,
		"meta": transport.NewPageMeta(offset, limit, total),
	})
}

func (h *OrderHTTP) TransitionOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.transition_order")

	v, err := viewer(c)
	if err != nil {
		l.Warn("transition_order_error", "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := orderID(c)
	if err != nil {
		return badRequest(l, "transition_order", "id is not a uuid", err)
	}

	var req transport.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "transition_order", "invalid body", err)
	}
	target, err := domain.ParseStatus(strings.TrimSpace(req.Status))
	if err != nil {
		return fail(l, "transition_order", err)
	}

	order, err := h.Svc.TransitionOrder(ctx, id, target, domain.TransitionContext{
		Reason:          req.Reason,
		ExpectedVersion: req.ExpectedVersion,
		StoreID:         actingStore(v),
	})
	if err != nil {
		return fail(l, "transition_order", err)
	}

	l.Info("transition_order_success", "order_id", id.String(), "status", string(order.Status))
	return c.JSON(http.StatusOK, transport.FromDomain(order))
}

func (h *OrderHTTP) UpdateTransportationCharge(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_transportation")

	v, err := viewer(c)
	if err != nil {
		l.Warn("update_transportation_error", "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := orderID(c)
	if err != nil {
		return badRequest(l, "update_transportation", "id is not a uuid", err)
	}

	var req transport.TransportationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_transportation", "invalid body", err)
	}
	charge, err := domain.ParseAmount(req.Charge, domain.ErrInvalidCharge)
	if err != nil {
		return fail(l, "update_transportation", err)
	}

	order, err := h.Svc.UpdateTransportationCharge(ctx, id, charge, actingStore(v))
	if err != nil {
		return fail(l, "update_transportation", err)
	}

	l.Info("update_transportation_success", "order_id", id.String(), "total", order.TotalAmount.StringFixed(2))
	return c.JSON(http.StatusOK, transport.FromDomain(order))
}
