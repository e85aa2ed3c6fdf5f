package httpserver

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/marketplace/pkg/authclient"
	"github.com/Skotchmaster/marketplace/pkg/metrics"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type Deps struct {
	OrderHandler   *OrderHTTP
	WebhookHandler *PaymentWebhookHTTP
	JWTSecret      []byte
	AuthClient     *authclient.Client
	Gatherer       prometheus.Gatherer
	Ready          func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)
	buyers := authMW.RequireRole(tokens.RoleCustomer, tokens.RoleContractor)
	stores := authMW.RequireRole(tokens.RoleStore, tokens.RoleAdmin)

	orders := e.Group("/orders")
	orders.POST("/pricing", d.OrderHandler.ComputePricing, authMW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder, buyers)
	orders.GET("", d.OrderHandler.ListMyOrders, buyers)
	orders.GET("/:id", d.OrderHandler.GetOrder, authMW.RequireAuth)
	orders.POST("/:id/payment/verify", d.OrderHandler.VerifyPayment, buyers)
	orders.POST("/:id/transition", d.OrderHandler.TransitionOrder, stores)
	orders.PATCH("/:id/transportation", d.OrderHandler.UpdateTransportationCharge, stores)

	store := e.Group("/stores/me", authMW.RequireRole(tokens.RoleStore))
	store.GET("/orders", d.OrderHandler.ListStoreOrders)
	store.GET("/orders/search", d.OrderHandler.SearchStoreOrders)

	if d.WebhookHandler != nil {
		e.POST("/payments/webhook", d.WebhookHandler.Handle)
	}
}
