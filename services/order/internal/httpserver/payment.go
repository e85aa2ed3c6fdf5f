package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/payment"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 64 << 10

// VerifyPayment is called by the customer's client after checkout returns
// from the payment page. Reloads are safe.
func (h *OrderHTTP) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.verify_payment")

	v, err := viewer(c)
	if err != nil {
		l.Warn("verify_payment_error", "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := orderID(c)
	if err != nil {
		return badRequest(l, "verify_payment", "id is not a uuid", err)
	}

	var req transport.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "verify_payment", "invalid body", err)
	}

	if _, err := h.Svc.GetOrder(ctx, id, v); err != nil {
		return fail(l, "verify_payment", err)
	}

	order, err := h.Svc.VerifyPayment(ctx, id, req.Reference)
	if err != nil {
		return fail(l, "verify_payment", err)
	}

	l.Info("verify_payment_success", "order_id", id.String(), "status", string(order.Status))
	return c.JSON(http.StatusOK, transport.FromDomain(order))
}

type PaymentWebhookHTTP struct {
	Orders *OrderHTTP
	Secret []byte
}

// Handle accepts provider callbacks. Business rejections are acknowledged
// with 200 so the provider does not redeliver them; conflicts and internal
// failures are not, so a redelivery can land on the idempotent path.
func (h *PaymentWebhookHTTP) Handle(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.webhook")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest(l, "payment_webhook", "cannot read body", err)
	}

	if err := payment.VerifySignature(h.Secret, body, c.Request().Header.Get(payment.SignatureHeader)); err != nil {
		l.Warn("payment_webhook_error", "status", 401, "reason", "bad signature", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "bad signature")
	}

	capture, ok, err := payment.ParseWebhook(body)
	if err != nil {
		return badRequest(l, "payment_webhook", "invalid payload", err)
	}
	if !ok {
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	order, err := h.Orders.Svc.VerifyPayment(ctx, capture.OrderID, capture.Reference)
	if err != nil {
		code, msg := statusFor(err)
		if code < http.StatusInternalServerError && !errors.Is(err, domain.ErrConcurrentModification) {
			l.Warn("payment_webhook_rejected", "order_id", capture.OrderID.String(), "reference", capture.Reference, "reason", msg, "error", err)
			return c.JSON(http.StatusOK, map[string]string{"status": "rejected", "reason": msg})
		}
		return fail(l, "payment_webhook", err)
	}

	l.Info("payment_webhook_success", "order_id", order.ID.String(), "reference", capture.Reference)
	return c.JSON(http.StatusOK, map[string]string{"status": "paid"})
}
