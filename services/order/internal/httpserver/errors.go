package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
	"github.com/labstack/echo/v4"
)

var errorStatus = []struct {
	err  error
	code int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrIllegalTransition, http.StatusConflict},
	{domain.ErrMissingReason, http.StatusUnprocessableEntity},
	{domain.ErrPaymentRequired, http.StatusPaymentRequired},
	{domain.ErrOrderNotFound, http.StatusNotFound},
	{domain.ErrAmountMismatch, http.StatusConflict},
	{domain.ErrPaymentInvalid, http.StatusPaymentRequired},
	{domain.ErrConcurrentModification, http.StatusConflict},
	{domain.ErrOrderLocked, http.StatusConflict},
	{domain.ErrOutOfStock, http.StatusConflict},
	{service.ErrSearchDisabled, http.StatusServiceUnavailable},
}

// statusFor maps an error to its HTTP status and client message. Validation
// errors carry their detail; unknown errors are reported as internal.
func statusFor(err error) (int, string) {
	for _, e := range errorStatus {
		if !errors.Is(err, e.err) {
			continue
		}
		if e.err == domain.ErrValidation {
			return e.code, err.Error()
		}
		return e.code, e.err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func fail(l *slog.Logger, op string, err error) error {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		l.Error(op+"_error", "status", code, "reason", msg, "error", err)
	} else {
		l.Warn(op+"_error", "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
