package http

import (
	"errors"
	"net/http"
	"strings"

	invoiceDomain "rentbook-backend/internal/domain/invoice"
	leaseDomain "rentbook-backend/internal/domain/lease"
	paymentDomain "rentbook-backend/internal/domain/payment"
	"rentbook-backend/internal/gateway/momo"
	"rentbook-backend/internal/usecase/reconcile"

	"github.com/labstack/echo/v4"
)

// jsonError maps domain sentinels to HTTP status codes. Anything
// unrecognized is a 500 with a generic message so internals don't leak.
func jsonError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, leaseDomain.ErrValidation),
		errors.Is(err, paymentDomain.ErrValidation),
		errors.Is(err, invoiceDomain.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, leaseDomain.ErrInsufficientAmount):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, leaseDomain.ErrInvalidTransition),
		errors.Is(err, paymentDomain.ErrInvalidTransition),
		errors.Is(err, invoiceDomain.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, paymentDomain.ErrDuplicateRequest):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, leaseDomain.ErrNotFound),
		errors.Is(err, paymentDomain.ErrNotFound),
		errors.Is(err, invoiceDomain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, leaseDomain.ErrPermission),
		errors.Is(err, paymentDomain.ErrPermission),
		errors.Is(err, invoiceDomain.ErrPermission):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, reconcile.ErrBadSignature):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
	case errors.Is(err, momo.ErrGateway):
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// actorID pulls the acting party from the Ax-Actor-Id header.
func actorID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get("Ax-Actor-Id"))
}

func requireActor(c echo.Context) (string, bool) {
	id := actorID(c)
	if !reHex32.MatchString(id) {
		return "", false
	}
	return id, true
}
