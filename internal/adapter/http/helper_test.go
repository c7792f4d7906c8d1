package http

import (
	"errors"
	"fmt"
	stdhttp "net/http"
	"testing"

	invoiceDomain "rentbook-backend/internal/domain/invoice"
	leaseDomain "rentbook-backend/internal/domain/lease"
	paymentDomain "rentbook-backend/internal/domain/payment"
	"rentbook-backend/internal/gateway/momo"
	"rentbook-backend/internal/usecase/reconcile"

	"github.com/labstack/echo/v4"
)

func TestJSONErrorStatusMapping(t *testing.T) {
	e := echo.New()
	cases := []struct {
		err  error
		want int
	}{
		{leaseDomain.ErrValidation, stdhttp.StatusUnprocessableEntity},
		{paymentDomain.ErrValidation, stdhttp.StatusUnprocessableEntity},
		{invoiceDomain.ErrValidation, stdhttp.StatusUnprocessableEntity},
		{leaseDomain.ErrInsufficientAmount, stdhttp.StatusUnprocessableEntity},
		{leaseDomain.ErrInvalidTransition, stdhttp.StatusConflict},
		{paymentDomain.ErrDuplicateRequest, stdhttp.StatusConflict},
		{invoiceDomain.ErrNotFound, stdhttp.StatusNotFound},
		{leaseDomain.ErrPermission, stdhttp.StatusForbidden},
		{paymentDomain.ErrPermission, stdhttp.StatusForbidden},
		{invoiceDomain.ErrPermission, stdhttp.StatusForbidden},
		{reconcile.ErrBadSignature, stdhttp.StatusUnauthorized},
		{momo.ErrGateway, stdhttp.StatusBadGateway},
		{errors.New("boom"), stdhttp.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, rec := jsonCtx(e, stdhttp.MethodGet, "/", nil)
		wrapped := fmt.Errorf("context: %w", tc.err)
		if err := jsonError(c, wrapped); err != nil {
			t.Fatalf("jsonError(%v): %v", tc.err, err)
		}
		if rec.Code != tc.want {
			t.Errorf("jsonError(%v) = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}
