package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"rentbook-backend/internal/usecase/reconcile"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct{ co *reconcile.Coordinator }

func NewWebhookHandler(co *reconcile.Coordinator) *WebhookHandler {
	return &WebhookHandler{co: co}
}

// gatewayCallback mirrors the provider's requesttopay callback payload.
type gatewayCallback struct {
	ReferenceID            string `json:"referenceId"`
	ExternalID             string `json:"externalId"`
	Status                 string `json:"status"`
	FinancialTransactionID string `json:"financialTransactionId"`
	Reason                 string `json:"reason"`
}

// GatewayWebhook receives provider callbacks. The signature is checked
// over the raw body before any parsing; replays return 200 with
// applied=false so the provider stops retrying.
func (h *WebhookHandler) GatewayWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable body"})
	}
	sig := strings.TrimSpace(c.Request().Header.Get("X-Signature"))
	if err := h.co.VerifySignature(body, sig); err != nil {
		return jsonError(c, err)
	}

	var cb gatewayCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if cb.ReferenceID == "" || cb.Status == "" {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "referenceId and status are required"})
	}

	res, err := h.co.Reconcile(c.Request().Context(), reconcile.ReconcileInput{
		Source:          reconcile.SourceWebhook,
		ReferenceNumber: cb.ReferenceID,
		ProviderStatus:  cb.Status,
		EventID:         strings.TrimSpace(c.Request().Header.Get("X-Event-Id")),
		ProviderTxnID:   cb.FinancialTransactionID,
		Reason:          cb.Reason,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
