package http

import (
	"net/http"

	domain "rentbook-backend/internal/domain/payment"
	"rentbook-backend/internal/usecase/payment"
	"rentbook-backend/internal/usecase/reconcile"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc *payment.Usecase
	co *reconcile.Coordinator
}

func NewPaymentHandler(uc *payment.Usecase, co *reconcile.Coordinator) *PaymentHandler {
	return &PaymentHandler{uc: uc, co: co}
}

type submitPaymentReq struct {
	TenantID       string  `json:"tenant_id"        validate:"required,hex32"`
	LeaseID        string  `json:"lease_id"         validate:"required,hex32"`
	InvoiceNumber  string  `json:"invoice_number"`
	Amount         float64 `json:"amount"           validate:"required,gt=0,dec2"`
	ExpectedAmount float64 `json:"expected_amount"  validate:"gte=0,dec2"`
	Currency       string  `json:"currency"         validate:"required,oneof=UGX EUR USD"`
	Method         string  `json:"payment_method"   validate:"required,oneof=cash bank_transfer cheque mobile_money"`
	PayerMSISDN    string  `json:"payer_msisdn"     validate:"required_if=Method mobile_money,omitempty,msisdn"`
	Note           string  `json:"note"`
}

func (h *PaymentHandler) SubmitPayment(c echo.Context) error {
	var req submitPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Submit(c.Request().Context(), payment.SubmitInput{
		TenantID:       req.TenantID,
		LeaseID:        req.LeaseID,
		InvoiceNumber:  req.InvoiceNumber,
		Amount:         req.Amount,
		ExpectedAmount: req.ExpectedAmount,
		Currency:       req.Currency,
		Method:         domain.Method(req.Method),
		PayerMSISDN:    req.PayerMSISDN,
		Note:           req.Note,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("receipt_number"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PaymentHandler) PaymentHistory(c echo.Context) error {
	events, err := h.uc.History(c.Request().Context(), c.Param("receipt_number"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": events})
}

type reviewPaymentReq struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

func (h *PaymentHandler) ApprovePayment(c echo.Context) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Actor-Id header"})
	}
	var req reviewPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.co.ApproveManual(c.Request().Context(), c.Param("receipt_number"), actor, req.Note)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PaymentHandler) RejectPayment(c echo.Context) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Actor-Id header"})
	}
	var req reviewPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.co.RejectManual(c.Request().Context(), c.Param("receipt_number"), actor, req.Reason)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PaymentHandler) CancelPayment(c echo.Context) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Actor-Id header"})
	}
	var req reviewPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.Cancel(c.Request().Context(), c.Param("receipt_number"), actor, req.Reason)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// PollPayment asks the gateway for the current collection status and
// folds the answer through the same reconciliation path webhooks use.
func (h *PaymentHandler) PollPayment(c echo.Context) error {
	res, err := h.co.Poll(c.Request().Context(), c.Param("receipt_number"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
