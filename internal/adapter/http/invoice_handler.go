package http

import (
	"net/http"
	"time"

	"rentbook-backend/internal/usecase/invoice"

	"github.com/labstack/echo/v4"
)

type InvoiceHandler struct{ uc *invoice.Usecase }

func NewInvoiceHandler(uc *invoice.Usecase) *InvoiceHandler { return &InvoiceHandler{uc: uc} }

type invoiceItemReq struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount"      validate:"required,gt=0,dec2"`
	TaxRate     float64 `json:"tax_rate"    validate:"gte=0,lte=100"`
	Period      string  `json:"period"`
}

type createInvoiceReq struct {
	TenantID   string           `json:"tenant_id"   validate:"required,hex32"`
	PropertyID string           `json:"property_id" validate:"required,hex32"`
	LeaseID    string           `json:"lease_id"    validate:"omitempty,hex32"`
	DueDate    string           `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	Items      []invoiceItemReq `json:"items"       validate:"required,min=1,dive"`
}

func (h *InvoiceHandler) CreateInvoice(c echo.Context) error {
	var req createInvoiceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in := invoice.CreateInvoiceInput{
		TenantID:   req.TenantID,
		PropertyID: req.PropertyID,
		LeaseID:    req.LeaseID,
	}
	if req.DueDate != "" {
		due, _ := time.Parse("2006-01-02", req.DueDate)
		in.DueDate = &due
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, invoice.ItemInput(it))
	}
	dto, err := h.uc.CreateDraft(c.Request().Context(), in)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("invoice_number"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type sendInvoiceReq struct {
	DueDate string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

func (h *InvoiceHandler) SendInvoice(c echo.Context) error {
	var req sendInvoiceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	due, _ := time.Parse("2006-01-02", req.DueDate)
	dto, err := h.uc.Send(c.Request().Context(), c.Param("invoice_number"), due)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *InvoiceHandler) MarkOverdue(c echo.Context) error {
	dto, err := h.uc.MarkOverdue(c.Request().Context(), c.Param("invoice_number"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *InvoiceHandler) CancelInvoice(c echo.Context) error {
	dto, err := h.uc.Cancel(c.Request().Context(), c.Param("invoice_number"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type generateInvoiceReq struct {
	Period string `json:"period" validate:"required,datetime=2006-01"`
}

// GenerateInvoice creates (or returns) the rent invoice for one lease
// billing period.
func (h *InvoiceHandler) GenerateInvoice(c echo.Context) error {
	var req generateInvoiceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.GenerateForLease(c.Request().Context(), c.Param("lease_id"), req.Period)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}
