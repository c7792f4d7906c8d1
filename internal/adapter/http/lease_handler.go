package http

import (
	"context"
	"net/http"
	"time"

	"rentbook-backend/internal/usecase/lease"

	"github.com/labstack/echo/v4"
)

type LeaseHandler struct{ uc *lease.Usecase }

func NewLeaseHandler(uc *lease.Usecase) *LeaseHandler { return &LeaseHandler{uc: uc} }

type createLeaseReq struct {
	PropertyID      string  `json:"property_id"      validate:"required,hex32"`
	TenantID        string  `json:"tenant_id"        validate:"required,hex32"`
	LandlordID      string  `json:"landlord_id"      validate:"required,hex32"`
	StartDate       string  `json:"start_date"       validate:"required,datetime=2006-01-02"`
	EndDate         string  `json:"end_date"         validate:"required,datetime=2006-01-02"`
	MonthlyRent     float64 `json:"monthly_rent"     validate:"required,gt=0,dec2"`
	SecurityDeposit float64 `json:"security_deposit" validate:"gte=0,dec2"`
	PaymentDueDay   int     `json:"payment_due_day"  validate:"required,gte=1,lte=31"`
}

func (h *LeaseHandler) CreateLease(c echo.Context) error {
	var req createLeaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	dto, err := h.uc.Create(c.Request().Context(), lease.CreateLeaseInput{
		PropertyID:      req.PropertyID,
		TenantID:        req.TenantID,
		LandlordID:      req.LandlordID,
		StartDate:       start,
		EndDate:         end,
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		PaymentDueDay:   req.PaymentDueDay,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LeaseHandler) GetLease(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("lease_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LeaseHandler) LeaseHistory(c echo.Context) error {
	events, err := h.uc.History(c.Request().Context(), c.Param("lease_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": events})
}

func (h *LeaseHandler) SendForSignature(c echo.Context) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Actor-Id header"})
	}
	dto, err := h.uc.SendForSignature(c.Request().Context(), c.Param("lease_id"), actor)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type signLeaseReq struct {
	SignerID              string   `json:"signer_id"               validate:"required,hex32"`
	FullName              string   `json:"full_name"               validate:"required"`
	EmergencyContactName  string   `json:"emergency_contact_name"  validate:"required"`
	EmergencyContactPhone string   `json:"emergency_contact_phone" validate:"required"`
	AcceptedTerms         []string `json:"accepted_terms"          validate:"required,min=1"`
	Origin                string   `json:"origin"`
}

func (h *LeaseHandler) SignLease(c echo.Context) error {
	var req signLeaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Sign(c.Request().Context(), c.Param("lease_id"), lease.SignInput(req))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type leaseActionReq struct {
	Reason string `json:"reason"`
}

func (h *LeaseHandler) ForceActivate(c echo.Context) error {
	return h.action(c, h.uc.ForceActivate)
}

func (h *LeaseHandler) Deactivate(c echo.Context) error {
	return h.action(c, h.uc.Deactivate)
}

func (h *LeaseHandler) Terminate(c echo.Context) error {
	return h.action(c, h.uc.Terminate)
}

func (h *LeaseHandler) action(c echo.Context, fn func(ctx context.Context, leaseID, actorID, reason string) (*lease.LeaseDTO, error)) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ax-Actor-Id header"})
	}
	var req leaseActionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := fn(c.Request().Context(), c.Param("lease_id"), actor, req.Reason)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LeaseHandler) MarkExpired(c echo.Context) error {
	dto, err := h.uc.MarkExpired(c.Request().Context(), c.Param("lease_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
