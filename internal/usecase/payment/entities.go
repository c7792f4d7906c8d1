package payment

import (
	"fmt"
	"time"

	domain "rentbook-backend/internal/domain/payment"
)

// Outcome is the canonical result the coordinator distills from the
// provider's status vocabulary.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomePending   Outcome = "pending"
)

type SubmitInput struct {
	TenantID       string        `json:"tenant_id"`
	LeaseID        string        `json:"lease_id"`
	InvoiceNumber  string        `json:"invoice_number,omitempty"`
	Amount         float64       `json:"amount"`
	ExpectedAmount float64       `json:"expected_amount,omitempty"`
	Currency       string        `json:"currency"`
	Method         domain.Method `json:"payment_method"`
	PayerMSISDN    string        `json:"payer_msisdn,omitempty"`
	Note           string        `json:"note,omitempty"`
}

func (in SubmitInput) validate() error {
	switch {
	case in.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	case in.Currency == "":
		return fmt.Errorf("%w: currency is required", domain.ErrValidation)
	case len(in.TenantID) != 32:
		return fmt.Errorf("%w: tenant id is required", domain.ErrValidation)
	case len(in.LeaseID) != 32:
		return fmt.Errorf("%w: lease id is required", domain.ErrValidation)
	case !in.Method.Valid():
		return fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, in.Method)
	case in.Method == domain.MethodMobileMoney && in.PayerMSISDN == "":
		return fmt.Errorf("%w: payer msisdn is required for mobile money", domain.ErrValidation)
	}
	return nil
}

// GatewayOutcomeInput carries one external confirmation event.
type GatewayOutcomeInput struct {
	ReferenceNumber  string
	Outcome          Outcome
	Source           string // poll | webhook
	EventID          string
	ProviderStatus   string
	ProviderTxnID    string
	ConfirmationCode string
	Reason           string
}

type PaymentDTO struct {
	ReceiptNumber   string     `json:"receipt_number"`
	Amount          float64    `json:"amount"`
	ExpectedAmount  float64    `json:"expected_amount"`
	Currency        string     `json:"currency"`
	TenantID        string     `json:"tenant_id"`
	PropertyID      string     `json:"property_id"`
	Method          string     `json:"payment_method"`
	Status          string     `json:"status"`
	ApprovalStatus  string     `json:"approval_status"`
	ReferenceNumber string     `json:"reference_number,omitempty"`
	ProviderTxnID   string     `json:"provider_txn_id,omitempty"`
	FailureDetail   string     `json:"failure_detail,omitempty"`
	CreditedAt      *time.Time `json:"credited_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toDTO(p *domain.Payment) *PaymentDTO {
	dto := &PaymentDTO{
		ReceiptNumber:  p.ReceiptNumber,
		Amount:         p.Amount,
		ExpectedAmount: p.ExpectedAmount,
		Currency:       p.Currency,
		TenantID:       p.TenantID,
		PropertyID:     p.PropertyID,
		Method:         string(p.Method),
		Status:         string(p.Status),
		ApprovalStatus: string(p.ApprovalStatus),
		ProviderTxnID:  p.ProviderTxnID,
		FailureDetail:  p.FailureDetail,
		CreditedAt:     p.CreditedAt,
		CreatedAt:      p.CreatedAt,
	}
	if p.ReferenceNumber != nil {
		dto.ReferenceNumber = *p.ReferenceNumber
	}
	return dto
}
