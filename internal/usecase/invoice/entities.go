package invoice

import (
	"fmt"
	"time"

	domain "rentbook-backend/internal/domain/invoice"
)

type ItemInput struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	TaxRate     float64 `json:"tax_rate"`
	Period      string  `json:"period,omitempty"`
}

type CreateInvoiceInput struct {
	TenantID   string      `json:"tenant_id"`
	PropertyID string      `json:"property_id"`
	LeaseID    string      `json:"lease_id,omitempty"`
	DueDate    *time.Time  `json:"due_date,omitempty"`
	Items      []ItemInput `json:"items"`
}

func (in CreateInvoiceInput) validate() error {
	if len(in.TenantID) != 32 || len(in.PropertyID) != 32 {
		return fmt.Errorf("%w: tenant and property ids are required", domain.ErrValidation)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: at least one line item is required", domain.ErrValidation)
	}
	for i, it := range in.Items {
		if it.Description == "" {
			return fmt.Errorf("%w: item %d has no description", domain.ErrValidation, i+1)
		}
		if it.Amount <= 0 {
			return fmt.Errorf("%w: item %d amount must be positive", domain.ErrValidation, i+1)
		}
		if it.TaxRate < 0 || it.TaxRate > 100 {
			return fmt.Errorf("%w: item %d tax rate must be 0-100", domain.ErrValidation, i+1)
		}
	}
	return nil
}

type InvoiceDTO struct {
	InvoiceNumber string        `json:"invoice_number"`
	TenantID      string        `json:"tenant_id"`
	PropertyID    string        `json:"property_id"`
	Period        string        `json:"period,omitempty"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	AmountPaid    float64       `json:"amount_paid"`
	BalanceDue    float64       `json:"balance_due"`
	Status        string        `json:"status"`
	IssuedAt      *time.Time    `json:"issued_at,omitempty"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	Items         []domain.Item `json:"items,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

func toDTO(inv *domain.Invoice) *InvoiceDTO {
	return &InvoiceDTO{
		InvoiceNumber: inv.InvoiceNumber,
		TenantID:      inv.TenantID,
		PropertyID:    inv.PropertyID,
		Period:        inv.Period,
		Subtotal:      inv.Subtotal,
		Tax:           inv.Tax,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		BalanceDue:    inv.BalanceDue,
		Status:        string(inv.Status),
		IssuedAt:      inv.IssuedAt,
		DueDate:       inv.DueDate,
		Items:         inv.Items,
		CreatedAt:     inv.CreatedAt,
	}
}
