package lease

import (
	"fmt"
	"strings"
	"time"

	domain "rentbook-backend/internal/domain/lease"
)

type CreateLeaseInput struct {
	PropertyID      string    `json:"property_id"`
	TenantID        string    `json:"tenant_id"`
	LandlordID      string    `json:"landlord_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	MonthlyRent     float64   `json:"monthly_rent"`
	SecurityDeposit float64   `json:"security_deposit"`
	PaymentDueDay   int       `json:"payment_due_day"`
}

func (in CreateLeaseInput) validate() error {
	switch {
	case len(in.PropertyID) != 32 || len(in.TenantID) != 32 || len(in.LandlordID) != 32:
		return fmt.Errorf("%w: property, tenant and landlord ids are required", domain.ErrValidation)
	case in.MonthlyRent <= 0:
		return fmt.Errorf("%w: monthly rent must be positive", domain.ErrValidation)
	case in.SecurityDeposit < 0:
		return fmt.Errorf("%w: security deposit cannot be negative", domain.ErrValidation)
	case in.PaymentDueDay < 1 || in.PaymentDueDay > 31:
		return fmt.Errorf("%w: payment due day must be 1-31", domain.ErrValidation)
	case in.StartDate.IsZero() || in.EndDate.IsZero() || !in.EndDate.After(in.StartDate):
		return fmt.Errorf("%w: end date must follow start date", domain.ErrValidation)
	}
	return nil
}

// SignInput is the tenant signature payload.
type SignInput struct {
	SignerID              string   `json:"signer_id"`
	FullName              string   `json:"full_name"`
	EmergencyContactName  string   `json:"emergency_contact_name"`
	EmergencyContactPhone string   `json:"emergency_contact_phone"`
	AcceptedTerms         []string `json:"accepted_terms"`
	Origin                string   `json:"origin"`
}

func (in SignInput) validate() error {
	if len(in.SignerID) != 32 {
		return fmt.Errorf("%w: signer id is required", domain.ErrValidation)
	}
	if in.FullName == "" || in.EmergencyContactName == "" || in.EmergencyContactPhone == "" {
		return fmt.Errorf("%w: personal and emergency contact fields are required", domain.ErrValidation)
	}
	accepted := make(map[string]bool, len(in.AcceptedTerms))
	for _, t := range in.AcceptedTerms {
		accepted[t] = true
	}
	for _, t := range requiredTerms {
		if !accepted[t] {
			return fmt.Errorf("%w: term %q must be accepted", domain.ErrValidation, t)
		}
	}
	return nil
}

func joinTerms(terms []string) string { return strings.Join(terms, ",") }

type LeaseDTO struct {
	LeaseID              string     `json:"lease_id"`
	PropertyID           string     `json:"property_id"`
	TenantID             string     `json:"tenant_id"`
	LandlordID           string     `json:"landlord_id"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	MonthlyRent          float64    `json:"monthly_rent"`
	SecurityDeposit      float64    `json:"security_deposit"`
	PaymentDueDay        int        `json:"payment_due_day"`
	Status               string     `json:"status"`
	BalanceDue           float64    `json:"balance_due"`
	TotalPaid            float64    `json:"total_paid"`
	NextPaymentDue       *time.Time `json:"next_payment_due,omitempty"`
	FirstPaymentRequired float64    `json:"first_payment_required"`
	Signed               bool       `json:"signed"`
	SignedAt             *time.Time `json:"signed_at,omitempty"`
	Overdue              bool       `json:"overdue"`
	CreatedAt            time.Time  `json:"created_at"`
}

func toDTO(l *domain.Lease) *LeaseDTO {
	return &LeaseDTO{
		LeaseID:              l.LeaseID,
		PropertyID:           l.PropertyID,
		TenantID:             l.TenantID,
		LandlordID:           l.LandlordID,
		StartDate:            l.StartDate,
		EndDate:              l.EndDate,
		MonthlyRent:          l.MonthlyRent,
		SecurityDeposit:      l.SecurityDeposit,
		PaymentDueDay:        l.PaymentDueDay,
		Status:               string(l.Status),
		BalanceDue:           l.BalanceDue,
		TotalPaid:            l.TotalPaid,
		NextPaymentDue:       l.NextPaymentDue,
		FirstPaymentRequired: l.FirstPaymentRequired(),
		Signed:               l.Signed,
		SignedAt:             l.SignedAt,
		Overdue:              l.Overdue(time.Now().UTC()),
		CreatedAt:            l.CreatedAt,
	}
}
