package lease

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft            Status = "draft"
	StatusPendingSignature Status = "pending_signature"
	StatusSigned           Status = "signed"
	StatusActive           Status = "active"
	StatusTerminated       Status = "terminated"
	StatusExpired          Status = "expired"
)

var (
	ErrNotFound           = errors.New("lease not found")
	ErrInvalidTransition  = errors.New("invalid lease transition")
	ErrInsufficientAmount = errors.New("first payment below required amount")
	ErrValidation         = errors.New("invalid lease input")
	ErrPermission         = errors.New("actor not allowed on this lease")
)

// transitions is the closed set of legal status moves. The manual override
// edges (draft→active, active→draft) are included here; the usecase decides
// who may take them.
var transitions = map[Status][]Status{
	StatusDraft:            {StatusPendingSignature, StatusActive, StatusTerminated},
	StatusPendingSignature: {StatusSigned, StatusTerminated},
	StatusSigned:           {StatusActive, StatusTerminated},
	StatusActive:           {StatusDraft, StatusTerminated, StatusExpired},
}

func (s Status) CanTransition(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusTerminated || s == StatusExpired
}

// moneyEps is the one-cent tolerance used for balance comparisons.
const moneyEps = 0.005

type Lease struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	LeaseID    string `gorm:"size:32;uniqueIndex:ux_leases_lease_id" json:"lease_id"`
	PropertyID string `gorm:"size:32;index" json:"property_id"`
	TenantID   string `gorm:"size:32;index" json:"tenant_id"`
	LandlordID string `gorm:"size:32;index" json:"landlord_id"`

	StartDate time.Time `gorm:"type:date" json:"start_date"`
	EndDate   time.Time `gorm:"type:date" json:"end_date"`

	MonthlyRent     float64 `gorm:"type:decimal(18,2)" json:"monthly_rent"`
	SecurityDeposit float64 `gorm:"type:decimal(18,2)" json:"security_deposit"`
	PaymentDueDay   int     `gorm:"type:tinyint" json:"payment_due_day"`

	Status     Status  `gorm:"type:enum('draft','pending_signature','signed','active','terminated','expired');default:'draft'" json:"status"`
	BalanceDue float64 `gorm:"type:decimal(18,2)" json:"balance_due"`
	TotalPaid  float64 `gorm:"type:decimal(18,2)" json:"total_paid"`

	NextPaymentDue *time.Time `gorm:"type:date" json:"next_payment_due,omitempty"`
	ActivatedAt    *time.Time `json:"activated_at,omitempty"`

	// Signature record, present only once signed.
	Signed          bool       `json:"signed"`
	SignedAt        *time.Time `json:"signed_at,omitempty"`
	SignerID        string     `gorm:"size:32" json:"signer_id,omitempty"`
	AcceptedTerms   string     `gorm:"type:text" json:"accepted_terms,omitempty"`
	SignatureOrigin string     `gorm:"size:128" json:"signature_origin,omitempty"`

	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Lease) TableName() string { return "leases" }

// FirstPaymentRequired is the amount the activating payment must cover.
func (l *Lease) FirstPaymentRequired() float64 {
	return l.SecurityDeposit + l.MonthlyRent
}

// Overdue is a read-time check; it never forces a transition.
func (l *Lease) Overdue(now time.Time) bool {
	return l.Status == StatusActive &&
		l.BalanceDue > moneyEps &&
		l.NextPaymentDue != nil &&
		l.NextPaymentDue.Before(now)
}

// StatusEvent is one entry in the append-only lease status history.
type StatusEvent struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	LeaseRowID uint64    `gorm:"column:lease_id;not null;index" json:"-"`
	FromStatus string    `gorm:"size:32" json:"from_status"`
	ToStatus   string    `gorm:"size:32" json:"to_status"`
	Actor      string    `gorm:"size:32" json:"actor"`
	Reason     string    `gorm:"type:text" json:"reason"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (StatusEvent) TableName() string { return "lease_status_events" }
