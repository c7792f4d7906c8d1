package payment

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Status is the canonical payment lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ApprovalStatus is the manual-review sub-state, independent of Status.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodCheque       Method = "cheque"
	MethodMobileMoney  Method = "mobile_money"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCheque, MethodMobileMoney:
		return true
	}
	return false
}

var (
	ErrNotFound          = errors.New("payment not found")
	ErrInvalidTransition = errors.New("invalid payment transition")
	ErrDuplicateRequest  = errors.New("unexpired pending mobile money payment exists")
	ErrValidation        = errors.New("invalid payment input")
	ErrPermission        = errors.New("actor not allowed on this payment")
	ErrReceiptExhausted  = errors.New("could not allocate a unique receipt number")
)

// Actor recorded on gateway-driven approval history entries.
const GatewayActor = "gateway"

type Payment struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	ReceiptNumber string `gorm:"size:20;uniqueIndex:ux_payments_receipt" json:"receipt_number"`

	Amount         float64 `gorm:"type:decimal(18,2)" json:"amount"`
	ExpectedAmount float64 `gorm:"type:decimal(18,2)" json:"expected_amount"`
	Currency       string  `gorm:"size:3" json:"currency"`

	TenantID     string  `gorm:"size:32;index:idx_payments_tenant_lease" json:"tenant_id"`
	PropertyID   string  `gorm:"size:32;index" json:"property_id"`
	LandlordID   string  `gorm:"size:32" json:"landlord_id"`
	LeaseRowID   uint64  `gorm:"column:lease_id;not null;index:idx_payments_tenant_lease" json:"-"`
	InvoiceRowID *uint64 `gorm:"column:invoice_id;index" json:"-"`

	Method         Method         `gorm:"type:enum('cash','bank_transfer','cheque','mobile_money')" json:"payment_method"`
	Status         Status         `gorm:"type:enum('pending','completed','failed','cancelled');default:'pending'" json:"status"`
	ApprovalStatus ApprovalStatus `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"approval_status"`

	// Gateway correlation. ReferenceNumber is the id this service handed the
	// provider; the provider echoes it back on polls and webhooks. Nil for
	// manual payments (NULLs don't collide on the unique index).
	ReferenceNumber  *string `gorm:"size:64;uniqueIndex:ux_payments_reference" json:"reference_number,omitempty"`
	ProviderTxnID    string  `gorm:"size:64" json:"provider_txn_id,omitempty"`
	ConfirmationCode string  `gorm:"size:64" json:"confirmation_code,omitempty"`
	PayerMSISDN      string  `gorm:"size:16" json:"payer_msisdn,omitempty"`
	FailureDetail    string  `gorm:"type:text" json:"failure_detail,omitempty"`

	// Set exactly once when downstream invoice/lease crediting has run.
	CreditedAt *time.Time `json:"credited_at,omitempty"`

	Note string `gorm:"type:text" json:"note,omitempty"`

	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Payment) TableName() string { return "payments" }

// Counted reports whether this payment counts toward lease/invoice balances.
func (p *Payment) Counted() bool {
	return p.Status == StatusCompleted && p.ApprovalStatus == ApprovalApproved
}

// ApprovalEvent is one entry in the append-only approval history.
type ApprovalEvent struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"-"`
	PaymentRowID uint64    `gorm:"column:payment_id;not null;index" json:"-"`
	Action       string    `gorm:"size:32" json:"action"`
	Actor        string    `gorm:"size:32" json:"actor"`
	Note         string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ApprovalEvent) TableName() string { return "payment_approval_events" }

// Approval history actions.
const (
	ActionSubmitted        = "submitted"
	ActionApproved         = "approved"
	ActionRejected         = "rejected"
	ActionCancelled        = "cancelled"
	ActionGatewayCompleted = "gateway_completed"
	ActionGatewayFailed    = "gateway_failed"
)

// GatewayEvent records one external confirmation event against a payment.
// The unique (payment_id, event_id) pair is the idempotency ledger: a replay
// inserts nothing and must change nothing.
type GatewayEvent struct {
	ID             uint64    `gorm:"primaryKey;column:id" json:"-"`
	PaymentRowID   uint64    `gorm:"column:payment_id;not null;uniqueIndex:ux_payment_gateway_event" json:"-"`
	EventID        string    `gorm:"size:128;uniqueIndex:ux_payment_gateway_event" json:"event_id"`
	Source         string    `gorm:"size:16" json:"source"`
	ProviderStatus string    `gorm:"size:32" json:"provider_status"`
	Outcome        string    `gorm:"size:16" json:"outcome"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (GatewayEvent) TableName() string { return "payment_gateway_events" }
