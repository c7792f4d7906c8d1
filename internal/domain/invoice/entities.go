package invoice

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool { return s == StatusPaid || s == StatusCancelled }

var (
	ErrNotFound          = errors.New("invoice not found")
	ErrInvalidTransition = errors.New("invalid invoice transition")
	ErrValidation        = errors.New("invalid invoice input")
	ErrPermission        = errors.New("actor not allowed on this invoice")
	ErrNumberExhausted   = errors.New("could not allocate a unique invoice number")
)

const moneyEps = 0.005

type Invoice struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	InvoiceNumber string `gorm:"size:20;uniqueIndex:ux_invoices_number" json:"invoice_number"`

	TenantID   string  `gorm:"size:32;index" json:"tenant_id"`
	PropertyID string  `gorm:"size:32;index" json:"property_id"`
	LeaseRowID *uint64 `gorm:"column:lease_id;index:idx_invoices_lease_period" json:"-"`

	// Period is set on generated rent invoices ("2006-01"); one per
	// lease+period at most.
	Period string `gorm:"size:7;index:idx_invoices_lease_period" json:"period,omitempty"`

	Subtotal   float64 `gorm:"type:decimal(18,2)" json:"subtotal"`
	Tax        float64 `gorm:"type:decimal(18,2)" json:"tax"`
	Total      float64 `gorm:"type:decimal(18,2)" json:"total"`
	AmountPaid float64 `gorm:"type:decimal(18,2)" json:"amount_paid"`
	BalanceDue float64 `gorm:"type:decimal(18,2)" json:"balance_due"`

	Status   Status     `gorm:"type:enum('draft','sent','paid','overdue','cancelled');default:'draft'" json:"status"`
	IssuedAt *time.Time `json:"issued_at,omitempty"`
	DueDate  *time.Time `gorm:"type:date" json:"due_date,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Loaded explicitly by the repository, not a gorm association.
	Items []Item `gorm:"-" json:"items,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

// FullyPaid reports whether the running balance is settled (cent tolerance).
func (inv *Invoice) FullyPaid() bool { return inv.BalanceDue <= moneyEps }

type Item struct {
	ID           uint64  `gorm:"primaryKey;column:id" json:"-"`
	InvoiceRowID uint64  `gorm:"column:invoice_id;not null;index" json:"-"`
	Position     int     `gorm:"not null" json:"position"`
	Description  string  `gorm:"size:255" json:"description"`
	Amount       float64 `gorm:"type:decimal(18,2)" json:"amount"`
	TaxRate      float64 `gorm:"type:decimal(6,2)" json:"tax_rate"`
	Period       string  `gorm:"size:7" json:"period,omitempty"`
}

func (Item) TableName() string { return "invoice_items" }

// PaymentRecord is one entry in the append-only invoice payment history.
type PaymentRecord struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	InvoiceRowID  uint64    `gorm:"column:invoice_id;not null;index" json:"-"`
	PaymentRowID  uint64    `gorm:"column:payment_id;not null;index" json:"-"`
	ReceiptNumber string    `gorm:"size:20" json:"receipt_number"`
	Amount        float64   `gorm:"type:decimal(18,2)" json:"amount"`
	PaidAt        time.Time `json:"paid_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentRecord) TableName() string { return "invoice_payments" }

func round2(f float64) float64 { return math.Round(f*100) / 100 }

// ComputeTotals derives subtotal, tax and total from the line items:
// tax = Σ amount·taxRate/100, total = subtotal + tax, all rounded to cents.
func ComputeTotals(items []Item) (subtotal, tax, total float64) {
	for _, it := range items {
		subtotal += it.Amount
		tax += it.Amount * it.TaxRate / 100
	}
	subtotal = round2(subtotal)
	tax = round2(tax)
	total = round2(subtotal + tax)
	return subtotal, tax, total
}
