package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	leaseDomain "rentbook-backend/internal/domain/lease"
	"rentbook-backend/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schemas only for tests (no ENUM columns) ---

type leaseSQLite struct {
	ID              uint64         `gorm:"primaryKey;column:id"`
	LeaseID         string         `gorm:"size:32;uniqueIndex;column:lease_id"`
	PropertyID      string         `gorm:"size:32;column:property_id"`
	TenantID        string         `gorm:"size:32;column:tenant_id"`
	LandlordID      string         `gorm:"size:32;column:landlord_id"`
	StartDate       time.Time      `gorm:"column:start_date"`
	EndDate         time.Time      `gorm:"column:end_date"`
	MonthlyRent     float64        `gorm:"column:monthly_rent"`
	SecurityDeposit float64        `gorm:"column:security_deposit"`
	PaymentDueDay   int            `gorm:"column:payment_due_day"`
	Status          string         `gorm:"type:text;column:status"` // ← no enum
	BalanceDue      float64        `gorm:"column:balance_due"`
	TotalPaid       float64        `gorm:"column:total_paid"`
	NextPaymentDue  *time.Time     `gorm:"column:next_payment_due"`
	ActivatedAt     *time.Time     `gorm:"column:activated_at"`
	Signed          bool           `gorm:"column:signed"`
	SignedAt        *time.Time     `gorm:"column:signed_at"`
	SignerID        string         `gorm:"column:signer_id"`
	AcceptedTerms   string         `gorm:"column:accepted_terms"`
	SignatureOrigin string         `gorm:"column:signature_origin"`
	StatusUpdatedAt time.Time      `gorm:"column:status_updated_at"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (leaseSQLite) TableName() string { return "leases" }

type leaseStatusEventSQLite struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	LeaseRowID uint64    `gorm:"column:lease_id"`
	FromStatus string    `gorm:"column:from_status"`
	ToStatus   string    `gorm:"column:to_status"`
	Actor      string    `gorm:"column:actor"`
	Reason     string    `gorm:"column:reason"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (leaseStatusEventSQLite) TableName() string { return "lease_status_events" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the
// sqlite-safe schemas. TranslateError matches the production config so
// duplicate-key checks behave the same.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&leaseSQLite{}, &leaseStatusEventSQLite{},
		&paymentSQLite{}, &approvalEventSQLite{}, &gatewayEventSQLite{},
		&invoiceSQLite{}, &invoiceItemSQLite{}, &invoicePaymentSQLite{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeLease(leaseID string) *leaseDomain.Lease {
	return &leaseDomain.Lease{
		LeaseID:         leaseID,
		PropertyID:      id.NewID32(),
		TenantID:        id.NewID32(),
		LandlordID:      id.NewID32(),
		StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent:     1_200_000.00,
		SecurityDeposit: 1_200_000.00,
		PaymentDueDay:   5,
		Status:          leaseDomain.StatusDraft,
		StatusUpdatedAt: time.Now().UTC(),
	}
}

func TestLeaseCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewLeaseRepository(db)
	ctx := context.Background()

	leaseID := id.NewID32()
	l := makeLease(leaseID)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByLeaseID(ctx, leaseID)
	if err != nil {
		t.Fatalf("GetByLeaseID: %v", err)
	}
	if got.LeaseID != leaseID || got.Status != leaseDomain.StatusDraft {
		t.Errorf("unexpected lease: %+v", got)
	}

	byRow, err := repo.GetByRowID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByRowID: %v", err)
	}
	if byRow.LeaseID != leaseID {
		t.Errorf("GetByRowID mismatch: %+v", byRow)
	}
}

func TestLeaseSaveUpdates(t *testing.T) {
	db := openTestDB(t)
	repo := NewLeaseRepository(db)
	ctx := context.Background()

	leaseID := id.NewID32()
	l := makeLease(leaseID)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	l.Status = leaseDomain.StatusPendingSignature
	l.StatusUpdatedAt = time.Now().UTC()
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByLeaseID(ctx, leaseID)
	if err != nil {
		t.Fatalf("GetByLeaseID: %v", err)
	}
	if got.Status != leaseDomain.StatusPendingSignature {
		t.Errorf("status not updated, got %s", got.Status)
	}
}

func TestLeaseGet_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewLeaseRepository(db)

	_, err := repo.GetByLeaseID(context.Background(), id.NewID32())
	if !errors.Is(err, leaseDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeaseStatusEvents_AppendOnlyOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewLeaseRepository(db)
	ctx := context.Background()

	l := makeLease(id.NewID32())
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	moves := []struct{ from, to string }{
		{"", "draft"},
		{"draft", "pending_signature"},
		{"pending_signature", "signed"},
	}
	for _, mv := range moves {
		if err := repo.AppendStatusEvent(ctx, &leaseDomain.StatusEvent{
			LeaseRowID: l.ID,
			FromStatus: mv.from,
			ToStatus:   mv.to,
			Actor:      l.LandlordID,
		}); err != nil {
			t.Fatalf("AppendStatusEvent: %v", err)
		}
	}

	events, err := repo.ListStatusEvents(ctx, l.ID)
	if err != nil {
		t.Fatalf("ListStatusEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("want 3 events, got %d", len(events))
	}
	for i, mv := range moves {
		if events[i].ToStatus != mv.to {
			t.Errorf("event %d: want %s, got %s", i, mv.to, events[i].ToStatus)
		}
	}
}
