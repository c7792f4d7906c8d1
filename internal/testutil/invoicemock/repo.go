package invoicemock

import (
	"context"

	domain "rentbook-backend/internal/domain/invoice"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateWithItemsFn      func(ctx context.Context, inv *domain.Invoice) error
	GetByNumberFn          func(ctx context.Context, invoiceNumber string) (*domain.Invoice, error)
	GetByNumberForUpdateFn func(ctx context.Context, invoiceNumber string) (*domain.Invoice, error)
	GetByRowIDFn           func(ctx context.Context, rowID uint64) (*domain.Invoice, error)
	GetByRowIDForUpdateFn  func(ctx context.Context, rowID uint64) (*domain.Invoice, error)
	GetByLeasePeriodFn     func(ctx context.Context, leaseRowID uint64, period string) (*domain.Invoice, error)
	SaveFn                 func(ctx context.Context, inv *domain.Invoice) error
	ListItemsFn            func(ctx context.Context, invoiceRowID uint64) ([]domain.Item, error)
	AppendPaymentRecordFn  func(ctx context.Context, rec *domain.PaymentRecord) error
	ListPaymentRecordsFn   func(ctx context.Context, invoiceRowID uint64) ([]domain.PaymentRecord, error)
	HasPaymentRecordFn     func(ctx context.Context, invoiceRowID, paymentRowID uint64) (bool, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) CreateWithItems(ctx context.Context, inv *domain.Invoice) error {
	if m.CreateWithItemsFn != nil {
		return m.CreateWithItemsFn(ctx, inv)
	}
	return nil
}

func (m *Repo) GetByNumber(ctx context.Context, invoiceNumber string) (*domain.Invoice, error) {
	if m.GetByNumberFn != nil {
		return m.GetByNumberFn(ctx, invoiceNumber)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByNumberForUpdate(ctx context.Context, invoiceNumber string) (*domain.Invoice, error) {
	if m.GetByNumberForUpdateFn != nil {
		return m.GetByNumberForUpdateFn(ctx, invoiceNumber)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByRowID(ctx context.Context, rowID uint64) (*domain.Invoice, error) {
	if m.GetByRowIDFn != nil {
		return m.GetByRowIDFn(ctx, rowID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByRowIDForUpdate(ctx context.Context, rowID uint64) (*domain.Invoice, error) {
	if m.GetByRowIDForUpdateFn != nil {
		return m.GetByRowIDForUpdateFn(ctx, rowID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLeasePeriod(ctx context.Context, leaseRowID uint64, period string) (*domain.Invoice, error) {
	if m.GetByLeasePeriodFn != nil {
		return m.GetByLeasePeriodFn(ctx, leaseRowID, period)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, inv *domain.Invoice) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, inv)
	}
	return nil
}

func (m *Repo) ListItems(ctx context.Context, invoiceRowID uint64) ([]domain.Item, error) {
	if m.ListItemsFn != nil {
		return m.ListItemsFn(ctx, invoiceRowID)
	}
	return nil, nil
}

func (m *Repo) AppendPaymentRecord(ctx context.Context, rec *domain.PaymentRecord) error {
	if m.AppendPaymentRecordFn != nil {
		return m.AppendPaymentRecordFn(ctx, rec)
	}
	return nil
}

func (m *Repo) ListPaymentRecords(ctx context.Context, invoiceRowID uint64) ([]domain.PaymentRecord, error) {
	if m.ListPaymentRecordsFn != nil {
		return m.ListPaymentRecordsFn(ctx, invoiceRowID)
	}
	return nil, nil
}

func (m *Repo) HasPaymentRecord(ctx context.Context, invoiceRowID, paymentRowID uint64) (bool, error) {
	if m.HasPaymentRecordFn != nil {
		return m.HasPaymentRecordFn(ctx, invoiceRowID, paymentRowID)
	}
	return false, nil
}
