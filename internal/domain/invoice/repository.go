package invoice

import "context"

type Repository interface {
	// CreateWithItems persists the invoice and its ordered line items.
	CreateWithItems(ctx context.Context, inv *Invoice) error
	GetByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	GetByNumberForUpdate(ctx context.Context, invoiceNumber string) (*Invoice, error)
	GetByRowID(ctx context.Context, rowID uint64) (*Invoice, error)
	GetByRowIDForUpdate(ctx context.Context, rowID uint64) (*Invoice, error)
	// GetByLeasePeriod finds a generated rent invoice for one lease+period.
	GetByLeasePeriod(ctx context.Context, leaseRowID uint64, period string) (*Invoice, error)
	Save(ctx context.Context, inv *Invoice) error

	ListItems(ctx context.Context, invoiceRowID uint64) ([]Item, error)

	AppendPaymentRecord(ctx context.Context, rec *PaymentRecord) error
	ListPaymentRecords(ctx context.Context, invoiceRowID uint64) ([]PaymentRecord, error)
	HasPaymentRecord(ctx context.Context, invoiceRowID, paymentRowID uint64) (bool, error)
}
