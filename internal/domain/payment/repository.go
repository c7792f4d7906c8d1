package payment

import "context"

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByReceipt(ctx context.Context, receiptNumber string) (*Payment, error)
	GetByReceiptForUpdate(ctx context.Context, receiptNumber string) (*Payment, error)
	GetByReference(ctx context.Context, referenceNumber string) (*Payment, error)
	GetByReferenceForUpdate(ctx context.Context, referenceNumber string) (*Payment, error)
	// Most recent pending mobile-money payment for the tenant+lease pair,
	// used by the duplicate-submission guard.
	GetPendingGatewayPayment(ctx context.Context, tenantID string, leaseRowID uint64) (*Payment, error)
	Save(ctx context.Context, p *Payment) error

	AppendApprovalEvent(ctx context.Context, ev *ApprovalEvent) error
	ListApprovalEvents(ctx context.Context, paymentRowID uint64) ([]ApprovalEvent, error)

	// RecordGatewayEvent inserts the audit row; the unique index rejects
	// replays of the same (payment, event) pair.
	RecordGatewayEvent(ctx context.Context, ev *GatewayEvent) error
	HasGatewayEvent(ctx context.Context, paymentRowID uint64, eventID string) (bool, error)
}
