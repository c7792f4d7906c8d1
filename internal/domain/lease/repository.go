package lease

import "context"

type Repository interface {
	Create(ctx context.Context, l *Lease) error
	GetByLeaseID(ctx context.Context, leaseID string) (*Lease, error)
	GetByLeaseIDForUpdate(ctx context.Context, leaseID string) (*Lease, error)
	GetByRowID(ctx context.Context, rowID uint64) (*Lease, error)
	Save(ctx context.Context, l *Lease) error

	// Status history is append-only; there is no update or delete.
	AppendStatusEvent(ctx context.Context, ev *StatusEvent) error
	ListStatusEvents(ctx context.Context, leaseRowID uint64) ([]StatusEvent, error)
}
