package leasemock

import (
	"context"

	domain "rentbook-backend/internal/domain/lease"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only assign the fields a test needs; nil getters return context.Canceled
// and nil writers are no-ops.
type Repo struct {
	CreateFn                func(ctx context.Context, l *domain.Lease) error
	GetByLeaseIDFn          func(ctx context.Context, leaseID string) (*domain.Lease, error)
	GetByLeaseIDForUpdateFn func(ctx context.Context, leaseID string) (*domain.Lease, error)
	GetByRowIDFn            func(ctx context.Context, rowID uint64) (*domain.Lease, error)
	SaveFn                  func(ctx context.Context, l *domain.Lease) error
	AppendStatusEventFn     func(ctx context.Context, ev *domain.StatusEvent) error
	ListStatusEventsFn      func(ctx context.Context, leaseRowID uint64) ([]domain.StatusEvent, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, l *domain.Lease) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLeaseID(ctx context.Context, leaseID string) (*domain.Lease, error) {
	if m.GetByLeaseIDFn != nil {
		return m.GetByLeaseIDFn(ctx, leaseID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLeaseIDForUpdate(ctx context.Context, leaseID string) (*domain.Lease, error) {
	if m.GetByLeaseIDForUpdateFn != nil {
		return m.GetByLeaseIDForUpdateFn(ctx, leaseID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByRowID(ctx context.Context, rowID uint64) (*domain.Lease, error) {
	if m.GetByRowIDFn != nil {
		return m.GetByRowIDFn(ctx, rowID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Lease) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) AppendStatusEvent(ctx context.Context, ev *domain.StatusEvent) error {
	if m.AppendStatusEventFn != nil {
		return m.AppendStatusEventFn(ctx, ev)
	}
	return nil
}

func (m *Repo) ListStatusEvents(ctx context.Context, leaseRowID uint64) ([]domain.StatusEvent, error) {
	if m.ListStatusEventsFn != nil {
		return m.ListStatusEventsFn(ctx, leaseRowID)
	}
	return nil, nil
}
