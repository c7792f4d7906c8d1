package paymentmock

import (
	"context"

	domain "rentbook-backend/internal/domain/payment"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                   func(ctx context.Context, p *domain.Payment) error
	GetByReceiptFn             func(ctx context.Context, receiptNumber string) (*domain.Payment, error)
	GetByReceiptForUpdateFn    func(ctx context.Context, receiptNumber string) (*domain.Payment, error)
	GetByReferenceFn           func(ctx context.Context, referenceNumber string) (*domain.Payment, error)
	GetByReferenceForUpdateFn  func(ctx context.Context, referenceNumber string) (*domain.Payment, error)
	GetPendingGatewayPaymentFn func(ctx context.Context, tenantID string, leaseRowID uint64) (*domain.Payment, error)
	SaveFn                     func(ctx context.Context, p *domain.Payment) error
	AppendApprovalEventFn      func(ctx context.Context, ev *domain.ApprovalEvent) error
	ListApprovalEventsFn       func(ctx context.Context, paymentRowID uint64) ([]domain.ApprovalEvent, error)
	RecordGatewayEventFn       func(ctx context.Context, ev *domain.GatewayEvent) error
	HasGatewayEventFn          func(ctx context.Context, paymentRowID uint64, eventID string) (bool, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, p *domain.Payment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByReceipt(ctx context.Context, receiptNumber string) (*domain.Payment, error) {
	if m.GetByReceiptFn != nil {
		return m.GetByReceiptFn(ctx, receiptNumber)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByReceiptForUpdate(ctx context.Context, receiptNumber string) (*domain.Payment, error) {
	if m.GetByReceiptForUpdateFn != nil {
		return m.GetByReceiptForUpdateFn(ctx, receiptNumber)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByReference(ctx context.Context, referenceNumber string) (*domain.Payment, error) {
	if m.GetByReferenceFn != nil {
		return m.GetByReferenceFn(ctx, referenceNumber)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByReferenceForUpdate(ctx context.Context, referenceNumber string) (*domain.Payment, error) {
	if m.GetByReferenceForUpdateFn != nil {
		return m.GetByReferenceForUpdateFn(ctx, referenceNumber)
	}
	return nil, context.Canceled
}

func (m *Repo) GetPendingGatewayPayment(ctx context.Context, tenantID string, leaseRowID uint64) (*domain.Payment, error) {
	if m.GetPendingGatewayPaymentFn != nil {
		return m.GetPendingGatewayPaymentFn(ctx, tenantID, leaseRowID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, p *domain.Payment) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) AppendApprovalEvent(ctx context.Context, ev *domain.ApprovalEvent) error {
	if m.AppendApprovalEventFn != nil {
		return m.AppendApprovalEventFn(ctx, ev)
	}
	return nil
}

func (m *Repo) ListApprovalEvents(ctx context.Context, paymentRowID uint64) ([]domain.ApprovalEvent, error) {
	if m.ListApprovalEventsFn != nil {
		return m.ListApprovalEventsFn(ctx, paymentRowID)
	}
	return nil, nil
}

func (m *Repo) RecordGatewayEvent(ctx context.Context, ev *domain.GatewayEvent) error {
	if m.RecordGatewayEventFn != nil {
		return m.RecordGatewayEventFn(ctx, ev)
	}
	return nil
}

func (m *Repo) HasGatewayEvent(ctx context.Context, paymentRowID uint64, eventID string) (bool, error) {
	if m.HasGatewayEventFn != nil {
		return m.HasGatewayEventFn(ctx, paymentRowID, eventID)
	}
	return false, nil
}
