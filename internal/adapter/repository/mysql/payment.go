package mysql

import (
	"context"
	"errors"

	paymentDomain "rentbook-backend/internal/domain/payment"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) Save(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PaymentRepository) GetByReceipt(ctx context.Context, receiptNumber string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).Where("receipt_number = ?", receiptNumber).First(&out)
	return &out, translateNotFound(res.Error, paymentDomain.ErrNotFound)
}

func (r *PaymentRepository) GetByReceiptForUpdate(ctx context.Context, receiptNumber string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("receipt_number = ?", receiptNumber).
		First(&out)
	return &out, translateNotFound(res.Error, paymentDomain.ErrNotFound)
}

func (r *PaymentRepository) GetByReference(ctx context.Context, referenceNumber string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).Where("reference_number = ?", referenceNumber).First(&out)
	return &out, translateNotFound(res.Error, paymentDomain.ErrNotFound)
}

func (r *PaymentRepository) GetByReferenceForUpdate(ctx context.Context, referenceNumber string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reference_number = ?", referenceNumber).
		First(&out)
	return &out, translateNotFound(res.Error, paymentDomain.ErrNotFound)
}

func (r *PaymentRepository) GetPendingGatewayPayment(ctx context.Context, tenantID string, leaseRowID uint64) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lease_id = ? AND method = ? AND status = ?",
			tenantID, leaseRowID, paymentDomain.MethodMobileMoney, paymentDomain.StatusPending).
		Order("created_at DESC, id DESC").
		First(&out)
	return &out, translateNotFound(res.Error, paymentDomain.ErrNotFound)
}

func (r *PaymentRepository) AppendApprovalEvent(ctx context.Context, ev *paymentDomain.ApprovalEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *PaymentRepository) ListApprovalEvents(ctx context.Context, paymentRowID uint64) ([]paymentDomain.ApprovalEvent, error) {
	var out []paymentDomain.ApprovalEvent
	res := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentRowID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *PaymentRepository) RecordGatewayEvent(ctx context.Context, ev *paymentDomain.GatewayEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *PaymentRepository) HasGatewayEvent(ctx context.Context, paymentRowID uint64, eventID string) (bool, error) {
	var out paymentDomain.GatewayEvent
	res := r.db.WithContext(ctx).
		Where("payment_id = ? AND event_id = ?", paymentRowID, eventID).
		First(&out)
	if res.Error == nil {
		return true, nil
	}
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, res.Error
}
