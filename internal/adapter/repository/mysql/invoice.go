package mysql

import (
	"context"
	"errors"

	invoiceDomain "rentbook-backend/internal/domain/invoice"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository { return &InvoiceRepository{db: db} }

func (r *InvoiceRepository) CreateWithItems(ctx context.Context, inv *invoiceDomain.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		for i := range inv.Items {
			inv.Items[i].InvoiceRowID = inv.ID
			inv.Items[i].Position = i + 1
			if err := tx.Create(&inv.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *InvoiceRepository) Save(ctx context.Context, inv *invoiceDomain.Invoice) error {
	// Items are immutable after creation; only the invoice row is saved.
	return r.db.WithContext(ctx).Omit("Items").Save(inv).Error
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, invoiceNumber string) (*invoiceDomain.Invoice, error) {
	var out invoiceDomain.Invoice
	res := r.db.WithContext(ctx).Where("invoice_number = ?", invoiceNumber).First(&out)
	return &out, translateNotFound(res.Error, invoiceDomain.ErrNotFound)
}

func (r *InvoiceRepository) GetByNumberForUpdate(ctx context.Context, invoiceNumber string) (*invoiceDomain.Invoice, error) {
	var out invoiceDomain.Invoice
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("invoice_number = ?", invoiceNumber).
		First(&out)
	return &out, translateNotFound(res.Error, invoiceDomain.ErrNotFound)
}

func (r *InvoiceRepository) GetByRowID(ctx context.Context, rowID uint64) (*invoiceDomain.Invoice, error) {
	var out invoiceDomain.Invoice
	res := r.db.WithContext(ctx).Where("id = ?", rowID).First(&out)
	return &out, translateNotFound(res.Error, invoiceDomain.ErrNotFound)
}

func (r *InvoiceRepository) GetByRowIDForUpdate(ctx context.Context, rowID uint64) (*invoiceDomain.Invoice, error) {
	var out invoiceDomain.Invoice
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", rowID).
		First(&out)
	return &out, translateNotFound(res.Error, invoiceDomain.ErrNotFound)
}

func (r *InvoiceRepository) GetByLeasePeriod(ctx context.Context, leaseRowID uint64, period string) (*invoiceDomain.Invoice, error) {
	var out invoiceDomain.Invoice
	res := r.db.WithContext(ctx).
		Where("lease_id = ? AND period = ?", leaseRowID, period).
		First(&out)
	return &out, translateNotFound(res.Error, invoiceDomain.ErrNotFound)
}

func (r *InvoiceRepository) ListItems(ctx context.Context, invoiceRowID uint64) ([]invoiceDomain.Item, error) {
	var out []invoiceDomain.Item
	res := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceRowID).
		Order("position ASC").
		Find(&out)
	return out, res.Error
}

func (r *InvoiceRepository) AppendPaymentRecord(ctx context.Context, rec *invoiceDomain.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *InvoiceRepository) ListPaymentRecords(ctx context.Context, invoiceRowID uint64) ([]invoiceDomain.PaymentRecord, error) {
	var out []invoiceDomain.PaymentRecord
	res := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceRowID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *InvoiceRepository) HasPaymentRecord(ctx context.Context, invoiceRowID, paymentRowID uint64) (bool, error) {
	var out invoiceDomain.PaymentRecord
	res := r.db.WithContext(ctx).
		Where("invoice_id = ? AND payment_id = ?", invoiceRowID, paymentRowID).
		First(&out)
	if res.Error == nil {
		return true, nil
	}
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, res.Error
}
