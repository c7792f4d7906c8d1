package mysql

import (
	"context"

	"rentbook-backend/internal/domain/invoice"
	"rentbook-backend/internal/domain/lease"
	"rentbook-backend/internal/domain/payment"
	"rentbook-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Leases:   &LeaseRepository{db: tx},
		Payments: &PaymentRepository{db: tx},
		Invoices: &InvoiceRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinLeaseTx(ctx context.Context, leaseID string, fn func(r uow.Repos, l *lease.Lease) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the lease row up-front to prevent races
		l, err := r.Leases.GetByLeaseIDForUpdate(ctx, leaseID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func (u *GormUoW) WithinPaymentTx(ctx context.Context, receiptNumber string, fn func(r uow.Repos, p *payment.Payment) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		p, err := r.Payments.GetByReceiptForUpdate(ctx, receiptNumber)
		if err != nil {
			return err
		}
		return fn(r, p)
	})
}

func (u *GormUoW) WithinPaymentRefTx(ctx context.Context, referenceNumber string, fn func(r uow.Repos, p *payment.Payment) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		p, err := r.Payments.GetByReferenceForUpdate(ctx, referenceNumber)
		if err != nil {
			return err
		}
		return fn(r, p)
	})
}

func (u *GormUoW) WithinInvoiceTx(ctx context.Context, invoiceNumber string, fn func(r uow.Repos, inv *invoice.Invoice) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		inv, err := r.Invoices.GetByNumberForUpdate(ctx, invoiceNumber)
		if err != nil {
			return err
		}
		return fn(r, inv)
	})
}
