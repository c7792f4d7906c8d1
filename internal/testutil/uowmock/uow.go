package uowmock

import (
	"context"
	"errors"

	"rentbook-backend/internal/domain/invoice"
	"rentbook-backend/internal/domain/lease"
	"rentbook-backend/internal/domain/payment"
	"rentbook-backend/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return
// errUnimplemented. Passthrough builds a mock whose transactions are plain
// function calls over a fixed repo set, which covers most usecase tests.
type UoW struct {
	WithinTxFn           func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLeaseTxFn      func(ctx context.Context, leaseID string, fn func(r uow.Repos, l *lease.Lease) error) error
	WithinPaymentTxFn    func(ctx context.Context, receiptNumber string, fn func(r uow.Repos, p *payment.Payment) error) error
	WithinPaymentRefTxFn func(ctx context.Context, referenceNumber string, fn func(r uow.Repos, p *payment.Payment) error) error
	WithinInvoiceTxFn    func(ctx context.Context, invoiceNumber string, fn func(r uow.Repos, inv *invoice.Invoice) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough wires every transactional method to run its body directly
// against r, resolving the locked entity through the same repos.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(uow.Repos) error) error {
			return fn(r)
		},
		WithinLeaseTxFn: func(ctx context.Context, leaseID string, fn func(uow.Repos, *lease.Lease) error) error {
			l, err := r.Leases.GetByLeaseID(ctx, leaseID)
			if err != nil {
				return err
			}
			return fn(r, l)
		},
		WithinPaymentTxFn: func(ctx context.Context, receiptNumber string, fn func(uow.Repos, *payment.Payment) error) error {
			p, err := r.Payments.GetByReceipt(ctx, receiptNumber)
			if err != nil {
				return err
			}
			return fn(r, p)
		},
		WithinPaymentRefTxFn: func(ctx context.Context, referenceNumber string, fn func(uow.Repos, *payment.Payment) error) error {
			p, err := r.Payments.GetByReference(ctx, referenceNumber)
			if err != nil {
				return err
			}
			return fn(r, p)
		},
		WithinInvoiceTxFn: func(ctx context.Context, invoiceNumber string, fn func(uow.Repos, *invoice.Invoice) error) error {
			inv, err := r.Invoices.GetByNumber(ctx, invoiceNumber)
			if err != nil {
				return err
			}
			return fn(r, inv)
		},
	}
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinLeaseTx(ctx context.Context, leaseID string, fn func(r uow.Repos, l *lease.Lease) error) error {
	if m.WithinLeaseTxFn != nil {
		return m.WithinLeaseTxFn(ctx, leaseID, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinPaymentTx(ctx context.Context, receiptNumber string, fn func(r uow.Repos, p *payment.Payment) error) error {
	if m.WithinPaymentTxFn != nil {
		return m.WithinPaymentTxFn(ctx, receiptNumber, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinPaymentRefTx(ctx context.Context, referenceNumber string, fn func(r uow.Repos, p *payment.Payment) error) error {
	if m.WithinPaymentRefTxFn != nil {
		return m.WithinPaymentRefTxFn(ctx, referenceNumber, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinInvoiceTx(ctx context.Context, invoiceNumber string, fn func(r uow.Repos, inv *invoice.Invoice) error) error {
	if m.WithinInvoiceTxFn != nil {
		return m.WithinInvoiceTxFn(ctx, invoiceNumber, fn)
	}
	return errUnimplemented
}
