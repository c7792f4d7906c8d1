package uow

import (
	"context"

	"rentbook-backend/internal/domain/invoice"
	"rentbook-backend/internal/domain/lease"
	"rentbook-backend/internal/domain/payment"
)

type Repos struct {
	Leases   lease.Repository
	Payments payment.Repository
	Invoices invoice.Repository
}

// UnitOfWork runs a function against transaction-bound repositories. The
// entity-scoped variants lock the named row up-front so every status
// read-modify-write on a payment, invoice or lease is single-writer.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error

	WithinLeaseTx(ctx context.Context, leaseID string, fn func(r Repos, l *lease.Lease) error) error
	WithinPaymentTx(ctx context.Context, receiptNumber string, fn func(r Repos, p *payment.Payment) error) error
	// WithinPaymentRefTx locks by gateway reference number instead of receipt.
	WithinPaymentRefTx(ctx context.Context, referenceNumber string, fn func(r Repos, p *payment.Payment) error) error
	WithinInvoiceTx(ctx context.Context, invoiceNumber string, fn func(r Repos, inv *invoice.Invoice) error) error
}
