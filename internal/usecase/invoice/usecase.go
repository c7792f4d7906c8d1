package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "rentbook-backend/internal/domain/invoice"
	leaseDomain "rentbook-backend/internal/domain/lease"
	paymentDomain "rentbook-backend/internal/domain/payment"
	"rentbook-backend/internal/domain/uow"
	"rentbook-backend/internal/notify"
	"rentbook-backend/pkg/id"

	"gorm.io/gorm"
)

const (
	maxNumberAttempts = 5
	moneyEps          = 0.005
)

type Usecase struct {
	repo     domain.Repository
	leases   leaseDomain.Repository
	uow      uow.UnitOfWork
	notifier notify.Dispatcher
}

func NewUsecase(repo domain.Repository, leases leaseDomain.Repository, tx uow.UnitOfWork, notifier notify.Dispatcher) *Usecase {
	return &Usecase{repo: repo, leases: leases, uow: tx, notifier: notifier}
}

// CreateDraft builds a draft invoice from ordered line items.
func (u *Usecase) CreateDraft(ctx context.Context, in CreateInvoiceInput) (*InvoiceDTO, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var leaseRowID *uint64
	if in.LeaseID != "" {
		l, err := u.leases.GetByLeaseID(ctx, in.LeaseID)
		if err != nil {
			return nil, err
		}
		leaseRowID = &l.ID
	}

	items := make([]domain.Item, len(in.Items))
	for i, it := range in.Items {
		items[i] = domain.Item{
			Position:    i + 1,
			Description: it.Description,
			Amount:      it.Amount,
			TaxRate:     it.TaxRate,
			Period:      it.Period,
		}
	}
	subtotal, tax, total := domain.ComputeTotals(items)

	inv := &domain.Invoice{
		TenantID:   in.TenantID,
		PropertyID: in.PropertyID,
		LeaseRowID: leaseRowID,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		AmountPaid: 0,
		BalanceDue: total,
		Status:     domain.StatusDraft,
		DueDate:    in.DueDate,
		Items:      items,
	}
	if err := u.createWithNumber(ctx, inv); err != nil {
		return nil, err
	}
	return toDTO(inv), nil
}

func (u *Usecase) createWithNumber(ctx context.Context, inv *domain.Invoice) error {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		inv.InvoiceNumber = id.NewInvoiceNumber(time.Now())
		err := u.repo.CreateWithItems(ctx, inv)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return domain.ErrNumberExhausted
}

func (u *Usecase) Get(ctx context.Context, invoiceNumber string) (*InvoiceDTO, error) {
	inv, err := u.repo.GetByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	items, err := u.repo.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return toDTO(inv), nil
}

// Send issues a draft invoice to the tenant.
func (u *Usecase) Send(ctx context.Context, invoiceNumber string, dueDate time.Time) (*InvoiceDTO, error) {
	var dto *InvoiceDTO
	err := u.uow.WithinInvoiceTx(ctx, invoiceNumber, func(r uow.Repos, inv *domain.Invoice) error {
		if inv.Status != domain.StatusDraft {
			return fmt.Errorf("%w: send only from draft, got %s", domain.ErrInvalidTransition, inv.Status)
		}
		now := time.Now().UTC()
		inv.Status = domain.StatusSent
		inv.IssuedAt = &now
		if !dueDate.IsZero() {
			d := dueDate.UTC()
			inv.DueDate = &d
		}
		if err := r.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		dto = toDTO(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// RecordPayment applies a counted payment against the invoice: increments
// amountPaid, recomputes balanceDue, appends to the payment history, and
// flips to paid when settled. Reapplying the same payment is a no-op.
func (u *Usecase) RecordPayment(ctx context.Context, invoiceRowID uint64, p *paymentDomain.Payment) (*InvoiceDTO, error) {
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", domain.ErrValidation)
	}

	var dto *InvoiceDTO
	var becamePaid bool
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		inv, err := r.Invoices.GetByRowIDForUpdate(ctx, invoiceRowID)
		if err != nil {
			return err
		}
		applied, err := r.Invoices.HasPaymentRecord(ctx, inv.ID, p.ID)
		if err != nil {
			return err
		}
		if applied {
			dto = toDTO(inv)
			return nil
		}
		switch inv.Status {
		case domain.StatusCancelled:
			return fmt.Errorf("%w: invoice is cancelled", domain.ErrInvalidTransition)
		case domain.StatusPaid:
			return fmt.Errorf("%w: invoice is already paid", domain.ErrInvalidTransition)
		case domain.StatusDraft:
			return fmt.Errorf("%w: invoice has not been sent", domain.ErrInvalidTransition)
		}

		inv.AmountPaid += p.Amount
		inv.BalanceDue = inv.Total - inv.AmountPaid
		if inv.BalanceDue < 0 {
			inv.BalanceDue = 0
		}
		if inv.FullyPaid() {
			inv.Status = domain.StatusPaid
			becamePaid = true
		}
		if err := r.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		if err := r.Invoices.AppendPaymentRecord(ctx, &domain.PaymentRecord{
			InvoiceRowID:  inv.ID,
			PaymentRowID:  p.ID,
			ReceiptNumber: p.ReceiptNumber,
			Amount:        p.Amount,
			PaidAt:        time.Now().UTC(),
		}); err != nil {
			return err
		}
		dto = toDTO(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if becamePaid {
		notify.FireAndForget(ctx, u.notifier, notify.Event{
			Kind:      notify.KindInvoicePaid,
			Recipient: dto.TenantID,
			Amount:    dto.Total,
			Date:      time.Now().UTC(),
			EntityID:  dto.InvoiceNumber,
		})
	}
	return dto, nil
}

// MarkOverdue transitions sent → overdue once the due date has passed with a
// balance outstanding. Idempotent: an already-overdue invoice is a no-op.
func (u *Usecase) MarkOverdue(ctx context.Context, invoiceNumber string) (*InvoiceDTO, error) {
	var dto *InvoiceDTO
	var becameOverdue bool
	err := u.uow.WithinInvoiceTx(ctx, invoiceNumber, func(r uow.Repos, inv *domain.Invoice) error {
		if inv.Status == domain.StatusOverdue || inv.Status.Terminal() {
			dto = toDTO(inv)
			return nil
		}
		now := time.Now().UTC()
		if inv.Status != domain.StatusSent || inv.DueDate == nil || !now.After(*inv.DueDate) || inv.BalanceDue <= moneyEps {
			dto = toDTO(inv)
			return nil
		}
		inv.Status = domain.StatusOverdue
		if err := r.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		becameOverdue = true
		dto = toDTO(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if becameOverdue {
		notify.FireAndForget(ctx, u.notifier, notify.Event{
			Kind:      notify.KindInvoiceOverdue,
			Recipient: dto.TenantID,
			Amount:    dto.BalanceDue,
			Date:      time.Now().UTC(),
			EntityID:  dto.InvoiceNumber,
		})
	}
	return dto, nil
}

// Cancel voids an unpaid invoice.
func (u *Usecase) Cancel(ctx context.Context, invoiceNumber string) (*InvoiceDTO, error) {
	var dto *InvoiceDTO
	err := u.uow.WithinInvoiceTx(ctx, invoiceNumber, func(r uow.Repos, inv *domain.Invoice) error {
		if inv.Status.Terminal() {
			return fmt.Errorf("%w: invoice is %s", domain.ErrInvalidTransition, inv.Status)
		}
		inv.Status = domain.StatusCancelled
		if err := r.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		dto = toDTO(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// GenerateForLease builds the rent invoice for one lease+period ("2006-01").
// Already-generated periods are returned as-is, so the monthly scheduler can
// rerun safely.
func (u *Usecase) GenerateForLease(ctx context.Context, leaseID, period string) (*InvoiceDTO, error) {
	if _, err := time.Parse("2006-01", period); err != nil {
		return nil, fmt.Errorf("%w: period must be YYYY-MM", domain.ErrValidation)
	}

	l, err := u.leases.GetByLeaseID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if l.Status != leaseDomain.StatusActive {
		return nil, fmt.Errorf("%w: lease %s is not active", domain.ErrInvalidTransition, leaseID)
	}

	if existing, err := u.repo.GetByLeasePeriod(ctx, l.ID, period); err == nil {
		items, err := u.repo.ListItems(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		existing.Items = items
		return toDTO(existing), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	monthStart, _ := time.Parse("2006-01", period)
	due := dueDateInMonth(monthStart, l.PaymentDueDay)
	now := time.Now().UTC()

	items := []domain.Item{{
		Position:    1,
		Description: fmt.Sprintf("Monthly rent %s", period),
		Amount:      l.MonthlyRent,
		TaxRate:     0,
		Period:      period,
	}}
	subtotal, tax, total := domain.ComputeTotals(items)

	inv := &domain.Invoice{
		TenantID:   l.TenantID,
		PropertyID: l.PropertyID,
		LeaseRowID: &l.ID,
		Period:     period,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		BalanceDue: total,
		Status:     domain.StatusSent,
		IssuedAt:   &now,
		DueDate:    &due,
		Items:      items,
	}
	if err := u.createWithNumber(ctx, inv); err != nil {
		return nil, err
	}
	return toDTO(inv), nil
}

// dueDateInMonth aligns the due date to the lease's due day within the
// invoice period, clamped to the month's length.
func dueDateInMonth(monthStart time.Time, dueDay int) time.Time {
	last := monthStart.AddDate(0, 1, -1).Day()
	if dueDay > last {
		dueDay = last
	}
	return time.Date(monthStart.Year(), monthStart.Month(), dueDay, 0, 0, 0, 0, time.UTC)
}
