package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	invoiceDomain "rentbook-backend/internal/domain/invoice"
	leaseDomain "rentbook-backend/internal/domain/lease"
	domain "rentbook-backend/internal/domain/payment"
	"rentbook-backend/internal/domain/uow"
	"rentbook-backend/internal/gateway/momo"
	"rentbook-backend/pkg/id"

	"gorm.io/gorm"
)

const (
	maxReceiptAttempts = 5
	defaultCooldown    = 5 * time.Minute
)

type Usecase struct {
	payments domain.Repository
	leases   leaseDomain.Repository
	invoices invoiceDomain.Repository
	uow      uow.UnitOfWork
	gw       momo.Gateway

	// Duplicate-submission guard window for pending mobile money payments.
	cooldown time.Duration
}

func NewUsecase(payments domain.Repository, leases leaseDomain.Repository, invoices invoiceDomain.Repository, tx uow.UnitOfWork, gw momo.Gateway) *Usecase {
	return &Usecase{
		payments: payments,
		leases:   leases,
		invoices: invoices,
		uow:      tx,
		gw:       gw,
		cooldown: defaultCooldown,
	}
}

// WithCooldown overrides the duplicate-guard window.
func (u *Usecase) WithCooldown(d time.Duration) *Usecase {
	u.cooldown = d
	return u
}

// Submit validates and persists a payment in pending/pending state. For
// mobile money it also places the request-to-pay with the provider; a
// gateway failure leaves the payment pending with the failure recorded.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*PaymentDTO, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	l, err := u.leases.GetByLeaseID(ctx, in.LeaseID)
	if err != nil {
		return nil, err
	}

	var invoiceRowID *uint64
	if in.InvoiceNumber != "" {
		inv, err := u.invoices.GetByNumber(ctx, in.InvoiceNumber)
		if err != nil {
			return nil, err
		}
		invoiceRowID = &inv.ID
	}

	var msisdn string
	if in.Method == domain.MethodMobileMoney {
		msisdn, err = momo.NormalizeMSISDN(in.PayerMSISDN)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if err := u.checkDuplicate(ctx, in.TenantID, l.ID); err != nil {
			return nil, err
		}
	}

	expected := in.ExpectedAmount
	if expected == 0 {
		expected = in.Amount
	}

	p := &domain.Payment{
		Amount:         in.Amount,
		ExpectedAmount: expected,
		Currency:       in.Currency,
		TenantID:       in.TenantID,
		PropertyID:     l.PropertyID,
		LandlordID:     l.LandlordID,
		LeaseRowID:     l.ID,
		InvoiceRowID:   invoiceRowID,
		Method:         in.Method,
		Status:         domain.StatusPending,
		ApprovalStatus: domain.ApprovalPending,
		PayerMSISDN:    msisdn,
		Note:           in.Note,
	}
	if err := u.createWithReceipt(ctx, p); err != nil {
		return nil, err
	}
	_ = u.payments.AppendApprovalEvent(ctx, &domain.ApprovalEvent{
		PaymentRowID: p.ID,
		Action:       domain.ActionSubmitted,
		Actor:        in.TenantID,
		Note:         in.Note,
	})

	if in.Method == domain.MethodMobileMoney {
		ref, err := u.gw.RequestToPay(ctx, momo.RequestToPayInput{
			Amount:      p.Amount,
			Currency:    p.Currency,
			ExternalID:  p.ReceiptNumber,
			PayerMSISDN: msisdn,
			PayerNote:   in.Note,
			PayeeNote:   "rent collection",
		})
		if err != nil {
			// Payment stays pending with the failure on record; the caller
			// sees the gateway error and may resubmit after the cooldown.
			p.FailureDetail = err.Error()
			if saveErr := u.payments.Save(ctx, p); saveErr != nil {
				log.Printf("payment: save failure detail for %s: %v", p.ReceiptNumber, saveErr)
			}
			return nil, err
		}
		p.ReferenceNumber = &ref
		if err := u.payments.Save(ctx, p); err != nil {
			return nil, err
		}
	}

	return toDTO(p), nil
}

func (u *Usecase) checkDuplicate(ctx context.Context, tenantID string, leaseRowID uint64) error {
	prev, err := u.payments.GetPendingGatewayPayment(ctx, tenantID, leaseRowID)
	switch {
	case err == nil:
		if time.Now().UTC().Sub(prev.CreatedAt) < u.cooldown {
			return fmt.Errorf("%w: receipt %s", domain.ErrDuplicateRequest, prev.ReceiptNumber)
		}
		// Older pending payment has expired for guard purposes; advisory only.
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

// createWithReceipt retries receipt number generation on unique-index
// collisions, bounded by maxReceiptAttempts.
func (u *Usecase) createWithReceipt(ctx context.Context, p *domain.Payment) error {
	for attempt := 0; attempt < maxReceiptAttempts; attempt++ {
		p.ReceiptNumber = id.NewReceiptNumber(time.Now())
		err := u.payments.Create(ctx, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return domain.ErrReceiptExhausted
}

func (u *Usecase) Get(ctx context.Context, receiptNumber string) (*PaymentDTO, error) {
	p, err := u.payments.GetByReceipt(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

func (u *Usecase) History(ctx context.Context, receiptNumber string) ([]domain.ApprovalEvent, error) {
	p, err := u.payments.GetByReceipt(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	return u.payments.ListApprovalEvents(ctx, p.ID)
}

// Approve settles a manually-reviewed payment: approval pending → approved,
// status → completed. Racing against a gateway confirmation that already
// settled the payment the same way is a no-op, not an error.
func (u *Usecase) Approve(ctx context.Context, receiptNumber, actorID, note string) (*PaymentDTO, error) {
	var dto *PaymentDTO
	err := u.uow.WithinPaymentTx(ctx, receiptNumber, func(r uow.Repos, p *domain.Payment) error {
		if p.LandlordID != actorID {
			return domain.ErrPermission
		}
		if p.ApprovalStatus == domain.ApprovalApproved && p.Status == domain.StatusCompleted {
			dto = toDTO(p)
			return nil
		}
		if p.ApprovalStatus != domain.ApprovalPending {
			return fmt.Errorf("%w: approval already %s", domain.ErrInvalidTransition, p.ApprovalStatus)
		}
		if p.Status.Terminal() {
			return fmt.Errorf("%w: payment already %s", domain.ErrInvalidTransition, p.Status)
		}
		p.ApprovalStatus = domain.ApprovalApproved
		p.Status = domain.StatusCompleted
		p.StatusUpdatedAt = time.Now().UTC()
		if err := r.Payments.Save(ctx, p); err != nil {
			return err
		}
		if err := r.Payments.AppendApprovalEvent(ctx, &domain.ApprovalEvent{
			PaymentRowID: p.ID,
			Action:       domain.ActionApproved,
			Actor:        actorID,
			Note:         note,
		}); err != nil {
			return err
		}
		dto = toDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Reject declines a manually-reviewed payment; no crediting ever happens.
func (u *Usecase) Reject(ctx context.Context, receiptNumber, actorID, reason string) (*PaymentDTO, error) {
	var dto *PaymentDTO
	err := u.uow.WithinPaymentTx(ctx, receiptNumber, func(r uow.Repos, p *domain.Payment) error {
		if p.LandlordID != actorID {
			return domain.ErrPermission
		}
		if p.ApprovalStatus != domain.ApprovalPending {
			return fmt.Errorf("%w: approval already %s", domain.ErrInvalidTransition, p.ApprovalStatus)
		}
		if p.Status.Terminal() {
			return fmt.Errorf("%w: payment already %s", domain.ErrInvalidTransition, p.Status)
		}
		p.ApprovalStatus = domain.ApprovalRejected
		p.Status = domain.StatusFailed
		p.FailureDetail = reason
		p.StatusUpdatedAt = time.Now().UTC()
		if err := r.Payments.Save(ctx, p); err != nil {
			return err
		}
		if err := r.Payments.AppendApprovalEvent(ctx, &domain.ApprovalEvent{
			PaymentRowID: p.ID,
			Action:       domain.ActionRejected,
			Actor:        actorID,
			Note:         reason,
		}); err != nil {
			return err
		}
		dto = toDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Cancel withdraws a pending payment. Tenant or landlord may cancel.
func (u *Usecase) Cancel(ctx context.Context, receiptNumber, actorID, reason string) (*PaymentDTO, error) {
	var dto *PaymentDTO
	err := u.uow.WithinPaymentTx(ctx, receiptNumber, func(r uow.Repos, p *domain.Payment) error {
		if actorID != p.TenantID && actorID != p.LandlordID {
			return domain.ErrPermission
		}
		if p.Status != domain.StatusPending {
			return fmt.Errorf("%w: payment already %s", domain.ErrInvalidTransition, p.Status)
		}
		p.Status = domain.StatusCancelled
		p.StatusUpdatedAt = time.Now().UTC()
		if err := r.Payments.Save(ctx, p); err != nil {
			return err
		}
		if err := r.Payments.AppendApprovalEvent(ctx, &domain.ApprovalEvent{
			PaymentRowID: p.ID,
			Action:       domain.ActionCancelled,
			Actor:        actorID,
			Note:         reason,
		}); err != nil {
			return err
		}
		dto = toDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ApplyGatewayOutcome is the idempotent entry point for external
// confirmations. Every event is recorded for audit; a replayed event id or
// an already-terminal payment produces no state change (applied=false).
func (u *Usecase) ApplyGatewayOutcome(ctx context.Context, in GatewayOutcomeInput) (*domain.Payment, bool, error) {
	var snapshot domain.Payment
	var applied bool

	err := u.uow.WithinPaymentRefTx(ctx, in.ReferenceNumber, func(r uow.Repos, p *domain.Payment) error {
		seen, err := r.Payments.HasGatewayEvent(ctx, p.ID, in.EventID)
		if err != nil {
			return err
		}
		if seen {
			log.Printf("payment: replayed event %s for %s ignored", in.EventID, p.ReceiptNumber)
			snapshot = *p
			return nil
		}
		if err := r.Payments.RecordGatewayEvent(ctx, &domain.GatewayEvent{
			PaymentRowID:   p.ID,
			EventID:        in.EventID,
			Source:         in.Source,
			ProviderStatus: in.ProviderStatus,
			Outcome:        string(in.Outcome),
		}); err != nil {
			// A concurrent delivery of the same event won the insert race.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				snapshot = *p
				return nil
			}
			return err
		}
		if p.Status.Terminal() {
			log.Printf("payment: event %s for terminal payment %s recorded, no change", in.EventID, p.ReceiptNumber)
			snapshot = *p
			return nil
		}

		switch in.Outcome {
		case OutcomePending:
			snapshot = *p
			return nil
		case OutcomeCompleted:
			p.Status = domain.StatusCompleted
			p.ApprovalStatus = domain.ApprovalApproved
			p.ProviderTxnID = in.ProviderTxnID
			p.ConfirmationCode = in.ConfirmationCode
			p.StatusUpdatedAt = time.Now().UTC()
			if err := r.Payments.AppendApprovalEvent(ctx, &domain.ApprovalEvent{
				PaymentRowID: p.ID,
				Action:       domain.ActionGatewayCompleted,
				Actor:        domain.GatewayActor,
				Note:         in.ProviderStatus,
			}); err != nil {
				return err
			}
		case OutcomeFailed:
			p.Status = domain.StatusFailed
			p.FailureDetail = in.Reason
			p.StatusUpdatedAt = time.Now().UTC()
			if err := r.Payments.AppendApprovalEvent(ctx, &domain.ApprovalEvent{
				PaymentRowID: p.ID,
				Action:       domain.ActionGatewayFailed,
				Actor:        domain.GatewayActor,
				Note:         in.Reason,
			}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown outcome %q", domain.ErrValidation, in.Outcome)
		}

		if err := r.Payments.Save(ctx, p); err != nil {
			return err
		}
		snapshot = *p
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &snapshot, applied, nil
}

// MarkCredited stamps the once-only crediting marker; reapplying is a no-op.
func (u *Usecase) MarkCredited(ctx context.Context, receiptNumber string) error {
	return u.uow.WithinPaymentTx(ctx, receiptNumber, func(r uow.Repos, p *domain.Payment) error {
		if p.CreditedAt != nil {
			return nil
		}
		now := time.Now().UTC()
		p.CreditedAt = &now
		return r.Payments.Save(ctx, p)
	})
}
