package lease

import (
	"context"
	"fmt"
	"time"

	domain "rentbook-backend/internal/domain/lease"
	"rentbook-backend/internal/domain/uow"
	"rentbook-backend/internal/notify"
	"rentbook-backend/pkg/id"
)

const moneyEps = 0.005

// Term acceptances the tenant must tick before a signature is valid.
var requiredTerms = []string{"payment_terms", "property_condition", "termination_policy"}

type Usecase struct {
	repo     domain.Repository
	uow      uow.UnitOfWork
	notifier notify.Dispatcher
}

func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, notifier notify.Dispatcher) *Usecase {
	return &Usecase{repo: repo, uow: tx, notifier: notifier}
}

func (u *Usecase) Create(ctx context.Context, in CreateLeaseInput) (*LeaseDTO, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	l := &domain.Lease{
		LeaseID:         id.NewID32(),
		PropertyID:      in.PropertyID,
		TenantID:        in.TenantID,
		LandlordID:      in.LandlordID,
		StartDate:       in.StartDate.UTC(),
		EndDate:         in.EndDate.UTC(),
		MonthlyRent:     in.MonthlyRent,
		SecurityDeposit: in.SecurityDeposit,
		PaymentDueDay:   in.PaymentDueDay,
		Status:          domain.StatusDraft,
		StatusUpdatedAt: time.Now().UTC(),
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	_ = u.repo.AppendStatusEvent(ctx, &domain.StatusEvent{
		LeaseRowID: l.ID,
		ToStatus:   string(domain.StatusDraft),
		Actor:      in.LandlordID,
		Reason:     "created from approved rental request",
	})
	return toDTO(l), nil
}

func (u *Usecase) Get(ctx context.Context, leaseID string) (*LeaseDTO, error) {
	l, err := u.repo.GetByLeaseID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func (u *Usecase) History(ctx context.Context, leaseID string) ([]domain.StatusEvent, error) {
	l, err := u.repo.GetByLeaseID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	return u.repo.ListStatusEvents(ctx, l.ID)
}

// SendForSignature moves a draft lease to pending_signature.
func (u *Usecase) SendForSignature(ctx context.Context, leaseID, actorID string) (*LeaseDTO, error) {
	return u.transition(ctx, leaseID, actorID, domain.StatusPendingSignature, "sent to tenant for signature", func(l *domain.Lease) error {
		if l.LandlordID != actorID {
			return domain.ErrPermission
		}
		return nil
	})
}

// Sign records the tenant signature payload and moves the lease to signed.
func (u *Usecase) Sign(ctx context.Context, leaseID string, in SignInput) (*LeaseDTO, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var dto *LeaseDTO
	err := u.uow.WithinLeaseTx(ctx, leaseID, func(r uow.Repos, l *domain.Lease) error {
		if l.Status != domain.StatusPendingSignature {
			return fmt.Errorf("%w: cannot sign lease in state %s", domain.ErrInvalidTransition, l.Status)
		}
		now := time.Now().UTC()
		l.Signed = true
		l.SignedAt = &now
		l.SignerID = in.SignerID
		l.AcceptedTerms = joinTerms(in.AcceptedTerms)
		l.SignatureOrigin = in.Origin
		return u.applyTransition(ctx, r, l, domain.StatusSigned, in.SignerID, "tenant signed", &dto)
	})
	if err != nil {
		return nil, err
	}
	notify.FireAndForget(ctx, u.notifier, notify.Event{
		Kind:      notify.KindLeaseSigned,
		Recipient: dto.LandlordID,
		Date:      time.Now().UTC(),
		EntityID:  dto.LeaseID,
	})
	return dto, nil
}

// RecordFirstPayment activates a signed lease once the activating payment
// covers securityDeposit + monthlyRent, and computes the next due date.
func (u *Usecase) RecordFirstPayment(ctx context.Context, leaseID string, amount float64, paidAt time.Time) (*LeaseDTO, error) {
	var dto *LeaseDTO
	err := u.uow.WithinLeaseTx(ctx, leaseID, func(r uow.Repos, l *domain.Lease) error {
		if l.Status != domain.StatusSigned {
			return fmt.Errorf("%w: cannot record first payment in state %s", domain.ErrInvalidTransition, l.Status)
		}
		required := l.FirstPaymentRequired()
		if amount < required-moneyEps {
			return fmt.Errorf("%w: got %.2f, need %.2f", domain.ErrInsufficientAmount, amount, required)
		}

		now := time.Now().UTC()
		l.TotalPaid += amount
		l.BalanceDue = 0
		l.ActivatedAt = &now
		due := NextDueDate(l.StartDate, l.PaymentDueDay, now)
		l.NextPaymentDue = &due
		return u.applyTransition(ctx, r, l, domain.StatusActive,
			l.TenantID, fmt.Sprintf("first payment of %.2f recorded", amount), &dto)
	})
	if err != nil {
		return nil, err
	}
	notify.FireAndForget(ctx, u.notifier, notify.Event{
		Kind:      notify.KindLeaseActivated,
		Recipient: dto.TenantID,
		Amount:    amount,
		Date:      paidAt,
		EntityID:  dto.LeaseID,
	})
	return dto, nil
}

// ForceActivate is the manual override path: draft → active without payment
// verification. Landlord only.
func (u *Usecase) ForceActivate(ctx context.Context, leaseID, actorID, reason string) (*LeaseDTO, error) {
	return u.transition(ctx, leaseID, actorID, domain.StatusActive, manualReason(reason, "manual activation"), func(l *domain.Lease) error {
		if l.LandlordID != actorID {
			return domain.ErrPermission
		}
		if l.Status != domain.StatusDraft {
			return fmt.Errorf("%w: force-activate only from draft, got %s", domain.ErrInvalidTransition, l.Status)
		}
		now := time.Now().UTC()
		l.ActivatedAt = &now
		due := NextDueDate(l.StartDate, l.PaymentDueDay, now)
		l.NextPaymentDue = &due
		return nil
	})
}

// Deactivate is the manual override path: active → draft.
func (u *Usecase) Deactivate(ctx context.Context, leaseID, actorID, reason string) (*LeaseDTO, error) {
	return u.transition(ctx, leaseID, actorID, domain.StatusDraft, manualReason(reason, "manual deactivation"), func(l *domain.Lease) error {
		if l.LandlordID != actorID {
			return domain.ErrPermission
		}
		if l.Status != domain.StatusActive {
			return fmt.Errorf("%w: deactivate only from active, got %s", domain.ErrInvalidTransition, l.Status)
		}
		l.ActivatedAt = nil
		l.NextPaymentDue = nil
		return nil
	})
}

// Terminate ends the lease from any non-terminal state.
func (u *Usecase) Terminate(ctx context.Context, leaseID, actorID, reason string) (*LeaseDTO, error) {
	return u.transition(ctx, leaseID, actorID, domain.StatusTerminated, manualReason(reason, "terminated"), func(l *domain.Lease) error {
		if l.LandlordID != actorID {
			return domain.ErrPermission
		}
		return nil
	})
}

// MarkExpired transitions an active lease past its end date to expired.
// Reapplying to an already-expired lease is a no-op.
func (u *Usecase) MarkExpired(ctx context.Context, leaseID string) (*LeaseDTO, error) {
	var dto *LeaseDTO
	err := u.uow.WithinLeaseTx(ctx, leaseID, func(r uow.Repos, l *domain.Lease) error {
		if l.Status == domain.StatusExpired {
			dto = toDTO(l)
			return nil
		}
		now := time.Now().UTC()
		if l.Status != domain.StatusActive || now.Before(l.EndDate) {
			return fmt.Errorf("%w: lease %s not eligible for expiry", domain.ErrInvalidTransition, leaseID)
		}
		return u.applyTransition(ctx, r, l, domain.StatusExpired, "", "end date passed", &dto)
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// transition runs guard inside the lease row lock, then applies the move.
func (u *Usecase) transition(ctx context.Context, leaseID, actorID string, to domain.Status, reason string, guard func(*domain.Lease) error) (*LeaseDTO, error) {
	var dto *LeaseDTO
	err := u.uow.WithinLeaseTx(ctx, leaseID, func(r uow.Repos, l *domain.Lease) error {
		if guard != nil {
			if err := guard(l); err != nil {
				return err
			}
		}
		return u.applyTransition(ctx, r, l, to, actorID, reason, &dto)
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) applyTransition(ctx context.Context, r uow.Repos, l *domain.Lease, to domain.Status, actor, reason string, out **LeaseDTO) error {
	from := l.Status
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	l.Status = to
	l.StatusUpdatedAt = time.Now().UTC()
	if err := r.Leases.Save(ctx, l); err != nil {
		return err
	}
	if err := r.Leases.AppendStatusEvent(ctx, &domain.StatusEvent{
		LeaseRowID: l.ID,
		FromStatus: string(from),
		ToStatus:   string(to),
		Actor:      actor,
		Reason:     reason,
	}); err != nil {
		return err
	}
	*out = toDTO(l)
	return nil
}

func manualReason(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}
