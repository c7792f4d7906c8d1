package reconcile

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	leaseDomain "rentbook-backend/internal/domain/lease"
	paymentDomain "rentbook-backend/internal/domain/payment"
	"rentbook-backend/internal/gateway/momo"
	"rentbook-backend/internal/notify"
	invoiceuc "rentbook-backend/internal/usecase/invoice"
	leaseuc "rentbook-backend/internal/usecase/lease"
	paymentuc "rentbook-backend/internal/usecase/payment"
)

// ErrBadSignature rejects webhooks whose signature does not verify.
var ErrBadSignature = errors.New("webhook signature mismatch")

const (
	SourcePoll    = "poll"
	SourceWebhook = "webhook"
)

const moneyEps = 0.005

// Coordinator routes external payment confirmations to the ledger and, on
// completion, drives the invoice/lease side effects exactly once.
type Coordinator struct {
	payments *paymentuc.Usecase
	invoices *invoiceuc.Usecase
	leases   *leaseuc.Usecase

	paymentRepo paymentDomain.Repository
	leaseRepo   leaseDomain.Repository
	gw          momo.Gateway
	notifier    notify.Dispatcher

	// Shared webhook signing secret; empty disables verification.
	webhookSecret string
}

func NewCoordinator(
	payments *paymentuc.Usecase,
	invoices *invoiceuc.Usecase,
	leases *leaseuc.Usecase,
	paymentRepo paymentDomain.Repository,
	leaseRepo leaseDomain.Repository,
	gw momo.Gateway,
	notifier notify.Dispatcher,
	webhookSecret string,
) *Coordinator {
	return &Coordinator{
		payments:      payments,
		invoices:      invoices,
		leases:        leases,
		paymentRepo:   paymentRepo,
		leaseRepo:     leaseRepo,
		gw:            gw,
		notifier:      notifier,
		webhookSecret: webhookSecret,
	}
}

// MapProviderStatus distills the provider's status vocabulary into the
// canonical outcome. Unknown statuses stay pending rather than guessing a
// terminal result.
func MapProviderStatus(s string) paymentuc.Outcome {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESSFUL", "SUCCESS", "COMPLETED":
		return paymentuc.OutcomeCompleted
	case "FAILED", "REJECTED", "TIMEOUT", "EXPIRED":
		return paymentuc.OutcomeFailed
	case "PENDING", "ONGOING", "CREATED", "ACCEPTED":
		return paymentuc.OutcomePending
	default:
		log.Printf("reconcile: unknown provider status %q treated as pending", s)
		return paymentuc.OutcomePending
	}
}

// VerifySignature checks the webhook body against the shared secret with a
// constant-time HMAC-SHA256 comparison. No secret configured means no check.
func (c *Coordinator) VerifySignature(body []byte, signature string) error {
	if c.webhookSecret == "" {
		return nil
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return ErrBadSignature
	}
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return ErrBadSignature
	}
	return nil
}

type ReconcileInput struct {
	Source           string
	ReferenceNumber  string
	ProviderStatus   string
	EventID          string
	ProviderTxnID    string
	ConfirmationCode string
	Reason           string
}

type Result struct {
	ReceiptNumber  string `json:"receipt_number"`
	Status         string `json:"status"`
	ApprovalStatus string `json:"approval_status"`
	Outcome        string `json:"outcome"`
	// Applied is false for replays and already-terminal payments.
	Applied bool `json:"applied"`
}

// Reconcile applies one confirmation event at most once and triggers the
// downstream crediting when the payment completes.
func (c *Coordinator) Reconcile(ctx context.Context, in ReconcileInput) (*Result, error) {
	outcome := MapProviderStatus(in.ProviderStatus)
	eventID := in.EventID
	if eventID == "" {
		// No provider event id: derive a deterministic one so identical
		// redeliveries still dedupe.
		eventID = fmt.Sprintf("%s:%s:%s", in.Source, in.ReferenceNumber, strings.ToLower(strings.TrimSpace(in.ProviderStatus)))
	}

	p, applied, err := c.payments.ApplyGatewayOutcome(ctx, paymentuc.GatewayOutcomeInput{
		ReferenceNumber:  in.ReferenceNumber,
		Outcome:          outcome,
		Source:           in.Source,
		EventID:          eventID,
		ProviderStatus:   in.ProviderStatus,
		ProviderTxnID:    in.ProviderTxnID,
		ConfirmationCode: in.ConfirmationCode,
		Reason:           in.Reason,
	})
	if err != nil {
		return nil, err
	}

	if applied {
		switch outcome {
		case paymentuc.OutcomeCompleted:
			if err := c.creditCompleted(ctx, p); err != nil {
				return nil, err
			}
			notify.FireAndForget(ctx, c.notifier, notify.Event{
				Kind:      notify.KindPaymentCompleted,
				Recipient: p.TenantID,
				Amount:    p.Amount,
				Date:      time.Now().UTC(),
				EntityID:  p.ReceiptNumber,
			})
		case paymentuc.OutcomeFailed:
			notify.FireAndForget(ctx, c.notifier, notify.Event{
				Kind:      notify.KindPaymentFailed,
				Recipient: p.TenantID,
				Amount:    p.Amount,
				Date:      time.Now().UTC(),
				EntityID:  p.ReceiptNumber,
			})
		}
	} else if outcome == paymentuc.OutcomeCompleted &&
		p.Status == paymentDomain.StatusCompleted && p.CreditedAt == nil {
		// A prior delivery completed the payment but crashed mid-credit.
		// The event dedupes, yet the crediting marker is still unset, so
		// finish the job here; creditCompleted retries safely.
		if err := c.creditCompleted(ctx, p); err != nil {
			return nil, err
		}
	}

	return &Result{
		ReceiptNumber:  p.ReceiptNumber,
		Status:         string(p.Status),
		ApprovalStatus: string(p.ApprovalStatus),
		Outcome:        string(outcome),
		Applied:        applied,
	}, nil
}

// creditCompleted runs the invoice credit and the lease first-payment
// activation for one completed payment, then stamps the crediting marker.
// Safe to retry from any partial-completion point: the invoice side dedupes
// on payment id, the lease side only fires while the lease is still signed.
func (c *Coordinator) creditCompleted(ctx context.Context, p *paymentDomain.Payment) error {
	if p.CreditedAt != nil {
		return nil
	}

	if p.InvoiceRowID != nil {
		if _, err := c.invoices.RecordPayment(ctx, *p.InvoiceRowID, p); err != nil {
			return fmt.Errorf("credit invoice for %s: %w", p.ReceiptNumber, err)
		}
	}

	l, err := c.leaseRepo.GetByRowID(ctx, p.LeaseRowID)
	if err != nil {
		return err
	}
	if l.Status == leaseDomain.StatusSigned && p.Amount >= l.FirstPaymentRequired()-moneyEps {
		if _, err := c.leases.RecordFirstPayment(ctx, l.LeaseID, p.Amount, time.Now().UTC()); err != nil {
			return fmt.Errorf("activate lease for %s: %w", p.ReceiptNumber, err)
		}
	}

	return c.payments.MarkCredited(ctx, p.ReceiptNumber)
}

// ApproveManual settles a payment through the manual review path and then
// runs the same crediting as a gateway completion.
func (c *Coordinator) ApproveManual(ctx context.Context, receiptNumber, actorID, note string) (*paymentuc.PaymentDTO, error) {
	dto, err := c.payments.Approve(ctx, receiptNumber, actorID, note)
	if err != nil {
		return nil, err
	}
	if dto.Status == string(paymentDomain.StatusCompleted) && dto.CreditedAt == nil {
		p, err := c.paymentRepo.GetByReceipt(ctx, receiptNumber)
		if err != nil {
			return nil, err
		}
		if err := c.creditCompleted(ctx, p); err != nil {
			return nil, err
		}
		notify.FireAndForget(ctx, c.notifier, notify.Event{
			Kind:      notify.KindPaymentCompleted,
			Recipient: dto.TenantID,
			Amount:    dto.Amount,
			Date:      time.Now().UTC(),
			EntityID:  dto.ReceiptNumber,
		})
	}
	return dto, nil
}

// RejectManual declines a payment through the manual review path.
func (c *Coordinator) RejectManual(ctx context.Context, receiptNumber, actorID, reason string) (*paymentuc.PaymentDTO, error) {
	dto, err := c.payments.Reject(ctx, receiptNumber, actorID, reason)
	if err != nil {
		return nil, err
	}
	notify.FireAndForget(ctx, c.notifier, notify.Event{
		Kind:      notify.KindPaymentFailed,
		Recipient: dto.TenantID,
		Amount:    dto.Amount,
		Date:      time.Now().UTC(),
		EntityID:  dto.ReceiptNumber,
	})
	return dto, nil
}

// Poll asks the provider for one transaction's status and feeds the answer
// through the same reconciliation path as a webhook. Gateway errors are
// returned for the caller to retry; they never fail the payment.
func (c *Coordinator) Poll(ctx context.Context, receiptNumber string) (*Result, error) {
	p, err := c.paymentRepo.GetByReceipt(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	if p.Method != paymentDomain.MethodMobileMoney || p.ReferenceNumber == nil {
		return nil, fmt.Errorf("%w: payment %s has no gateway reference", paymentDomain.ErrValidation, receiptNumber)
	}

	st, err := c.gw.GetStatus(ctx, *p.ReferenceNumber)
	if err != nil {
		log.Printf("reconcile: poll %s: %v", receiptNumber, err)
		return nil, err
	}

	return c.Reconcile(ctx, ReconcileInput{
		Source:          SourcePoll,
		ReferenceNumber: *p.ReferenceNumber,
		ProviderStatus:  string(st.Status),
		ProviderTxnID:   st.FinancialTransactionID,
		Reason:          st.Reason,
	})
}
