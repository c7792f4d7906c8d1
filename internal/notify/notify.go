package notify

import (
	"context"
	"log"
	"time"
)

type Kind string

const (
	KindLeaseSigned      Kind = "lease_signed"
	KindLeaseActivated   Kind = "lease_activated"
	KindPaymentCompleted Kind = "payment_completed"
	KindPaymentFailed    Kind = "payment_failed"
	KindInvoicePaid      Kind = "invoice_paid"
	KindInvoiceOverdue   Kind = "invoice_overdue"
)

// Event is the payload handed to the notification dispatcher. Delivery is an
// external collaborator's job; the core only emits.
type Event struct {
	Kind      Kind      `json:"kind"`
	Recipient string    `json:"recipient"`
	Amount    float64   `json:"amount,omitempty"`
	Date      time.Time `json:"date"`
	EntityID  string    `json:"entity_id"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// LogDispatcher writes events to the process log. It stands in for the real
// delivery service in development and tests.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, ev Event) error {
	log.Printf("notify: kind=%s recipient=%s entity=%s amount=%.2f", ev.Kind, ev.Recipient, ev.EntityID, ev.Amount)
	return nil
}

// FireAndForget dispatches and swallows delivery failures; a notification
// must never roll back or block the state transition that produced it.
func FireAndForget(ctx context.Context, d Dispatcher, ev Event) {
	if d == nil {
		return
	}
	if err := d.Dispatch(ctx, ev); err != nil {
		log.Printf("notify: dispatch %s for %s failed: %v", ev.Kind, ev.EntityID, err)
	}
}
