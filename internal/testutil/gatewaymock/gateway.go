package gatewaymock

import (
	"context"
	"sync"

	"rentbook-backend/internal/gateway/momo"
	"rentbook-backend/internal/notify"
)

var _ momo.Gateway = (*Gateway)(nil)

// Gateway is a function-backed mock for the mobile-money client.
type Gateway struct {
	RequestToPayFn func(ctx context.Context, in momo.RequestToPayInput) (string, error)
	GetStatusFn    func(ctx context.Context, referenceID string) (*momo.StatusResult, error)
}

func (m *Gateway) RequestToPay(ctx context.Context, in momo.RequestToPayInput) (string, error) {
	if m.RequestToPayFn != nil {
		return m.RequestToPayFn(ctx, in)
	}
	return "", context.Canceled
}

func (m *Gateway) GetStatus(ctx context.Context, referenceID string) (*momo.StatusResult, error) {
	if m.GetStatusFn != nil {
		return m.GetStatusFn(ctx, referenceID)
	}
	return nil, context.Canceled
}

// Recorder captures dispatched notifications for assertions.
type Recorder struct {
	mu     sync.Mutex
	Events []notify.Event
	Err    error
}

var _ notify.Dispatcher = (*Recorder)(nil)

func (r *Recorder) Dispatch(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
	return r.Err
}

func (r *Recorder) Kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, 0, len(r.Events))
	for _, ev := range r.Events {
		out = append(out, ev.Kind)
	}
	return out
}
