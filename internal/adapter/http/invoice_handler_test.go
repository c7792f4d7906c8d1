package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strings"
	"testing"
	"time"

	domain "rentbook-backend/internal/domain/invoice"
	leaseDomain "rentbook-backend/internal/domain/lease"
	"rentbook-backend/internal/domain/uow"
	"rentbook-backend/internal/testutil/gatewaymock"
	"rentbook-backend/internal/testutil/invoicemock"
	"rentbook-backend/internal/testutil/leasemock"
	"rentbook-backend/internal/testutil/uowmock"
	uc "rentbook-backend/internal/usecase/invoice"
)

func newInvoiceHandler(lease *leaseDomain.Lease) (*InvoiceHandler, *invoicemock.Repo) {
	var stored *domain.Invoice
	repo := &invoicemock.Repo{
		CreateWithItemsFn: func(_ context.Context, inv *domain.Invoice) error {
			inv.ID = 1
			inv.CreatedAt = time.Now().UTC()
			stored = inv
			return nil
		},
		GetByNumberFn: func(_ context.Context, number string) (*domain.Invoice, error) {
			if stored != nil && stored.InvoiceNumber == number {
				return stored, nil
			}
			return nil, domain.ErrNotFound
		},
		SaveFn: func(_ context.Context, inv *domain.Invoice) error {
			stored = inv
			return nil
		},
	}
	leases := &leasemock.Repo{
		GetByLeaseIDFn: func(_ context.Context, id string) (*leaseDomain.Lease, error) {
			if lease != nil && lease.LeaseID == id {
				return lease, nil
			}
			return nil, leaseDomain.ErrNotFound
		},
	}
	tx := uowmock.Passthrough(uow.Repos{Invoices: repo, Leases: leases})
	usecase := uc.NewUsecase(repo, leases, tx, &gatewaymock.Recorder{})
	return NewInvoiceHandler(usecase), repo
}

func TestCreateInvoice_Success(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newInvoiceHandler(nil)

	body := map[string]any{
		"tenant_id":   strings.Repeat("a", 32),
		"property_id": strings.Repeat("d", 32),
		"items": []map[string]any{
			{"description": "September rent", "amount": 1000.0},
			{"description": "Parking", "amount": 500.0},
		},
	}
	c, rec := jsonCtx(e, stdhttp.MethodPost, "/invoices", mustJSON(body))

	if err := h.CreateInvoice(c); err != nil {
		t.Fatalf("CreateInvoice error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var got uc.InvoiceDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if !strings.HasPrefix(got.InvoiceNumber, "INV-") {
		t.Fatalf("number = %q, want INV- prefix", got.InvoiceNumber)
	}
	if got.Total != 1500 {
		t.Fatalf("total = %v, want 1500", got.Total)
	}
	if got.Status != string(domain.StatusDraft) {
		t.Fatalf("status = %s, want draft", got.Status)
	}
}

func TestCreateInvoice_EmptyItemsRejected(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newInvoiceHandler(nil)

	body := map[string]any{
		"tenant_id":   strings.Repeat("a", 32),
		"property_id": strings.Repeat("d", 32),
		"items":       []map[string]any{},
	}
	c, rec := jsonCtx(e, stdhttp.MethodPost, "/invoices", mustJSON(body))

	if err := h.CreateInvoice(c); err != nil {
		t.Fatalf("CreateInvoice error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestSendInvoice_OnlyFromDraft(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newInvoiceHandler(nil)

	// create a draft first
	c, rec := jsonCtx(e, stdhttp.MethodPost, "/invoices", mustJSON(map[string]any{
		"tenant_id":   strings.Repeat("a", 32),
		"property_id": strings.Repeat("d", 32),
		"items":       []map[string]any{{"description": "Rent", "amount": 1000.0}},
	}))
	if err := h.CreateInvoice(c); err != nil || rec.Code != stdhttp.StatusCreated {
		t.Fatalf("seed invoice: err=%v code=%d", err, rec.Code)
	}
	var draft uc.InvoiceDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &draft); err != nil {
		t.Fatalf("bad json: %v", err)
	}

	due := time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02")
	c, rec = jsonCtx(e, stdhttp.MethodPost, "/invoices/"+draft.InvoiceNumber+"/send", mustJSON(map[string]any{"due_date": due}))
	c.SetParamNames("invoice_number")
	c.SetParamValues(draft.InvoiceNumber)
	if err := h.SendInvoice(c); err != nil {
		t.Fatalf("SendInvoice error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// second send is a state conflict
	c, rec = jsonCtx(e, stdhttp.MethodPost, "/invoices/"+draft.InvoiceNumber+"/send", mustJSON(map[string]any{"due_date": due}))
	c.SetParamNames("invoice_number")
	c.SetParamValues(draft.InvoiceNumber)
	if err := h.SendInvoice(c); err != nil {
		t.Fatalf("SendInvoice error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateInvoice_ForActiveLease(t *testing.T) {
	e := newEchoWithValidator()
	leaseID := strings.Repeat("c", 32)
	h, repo := newInvoiceHandler(&leaseDomain.Lease{
		ID:            1,
		LeaseID:       leaseID,
		PropertyID:    strings.Repeat("d", 32),
		TenantID:      strings.Repeat("a", 32),
		LandlordID:    strings.Repeat("b", 32),
		MonthlyRent:   1500,
		PaymentDueDay: 5,
		Status:        leaseDomain.StatusActive,
	})
	repo.GetByLeasePeriodFn = func(context.Context, uint64, string) (*domain.Invoice, error) {
		return nil, domain.ErrNotFound
	}

	c, rec := jsonCtx(e, stdhttp.MethodPost, "/leases/"+leaseID+"/invoices", mustJSON(map[string]any{"period": "2026-09"}))
	c.SetParamNames("lease_id")
	c.SetParamValues(leaseID)

	if err := h.GenerateInvoice(c); err != nil {
		t.Fatalf("GenerateInvoice error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var got uc.InvoiceDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Total != 1500 || got.Status != string(domain.StatusSent) {
		t.Fatalf("unexpected dto: %+v", got)
	}
}

func TestGenerateInvoice_BadPeriodRejected(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newInvoiceHandler(nil)

	c, rec := jsonCtx(e, stdhttp.MethodPost, "/leases/x/invoices", mustJSON(map[string]any{"period": "September"}))
	if err := h.GenerateInvoice(c); err != nil {
		t.Fatalf("GenerateInvoice error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}
