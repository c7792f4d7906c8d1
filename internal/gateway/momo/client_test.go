package momo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// memTokenCache is a map-backed TokenCache for tests.
type memTokenCache struct {
	mu    sync.Mutex
	token string
	ttl   time.Duration
	sets  int
}

func (m *memTokenCache) Get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokenCache) Set(ctx context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.ttl, m.sets = token, ttl, m.sets+1
	return nil
}

func newTestServer(t *testing.T, tokenCalls *int, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/collection/token/", func(w http.ResponseWriter, r *http.Request) {
		if tokenCalls != nil {
			*tokenCalls++
		}
		user, key, ok := r.BasicAuth()
		if !ok || user != "apiuser" || key != "apikey" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123", "token_type": "Bearer", "expires_in": 3600,
		})
	})
	if handler != nil {
		mux.HandleFunc("/collection/v1_0/", handler)
	}
	return httptest.NewServer(mux)
}

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		SubscriptionKey: "subkey",
		APIUser:         "apiuser",
		APIKey:          "apikey",
		TargetEnv:       "sandbox",
		Timeout:         5 * time.Second,
	}
}

func TestAcquireToken_CachesWithShortenedTTL(t *testing.T) {
	var tokenCalls int
	srv := newTestServer(t, &tokenCalls, nil)
	defer srv.Close()

	cache := &memTokenCache{}
	c := New(testConfig(srv.URL), cache)

	tok, err := c.AcquireToken(context.Background())
	if err != nil {
		t.Fatalf("AcquireToken: %v", err)
	}
	if tok != "tok-123" {
		t.Fatalf("token = %q", tok)
	}
	if cache.ttl != 3540*time.Second {
		t.Fatalf("cache ttl = %v, want expires_in minus 60s", cache.ttl)
	}

	// Second call must come from cache.
	if _, err := c.AcquireToken(context.Background()); err != nil {
		t.Fatalf("AcquireToken (cached): %v", err)
	}
	if tokenCalls != 1 {
		t.Fatalf("token endpoint called %d times, want 1", tokenCalls)
	}
}

func TestRequestToPay_SendsHeadersAndReturnsReference(t *testing.T) {
	var gotRef, gotAuth, gotEnv string
	var gotBody requestToPayBody

	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		gotRef = r.Header.Get("X-Reference-Id")
		gotAuth = r.Header.Get("Authorization")
		gotEnv = r.Header.Get("X-Target-Environment")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	})
	defer srv.Close()

	c := New(testConfig(srv.URL), &memTokenCache{})
	ref, err := c.RequestToPay(context.Background(), RequestToPayInput{
		Amount:      1500.5,
		Currency:    "UGX",
		ExternalID:  "PAY-20260315-00042",
		PayerMSISDN: "256772123456",
		PayerNote:   "Rent March",
	})
	if err != nil {
		t.Fatalf("RequestToPay: %v", err)
	}
	if ref == "" || ref != gotRef {
		t.Fatalf("reference mismatch: returned %q, header %q", ref, gotRef)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotEnv != "sandbox" {
		t.Fatalf("X-Target-Environment = %q", gotEnv)
	}
	if gotBody.Amount != "1500.50" {
		t.Fatalf("amount = %q, want 1500.50", gotBody.Amount)
	}
	if gotBody.Payer.PartyIDType != "MSISDN" || gotBody.Payer.PartyID != "256772123456" {
		t.Fatalf("payer = %+v", gotBody.Payer)
	}
	if gotBody.ExternalID != "PAY-20260315-00042" {
		t.Fatalf("externalId = %q", gotBody.ExternalID)
	}
}

func TestRequestToPay_Non202IsGatewayError(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	c := New(testConfig(srv.URL), &memTokenCache{})
	_, err := c.RequestToPay(context.Background(), RequestToPayInput{
		Amount: 100, Currency: "UGX", ExternalID: "x", PayerMSISDN: "256772123456",
	})
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
}

func TestGetStatus(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":                 "SUCCESSFUL",
			"financialTransactionId": "FT-889",
			"reason":                 "",
		})
	})
	defer srv.Close()

	c := New(testConfig(srv.URL), &memTokenCache{})
	res, err := c.GetStatus(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if res.Status != StatusSuccessful {
		t.Fatalf("status = %q", res.Status)
	}
	if res.FinancialTransactionID != "FT-889" {
		t.Fatalf("txn id = %q", res.FinancialTransactionID)
	}
}

func TestGetStatus_TransportFailureIsGatewayError(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	url := srv.URL
	srv.Close() // connection refused

	c := New(testConfig(url), &memTokenCache{})
	_, err := c.GetStatus(context.Background(), "ref-1")
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
}
