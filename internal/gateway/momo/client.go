package momo

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ErrGateway wraps every provider-side failure (transport, timeout, non-2xx).
var ErrGateway = errors.New("mobile money gateway error")

// Provider transaction status vocabulary.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusSuccessful Status = "SUCCESSFUL"
	StatusFailed     Status = "FAILED"
)

type RequestToPayInput struct {
	Amount      float64
	Currency    string
	ExternalID  string
	PayerMSISDN string // already normalized international form
	PayerNote   string
	PayeeNote   string
}

type StatusResult struct {
	Status                 Status
	FinancialTransactionID string
	Reason                 string
}

// Gateway is the contract the reconciliation core consumes. *Client is the
// production implementation.
type Gateway interface {
	RequestToPay(ctx context.Context, in RequestToPayInput) (referenceID string, err error)
	GetStatus(ctx context.Context, referenceID string) (*StatusResult, error)
}

// TokenCache holds the provider access token between calls. The redis-backed
// implementation lives in token_cache.go; tests inject a map-backed one.
type TokenCache interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string, ttl time.Duration) error
}

type Config struct {
	BaseURL         string
	SubscriptionKey string
	APIUser         string
	APIKey          string
	TargetEnv       string // sandbox | production
	Timeout         time.Duration
}

// Client talks to the provider's collection API.
type Client struct {
	cfg    Config
	http   *http.Client
	tokens TokenCache
}

func New(cfg Config, tokens TokenCache) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 30 * time.Second,
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Transport: tr, Timeout: cfg.Timeout},
		tokens: tokens,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AcquireToken returns a valid access token, from cache when possible.
func (c *Client) AcquireToken(ctx context.Context) (string, error) {
	if c.tokens != nil {
		if tok, err := c.tokens.Get(ctx); err == nil && tok != "" {
			return tok, nil
		}
	}

	url := fmt.Sprintf("%s/collection/token/", c.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	req.SetBasicAuth(c.cfg.APIUser, c.cfg.APIKey)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token request: %s, body: %s", ErrGateway, resp.Status, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: decode token: %v", ErrGateway, err)
	}
	if c.tokens != nil && tr.ExpiresIn > 60 {
		// renew a minute early so a cached token is never handed out stale
		_ = c.tokens.Set(ctx, tr.AccessToken, time.Duration(tr.ExpiresIn-60)*time.Second)
	}
	return tr.AccessToken, nil
}

type requestToPayBody struct {
	Amount     string      `json:"amount"`
	Currency   string      `json:"currency"`
	ExternalID string      `json:"externalId"`
	Payer      payerParty  `json:"payer"`
	PayerMsg   string      `json:"payerMessage"`
	PayeeNote  string      `json:"payeeNote"`
}

type payerParty struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

// RequestToPay submits a request-to-pay and returns the reference id the
// provider will echo back on polls and webhooks.
func (c *Client) RequestToPay(ctx context.Context, in RequestToPayInput) (string, error) {
	token, err := c.AcquireToken(ctx)
	if err != nil {
		return "", err
	}

	referenceID := uuid.NewString()
	payload := requestToPayBody{
		Amount:     strconv.FormatFloat(in.Amount, 'f', 2, 64),
		Currency:   in.Currency,
		ExternalID: in.ExternalID,
		Payer:      payerParty{PartyIDType: "MSISDN", PartyID: in.PayerMSISDN},
		PayerMsg:   in.PayerNote,
		PayeeNote:  in.PayeeNote,
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	url := fmt.Sprintf("%s/collection/v1_0/requesttopay", c.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Reference-Id", referenceID)
	req.Header.Set("X-Target-Environment", c.cfg.TargetEnv)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request to pay: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: request to pay: %s, body: %s", ErrGateway, resp.Status, string(body))
	}
	return referenceID, nil
}

type statusResponse struct {
	Status                 string `json:"status"`
	FinancialTransactionID string `json:"financialTransactionId"`
	Reason                 string `json:"reason"`
}

// GetStatus polls one transaction by reference id.
func (c *Client) GetStatus(ctx context.Context, referenceID string) (*StatusResult, error) {
	token, err := c.AcquireToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/collection/v1_0/requesttopay/%s", c.cfg.BaseURL, referenceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Target-Environment", c.cfg.TargetEnv)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: status poll: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status poll: %s, body: %s", ErrGateway, resp.Status, string(body))
	}

	var sr statusResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: decode status: %v", ErrGateway, err)
	}
	return &StatusResult{
		Status:                 Status(sr.Status),
		FinancialTransactionID: sr.FinancialTransactionID,
		Reason:                 sr.Reason,
	}, nil
}
