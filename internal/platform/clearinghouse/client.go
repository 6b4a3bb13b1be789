package clearinghouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 15 * time.Second
	maxAttempts    = 3
	backoffBase    = 500 * time.Millisecond
)

// Config carries the clearinghouse connection settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client talks to the payer clearinghouse over HTTPS using OAuth2
// client-credentials. All methods retry transient failures (timeouts,
// network errors, 5xx) up to three attempts with exponential backoff;
// 4xx responses are surfaced as RejectionError without retry, except a
// single 401 which triggers one forced token refresh and one retry.
type Client struct {
	cfg     Config
	http    *http.Client
	tokens  *tokenCache
	metrics *Metrics
	log     zerolog.Logger
}

// New validates the config and builds a client. The endpoint must be
// HTTPS; plaintext URLs are refused outright rather than at first call.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("clearinghouse base URL: %w", err)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("clearinghouse base URL must use https, got %q", cfg.BaseURL)
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("clearinghouse client credentials are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  &tokenCache{now: time.Now},
		metrics: &Metrics{},
		log:     log.With().Str("component", "clearinghouse").Logger(),
	}, nil
}

// Metrics exposes the client's request counters.
func (c *Client) Metrics() *Metrics { return c.metrics }

// SubmitClaim validates and submits a claim. On a 4xx response the
// returned error is a *RejectionError carrying the payer's reason.
func (c *Client) SubmitClaim(ctx context.Context, payload *ClaimPayload) (*SubmissionResult, error) {
	if problems := ValidatePayload(payload); len(problems) > 0 {
		return nil, &ValidationErrors{Problems: problems}
	}
	if payload.SubmissionTimestamp.IsZero() {
		payload.SubmissionTimestamp = time.Now().UTC()
	}
	var out SubmissionResult
	if err := c.call(ctx, "submit", http.MethodPost, "/claims", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClaimStatus polls the adjudication state of a previously submitted claim.
func (c *Client) ClaimStatus(ctx context.Context, clearinghouseID string) (*StatusResult, error) {
	var out StatusResult
	path := "/claims/" + url.PathEscape(clearinghouseID) + "/status"
	if err := c.call(ctx, "status", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPreAuth asks for advance approval of planned services.
func (c *Client) RequestPreAuth(ctx context.Context, req *PreAuthRequest) (*PreAuthResult, error) {
	var out PreAuthResult
	if err := c.call(ctx, "preauth", http.MethodPost, "/preauth", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReconcilePayment reports a received remittance against a claim.
func (c *Client) ReconcilePayment(ctx context.Context, rec *PaymentReconciliation) (*ReconcileResult, error) {
	var out ReconcileResult
	if err := c.call(ctx, "reconcile", http.MethodPost, "/payments/reconcile", rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// call runs one authenticated request with the retry policy and decodes
// the JSON response into out.
func (c *Client) call(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	err := c.do(ctx, op, method, path, body, out)
	c.metrics.record(op, time.Since(start), err)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
	}

	token, err := c.tokens.token(ctx, false, c.fetchToken)
	if err != nil {
		return err
	}

	refreshed := false
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := backoffBase << (attempt - 2)
			c.log.Debug().Str("op", op).Int("attempt", attempt).Dur("delay", delay).Msg("retrying clearinghouse request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &TransientError{Op: op, Err: ctx.Err()}
			}
		}

		status, respBody, err := c.once(ctx, method, path, encoded, token)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case status >= 200 && status < 300:
			if out == nil || len(respBody) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decode %s response: %w", op, err)
			}
			return nil

		case status == http.StatusUnauthorized && !refreshed:
			// One forced refresh, one immediate retry. A second 401
			// falls through to rejection below.
			refreshed = true
			token, err = c.tokens.token(ctx, true, c.fetchToken)
			if err != nil {
				return err
			}
			attempt-- // the refresh retry does not consume the budget
			continue

		case status >= 500:
			lastErr = fmt.Errorf("server returned %d", status)
			continue

		default:
			return rejectionFrom(status, respBody)
		}
	}
	return &TransientError{Op: op, Err: lastErr}
}

// once performs a single HTTP round trip.
func (c *Client) once(ctx context.Context, method, path string, body []byte, token string) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// rejectionFrom decodes a 4xx body into a RejectionError, tolerating
// payers that return plain text.
func rejectionFrom(status int, body []byte) *RejectionError {
	var wire struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	rej := &RejectionError{StatusCode: status}
	if err := json.Unmarshal(body, &wire); err == nil {
		rej.Code = wire.Code
		rej.Message = wire.Message
		if rej.Message == "" {
			rej.Message = wire.Error
		}
	}
	if rej.Message == "" {
		rej.Message = strings.TrimSpace(string(body))
	}
	if rej.Message == "" {
		rej.Message = http.StatusText(status)
	}
	return rej
}
