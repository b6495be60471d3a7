// Package gateway is the client for the external verification provider:
// identity checks and traditional credit-bureau factors. Calls are bounded
// by a timeout; callers are expected to degrade gracefully when the
// provider is unreachable.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable is returned when the provider cannot be reached in time or
// answers with a server error. Callers fall back to last-known factors.
var ErrUnavailable = errors.New("verification provider unavailable")

// TraditionalFactors are the bureau-sourced score inputs, each in [0,100].
type TraditionalFactors struct {
	PaymentHistory    float64 `json:"payment_history"`
	CreditUtilization float64 `json:"credit_utilization"`
	CreditHistory     float64 `json:"credit_history"`
}

// VerificationGateway is consumed by the score engine. The HTTP client below
// is the production implementation; tests substitute their own.
type VerificationGateway interface {
	FetchTraditionalFactors(ctx context.Context, userID uint) (*TraditionalFactors, error)
	VerifyIdentity(ctx context.Context, userID uint) (bool, error)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	timeout time.Duration
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (c *Client) FetchTraditionalFactors(ctx context.Context, userID uint) (*TraditionalFactors, error) {
	var resp struct {
		Data TraditionalFactors `json:"data"`
	}
	if err := c.post(ctx, "/credit-score/traditional", map[string]interface{}{"user_id": userID}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) VerifyIdentity(ctx context.Context, userID uint) (bool, error) {
	var resp struct {
		Data struct {
			Verified bool `json:"verified"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/identity/verify", map[string]interface{}{"user_id": userID}, &resp); err != nil {
		return false, err
	}
	return resp.Data.Verified, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verification provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
