package payments

// Package payments resolves a user's payment standing from the billing
// service. Results are fetched per gate evaluation and never cached here.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/target/studio-ui-auth/internal/errors"
)

// ClientOptions groups configuration for the billing service client.
type ClientOptions struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each status request. Defaults to 5s when zero.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements ports.PaymentStatusService against the billing service
// HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a billing service client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("payments: base URL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("payments: invalid base URL: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: httpClient,
	}, nil
}

// statusResponse is the billing service's subscription status payload.
type statusResponse struct {
	Active bool `json:"active"`
}

// HasActivePayment reports whether the user holds an active subscription.
// Unknown users are reported as inactive, not as errors.
func (c *Client) HasActivePayment(ctx context.Context, userID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/subscriptions/%s/status", c.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeTransient, "payment status request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return false, nil
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return false, apperrors.Transient(fmt.Sprintf("payment status: unexpected status %d", resp.StatusCode))
	}

	var status statusResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&status); err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeTransient, "decode payment status")
	}
	return status.Active, nil
}

// Static reports a fixed payment standing for every user. Used in dev mode
// where no billing service is running.
type Static struct {
	Active bool
}

// HasActivePayment implements ports.PaymentStatusService.
func (s Static) HasActivePayment(context.Context, string) (bool, error) {
	return s.Active, nil
}
