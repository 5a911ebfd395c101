// Package relief provides a Go client for the relief ledger HTTP API.
package relief

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v5"
)

// Client is the interface for interacting with the relief ledger API.
type Client interface {
	// RegisterCampaign creates a campaign coordinated by the token's identity.
	RegisterCampaign(ctx context.Context, c NewCampaign) (Campaign, error)

	// Contribute donates amount to the campaign on behalf of the token's identity.
	Contribute(ctx context.Context, campaignID, amount int64) error

	// SubmitRequest files a relief request against a campaign.
	SubmitRequest(ctx context.Context, campaignID int64, r NewRequest) (Request, error)

	// FulfillRequest marks a relief request fulfilled.
	FulfillRequest(ctx context.Context, requestID int64) (Request, error)

	// Withdraw moves amount from the campaign to its coordinator.
	Withdraw(ctx context.Context, campaignID, amount int64) error

	// AuthorizeCoordinator grants coordinator status to identity (owner only).
	AuthorizeCoordinator(ctx context.Context, identity string) error

	// DeactivateCampaign permanently stops a campaign.
	DeactivateCampaign(ctx context.Context, campaignID int64) error

	// Campaign fetches one campaign.
	Campaign(ctx context.Context, campaignID int64) (Campaign, error)

	// Request fetches one relief request.
	Request(ctx context.Context, requestID int64) (Request, error)

	// Donations lists a campaign's donation records in order.
	Donations(ctx context.Context, campaignID int64) ([]Donation, error)

	// Summary fetches the aggregate ledger counters.
	Summary(ctx context.Context) (Summary, error)
}

type clientOption struct {
	baseURL string
	token   string
	doRetry bool
	httpc   *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientOption)

// WithBaseURL points the client at a relief ledger deployment.
func WithBaseURL(url string) ClientOption {
	return func(opt *clientOption) { opt.baseURL = strings.TrimRight(url, "/") }
}

// WithToken sets the bearer token carrying the caller identity.
func WithToken(token string) ClientOption {
	return func(opt *clientOption) { opt.token = token }
}

// WithRetry retries transient failures with exponential backoff.
func WithRetry() ClientOption {
	return func(opt *clientOption) { opt.doRetry = true }
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(opt *clientOption) { opt.httpc = c }
}

type reliefClient struct {
	opts clientOption
}

// NewClient creates a relief ledger API client.
func NewClient(options ...ClientOption) (Client, error) {
	opts := clientOption{httpc: http.DefaultClient}
	for _, o := range options {
		o(&opts)
	}
	if opts.baseURL == "" {
		return nil, errors.New("missing base URL")
	}
	if opts.token == "" {
		return nil, errors.New("missing bearer token")
	}
	return &reliefClient{opts: opts}, nil
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relief api: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

func (c *reliefClient) request(ctx context.Context, method, path string, payload, out any) error {
	operation := func() ([]byte, error) {
		var body io.Reader
		if payload != nil {
			buf := &bytes.Buffer{}
			if err := json.NewEncoder(buf).Encode(payload); err != nil {
				return nil, backoff.Permanent(err)
			}
			body = buf
		}
		req, err := http.NewRequestWithContext(ctx, method, c.opts.baseURL+path, body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.opts.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.opts.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}

		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed apiError
		if err := json.Unmarshal(data, &parsed); err == nil {
			apiErr.Code = parsed.Error.Code
			apiErr.Message = parsed.Error.Message
		}
		if resp.StatusCode >= 500 {
			// Server-side failures are worth retrying.
			return nil, apiErr
		}
		return nil, backoff.Permanent(error(apiErr))
	}

	var data []byte
	var err error
	if c.opts.doRetry {
		data, err = backoff.Retry(ctx, operation, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(4))
	} else {
		data, err = operation()
	}
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *reliefClient) RegisterCampaign(ctx context.Context, nc NewCampaign) (Campaign, error) {
	var out Campaign
	err := c.request(ctx, http.MethodPost, "/v1/campaigns", nc, &out)
	return out, err
}

func (c *reliefClient) Contribute(ctx context.Context, campaignID, amount int64) error {
	path := fmt.Sprintf("/v1/campaigns/%d/contributions", campaignID)
	return c.request(ctx, http.MethodPost, path, map[string]int64{"amount": amount}, nil)
}

func (c *reliefClient) SubmitRequest(ctx context.Context, campaignID int64, nr NewRequest) (Request, error) {
	var out Request
	path := fmt.Sprintf("/v1/campaigns/%d/requests", campaignID)
	err := c.request(ctx, http.MethodPost, path, nr, &out)
	return out, err
}

func (c *reliefClient) FulfillRequest(ctx context.Context, requestID int64) (Request, error) {
	var out Request
	path := fmt.Sprintf("/v1/requests/%d/fulfill", requestID)
	err := c.request(ctx, http.MethodPost, path, nil, &out)
	return out, err
}

func (c *reliefClient) Withdraw(ctx context.Context, campaignID, amount int64) error {
	path := fmt.Sprintf("/v1/campaigns/%d/withdrawals", campaignID)
	return c.request(ctx, http.MethodPost, path, map[string]int64{"amount": amount}, nil)
}

func (c *reliefClient) AuthorizeCoordinator(ctx context.Context, identity string) error {
	return c.request(ctx, http.MethodPost, "/v1/coordinators", map[string]string{"identity": identity}, nil)
}

func (c *reliefClient) DeactivateCampaign(ctx context.Context, campaignID int64) error {
	path := fmt.Sprintf("/v1/campaigns/%d/deactivate", campaignID)
	return c.request(ctx, http.MethodPost, path, nil, nil)
}

func (c *reliefClient) Campaign(ctx context.Context, campaignID int64) (Campaign, error) {
	var out Campaign
	err := c.request(ctx, http.MethodGet, fmt.Sprintf("/v1/campaigns/%d", campaignID), nil, &out)
	return out, err
}

func (c *reliefClient) Request(ctx context.Context, requestID int64) (Request, error) {
	var out Request
	err := c.request(ctx, http.MethodGet, fmt.Sprintf("/v1/requests/%d", requestID), nil, &out)
	return out, err
}

func (c *reliefClient) Donations(ctx context.Context, campaignID int64) ([]Donation, error) {
	var out struct {
		Items []Donation `json:"items"`
	}
	err := c.request(ctx, http.MethodGet, fmt.Sprintf("/v1/campaigns/%d/donations", campaignID), nil, &out)
	return out.Items, err
}

func (c *reliefClient) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	err := c.request(ctx, http.MethodGet, "/v1/ledger", nil, &out)
	return out, err
}
