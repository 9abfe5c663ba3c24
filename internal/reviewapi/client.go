// Package reviewapi is the HTTP client for the remote review service. It
// covers exactly the three documented operations: starting a workflow,
// listing pending checkpoints, and submitting a reviewer decision. Every call
// is a single attempt; failures are returned to the caller, never retried.
package reviewapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kingrea/reviewdesk/internal/review"
)

// DefaultTimeout bounds each round trip when no custom HTTP client is given.
const DefaultTimeout = 10 * time.Second

// Client talks to one review service origin.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the given origin, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the configured service origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LineItem is one invoice line in a start request.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// StartRequest is the payload for POST /workflow/start.
type StartRequest struct {
	InvoiceID  string     `json:"invoice_id"`
	VendorName string     `json:"vendor_name"`
	Amount     float64    `json:"amount"`
	Currency   string     `json:"currency"`
	LineItems  []LineItem `json:"line_items"`
}

type statusReply struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	NextStage string `json:"next_stage"`
}

type pendingReply struct {
	Items []review.PendingItem `json:"items"`
}

// StartWorkflow begins a workflow for the given invoice. An empty currency
// defaults to USD and a nil line-item list is sent as an empty array, matching
// the documented payload.
func (c *Client) StartWorkflow(ctx context.Context, req StartRequest) (review.WorkflowStatus, error) {
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.LineItems == nil {
		req.LineItems = []LineItem{}
	}
	var reply statusReply
	if err := c.do(ctx, http.MethodPost, "/workflow/start", req, &reply); err != nil {
		return review.WorkflowStatus{}, err
	}
	return review.ParseWorkflowStatus(reply.Status, reply.Message, reply.NextStage), nil
}

// PendingReviews fetches the current snapshot of checkpoints awaiting a
// decision, in the order the server defines.
func (c *Client) PendingReviews(ctx context.Context) ([]review.PendingItem, error) {
	var reply pendingReply
	if err := c.do(ctx, http.MethodGet, "/human-review/pending", nil, &reply); err != nil {
		return nil, err
	}
	return reply.Items, nil
}

// SubmitDecision sends one reviewer decision and returns the workflow's
// resulting status.
func (c *Client) SubmitDecision(ctx context.Context, d review.Decision) (review.WorkflowStatus, error) {
	var reply statusReply
	if err := c.do(ctx, http.MethodPost, "/human-review/decision", d, &reply); err != nil {
		return review.WorkflowStatus{}, err
	}
	return review.ParseWorkflowStatus(reply.Status, reply.Message, reply.NextStage), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("reviewapi: encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("reviewapi: build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reviewapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		detail := strings.TrimSpace(string(snippet))
		if detail == "" {
			detail = resp.Status
		}
		return fmt.Errorf("reviewapi: %s %s: %s: %s", method, path, resp.Status, detail)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("reviewapi: decode %s response: %w", path, err)
	}
	return nil
}
