package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Service is the Inventory Service surface the console depends on.
// Handlers take this interface so tests can assert that precondition
// failures never reach the network.
type Service interface {
	SearchVariants(ctx context.Context, query string, limit int) ([]Variant, error)
	SearchVendors(ctx context.Context, query string) ([]Vendor, error)
	SubmitReceipt(ctx context.Context, req ReceiptRequest) (*Receipt, error)
	FetchDispatch(ctx context.Context, dispatchID int64) (*Dispatch, error)
	SubmitDispatchReceive(ctx context.Context, dispatchID int64, req DispatchReceiveRequest) error
	DownloadTemplate(ctx context.Context) ([]byte, string, error)
}

// Client talks to the Inventory Service over HTTP.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient builds a client for the given base URL and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

var _ Service = (*Client)(nil)

// SearchVariants resolves free text to product variants.
func (c *Client) SearchVariants(ctx context.Context, query string, limit int) ([]Variant, error) {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}}
	body, _, err := c.do(ctx, http.MethodGet, "/variants/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	variants := make([]Variant, 0)
	if err := unwrapEnvelope(body, &variants); err != nil {
		return nil, err
	}
	return variants, nil
}

// SearchVendors resolves free text to vendors for the receipt header.
func (c *Client) SearchVendors(ctx context.Context, query string) ([]Vendor, error) {
	q := url.Values{"q": {query}}
	body, _, err := c.do(ctx, http.MethodGet, "/vendors/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	vendors := make([]Vendor, 0)
	if err := unwrapEnvelope(body, &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

// SubmitReceipt creates a goods-received-note from one batched request.
// A structured rejection comes back as *ValidationError; anything else is
// a plain error.
func (c *Client) SubmitReceipt(ctx context.Context, req ReceiptRequest) (*Receipt, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/receipts/bulk", req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
		var vErr ValidationError
		if uerr := unwrapEnvelope(body, &vErr); uerr == nil && len(vErr.Rows) > 0 {
			return nil, &vErr
		}
		return nil, fmt.Errorf("receipt rejected: %s", errorMessage(body, status))
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("submit receipt: %s", errorMessage(body, status))
	}
	var receipt Receipt
	if err := unwrapEnvelope(body, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// FetchDispatch loads the manifest with cumulative counters for a dispatch.
func (c *Client) FetchDispatch(ctx context.Context, dispatchID int64) (*Dispatch, error) {
	body, _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/dispatches/%d", dispatchID), nil)
	if err != nil {
		return nil, err
	}
	var dispatch Dispatch
	if err := unwrapEnvelope(body, &dispatch); err != nil {
		return nil, err
	}
	return &dispatch, nil
}

// SubmitDispatchReceive records a partial or full reconciliation. There is
// no per-item error contract; failures are all-or-nothing.
func (c *Client) SubmitDispatchReceive(ctx context.Context, dispatchID int64, req DispatchReceiveRequest) error {
	body, status, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/dispatches/%d/receive", dispatchID), req)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusNoContent {
		return fmt.Errorf("dispatch receive: %s", errorMessage(body, status))
	}
	return nil
}

// DownloadTemplate fetches the bulk paste CSV template as an opaque blob.
func (c *Client) DownloadTemplate(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/receipts/template.csv", nil)
	if err != nil {
		return nil, "", err
	}
	c.setHeaders(req)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download template: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download template: status %d", resp.StatusCode)
	}
	blob, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, "", fmt.Errorf("download template: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/csv"
	}
	return blob, contentType, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (body []byte, status int, err error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	c.setHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("inventory service: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	// GETs surface non-2xx uniformly here; POST callers inspect the status
	// themselves to pull out structured validation payloads.
	if method == http.MethodGet && resp.StatusCode != http.StatusOK {
		return body, resp.StatusCode, fmt.Errorf("inventory service: %s", errorMessage(body, resp.StatusCode))
	}
	return body, resp.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func errorMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := unwrapEnvelope(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("status %d", status)
}
