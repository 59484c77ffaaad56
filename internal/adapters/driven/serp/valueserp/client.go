// Package valueserp implements the batch-service driven ports against the
// ValueSERP HTTP API. All requests authenticate with an API key passed as a
// query parameter; the key is never logged.
package valueserp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driven"
	"github.com/custodia-labs/serpcluster-cli/internal/logger"
)

const (
	// DefaultBaseURL is the production ValueSERP API endpoint.
	DefaultBaseURL = "https://api.valueserp.com"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// maxEnqueueChunk is the remote per-request search limit.
	maxEnqueueChunk = 1000

	// maxErrorBody caps how much of an error response body is carried
	// in an APIError.
	maxErrorBody = 2048
)

// Ensure Client implements the interface.
var _ driven.BatchService = (*Client)(nil)

// Client is a thin typed wrapper over the ValueSERP batch API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a batch API client.
// baseURL falls back to DefaultBaseURL when empty.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// batchEnvelope is the {batch: {...}} wrapper every batch endpoint returns.
type batchEnvelope struct {
	Batch struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"batch"`
}

// CreateBatch creates a new batch with the fixed job policy:
// enabled, manual schedule, highest priority.
func (c *Client) CreateBatch(ctx context.Context, name string) (string, error) {
	body := map[string]any{
		"name":          name,
		"enabled":       true,
		"schedule_type": "manual",
		"priority":      "highest",
	}

	var env batchEnvelope
	if err := c.do(ctx, http.MethodPost, "/batches", body, "create batch", &env); err != nil {
		return "", err
	}
	if env.Batch.ID == "" {
		return "", &domain.APIError{Op: "create batch", Body: "response missing batch.id"}
	}
	return env.Batch.ID, nil
}

// EnqueueQueries pushes one search entry per keyword record, chunked at the
// remote per-request limit. Each entry carries the shared search parameters
// plus the individual query text.
func (c *Client) EnqueueQueries(ctx context.Context, batchID string, records []domain.KeywordRecord, params domain.SearchParameters) error {
	for start := 0; start < len(records); start += maxEnqueueChunk {
		end := min(start+maxEnqueueChunk, len(records))

		searches := make([]map[string]string, 0, end-start)
		for _, r := range records[start:end] {
			searches = append(searches, searchEntry(r.Query, params))
		}

		body := map[string]any{"searches": searches}
		if err := c.do(ctx, http.MethodPut, "/batches/"+batchID, body, "enqueue queries", nil); err != nil {
			return err
		}
		logger.Debug("Enqueued searches %d-%d into batch %s", start+1, end, batchID)
	}
	return nil
}

// StartBatch transitions the batch to running. The remote service accepts a
// start on an already-running batch and re-returns its current status.
func (c *Client) StartBatch(ctx context.Context, batchID string) (domain.BatchStatus, error) {
	var env batchEnvelope
	if err := c.do(ctx, http.MethodGet, "/batches/"+batchID+"/start", nil, "start batch", &env); err != nil {
		return "", err
	}
	return domain.ParseBatchStatus(env.Batch.Status), nil
}

// GetStatus returns the batch's current lifecycle status.
func (c *Client) GetStatus(ctx context.Context, batchID string) (domain.BatchStatus, error) {
	var env batchEnvelope
	if err := c.do(ctx, http.MethodGet, "/batches/"+batchID, nil, "get batch status", &env); err != nil {
		return "", err
	}
	return domain.ParseBatchStatus(env.Batch.Status), nil
}

// ListResultLocations returns the result-document URL for every enqueued
// query of a completed batch.
func (c *Client) ListResultLocations(ctx context.Context, batchID string) ([]string, error) {
	var resp struct {
		Result struct {
			DownloadLinks struct {
				Pages []string `json:"pages"`
			} `json:"download_links"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/batches/"+batchID+"/results/latest", nil, "list result locations", &resp); err != nil {
		return nil, err
	}
	return resp.Result.DownloadLinks.Pages, nil
}

// searchEntry builds one enqueue entry. Empty parameter fields are omitted
// so the remote service applies its own defaults.
func searchEntry(query string, params domain.SearchParameters) map[string]string {
	entry := map[string]string{"q": query}
	if params.Location != "" {
		entry["location"] = params.Location
	}
	if params.Language != "" {
		entry["hl"] = params.Language
	}
	if params.Country != "" {
		entry["gl"] = params.Country
	}
	if params.Domain != "" {
		entry["google_domain"] = params.Domain
	}
	return entry
}

// do performs one API request and decodes the response into out (when
// non-nil). Any non-2xx status or undecodable body yields a *domain.APIError
// carrying the status and raw body.
func (c *Client) do(ctx context.Context, method, path string, body any, op string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("%s: parse endpoint: %w", op, err)
	}
	q := endpoint.Query()
	q.Set("api_key", c.apiKey)
	endpoint.RawQuery = q.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.APIError{Op: op, Status: resp.StatusCode, Body: truncate(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &domain.APIError{Op: op, Body: truncate(raw)}
		}
	}
	return nil
}

// truncate bounds an error body for diagnostics.
func truncate(raw []byte) string {
	if len(raw) > maxErrorBody {
		return string(raw[:maxErrorBody]) + "..."
	}
	return string(raw)
}
