// Package searchblend implements the clustering driven port against the
// remote SERP-based clustering cloud function. The wire format is a
// column-oriented table with stringified row indices, the shape a pandas
// DataFrame round-trips through to_dict().
package searchblend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driven"
)

const (
	// DefaultEndpoint is the production clustering function URL.
	DefaultEndpoint = "https://us-central1-searchblend.cloudfunctions.net/serp-based-clustering"

	// DefaultTimeout is the request timeout. Clustering a large keyword
	// set is slow; this is deliberately generous.
	DefaultTimeout = 5 * time.Minute

	// maxErrorBody caps how much of an error response body is carried
	// in an APIError.
	maxErrorBody = 2048
)

// Column names of the outgoing unified table.
const (
	colKeyword = "Keyword"
	colVolume  = "Volume"
	colURLs    = "URLs"
)

// Column names of the incoming cluster table.
const (
	colClusterName = "Cluster Name"
	colClusterKey  = "Keyword"
	colClusterSize = "Number of Keywords in Cluster"
)

// Ensure Gateway implements the interface.
var _ driven.ClusteringService = (*Gateway)(nil)

// Gateway sends unified records to the remote clustering capability and
// parses the returned assignment table. Pure pass-through: the input set is
// never mutated or filtered, and cluster membership is not validated locally.
type Gateway struct {
	endpoint string
	client   *http.Client
}

// NewGateway creates a clustering gateway.
// endpoint falls back to DefaultEndpoint when empty.
func NewGateway(endpoint string) *Gateway {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Gateway{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
}

// Cluster implements driven.ClusteringService.
func (g *Gateway) Cluster(ctx context.Context, records []domain.UnifiedRecord, minCommonLinks int) ([]domain.ClusterAssignment, error) {
	payload, err := json.Marshal(map[string]any{
		"serp_df":    encodeFrame(records),
		"common_num": minCommonLinks,
	})
	if err != nil {
		return nil, fmt.Errorf("encode clustering request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build clustering request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call clustering service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read clustering response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := raw
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &domain.APIError{Op: "cluster records", Status: resp.StatusCode, Body: string(body)}
	}

	assignments, err := decodeFrame(raw)
	if err != nil {
		return nil, &domain.APIError{Op: "cluster records", Body: err.Error()}
	}
	return assignments, nil
}

// encodeFrame converts records to the column-oriented mapping the service
// expects: {"Keyword": {"0": q0, "1": q1, ...}, "Volume": {...}, "URLs": {...}}.
func encodeFrame(records []domain.UnifiedRecord) map[string]map[string]any {
	keywords := make(map[string]any, len(records))
	volumes := make(map[string]any, len(records))
	urls := make(map[string]any, len(records))

	for i, r := range records {
		idx := strconv.Itoa(i)
		keywords[idx] = r.Query
		volumes[idx] = r.Volume
		urls[idx] = r.Links
	}

	return map[string]map[string]any{
		colKeyword: keywords,
		colVolume:  volumes,
		colURLs:    urls,
	}
}

// decodeFrame parses the column-oriented cluster table back into rows.
// Row order follows the numeric value of the stringified indices.
func decodeFrame(raw []byte) ([]domain.ClusterAssignment, error) {
	var frame struct {
		ClusterName map[string]string      `json:"Cluster Name"`
		Keyword     map[string]string      `json:"Keyword"`
		ClusterSize map[string]json.Number `json:"Number of Keywords in Cluster"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("malformed cluster table: %w", err)
	}
	if frame.Keyword == nil {
		return nil, fmt.Errorf("cluster table missing %q column", colClusterKey)
	}

	indices := make([]int, 0, len(frame.Keyword))
	for idx := range frame.Keyword {
		n, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("non-numeric row index %q in cluster table", idx)
		}
		indices = append(indices, n)
	}
	slices.Sort(indices)

	assignments := make([]domain.ClusterAssignment, 0, len(indices))
	for _, n := range indices {
		idx := strconv.Itoa(n)

		size := 0
		if v, ok := frame.ClusterSize[idx]; ok {
			// Sizes may arrive as floats (pandas int64 -> JSON).
			f, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("row %s: bad cluster size %q", idx, v.String())
			}
			size = int(f)
		}

		assignments = append(assignments, domain.ClusterAssignment{
			ClusterName: frame.ClusterName[idx],
			Query:       frame.Keyword[idx],
			ClusterSize: size,
		})
	}

	return assignments, nil
}
