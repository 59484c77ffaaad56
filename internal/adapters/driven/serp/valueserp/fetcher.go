package valueserp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driven"
)

// Ensure DocumentFetcher implements the interface.
var _ driven.ResultFetcher = (*DocumentFetcher)(nil)

// DocumentFetcher downloads and parses per-query result documents from the
// locations a completed batch exposes. Documents are heterogeneous: some
// queries return no organic results at all (knowledge-panel-only responses),
// so extraction is tolerant and degrades to empty link lists.
type DocumentFetcher struct {
	client *http.Client
}

// NewDocumentFetcher creates a result-document fetcher.
func NewDocumentFetcher() *DocumentFetcher {
	return &DocumentFetcher{
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// resultDocument mirrors the wire shape of one result page: a JSON array of
// entries, each nesting the echoed search parameters and, when the SERP had
// any, the organic results.
type resultDocument []struct {
	Result struct {
		SearchParameters struct {
			Q string `json:"q"`
		} `json:"search_parameters"`
		OrganicResults []struct {
			Link string `json:"link"`
		} `json:"organic_results"`
	} `json:"result"`
}

// Fetch retrieves one result document and extracts a ResultRecord per entry.
// A non-200 status yields a *domain.FetchError. Entries without organic
// results produce a record with empty links plus a warning naming the query;
// entries without a query are skipped with a warning. A malformed entry never
// fails the whole document.
func (f *DocumentFetcher) Fetch(ctx context.Context, location string) ([]domain.ResultRecord, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, &domain.FetchError{Location: location, Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &domain.FetchError{Location: location, Body: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, &domain.FetchError{Location: location, Status: resp.StatusCode, Body: truncate(raw)}
	}

	var doc resultDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, &domain.FetchError{Location: location, Body: "malformed document: " + err.Error()}
	}

	records := make([]domain.ResultRecord, 0, len(doc))
	var warnings []string
	for _, entry := range doc {
		query := entry.Result.SearchParameters.Q
		if query == "" {
			warnings = append(warnings, fmt.Sprintf("result entry without query in %s, skipped", location))
			continue
		}

		links := make([]string, 0, len(entry.Result.OrganicResults))
		for _, organic := range entry.Result.OrganicResults {
			if organic.Link != "" {
				links = append(links, organic.Link)
			}
		}
		if len(links) == 0 {
			warnings = append(warnings, fmt.Sprintf("no organic results for query %q", query))
		}

		records = append(records, domain.ResultRecord{Query: query, Links: links})
	}

	return records, warnings, nil
}
