package valueserp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[
			{"result":{"search_parameters":{"q":"best running shoes"},"organic_results":[{"link":"https://a.example"},{"link":"https://b.example"}]}},
			{"result":{"search_parameters":{"q":"trail shoes"},"organic_results":[{"link":"https://c.example"}]}}
		]`)
	}))
	defer server.Close()

	fetcher := NewDocumentFetcher()
	records, warnings, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, records, 2)
	assert.Equal(t, "best running shoes", records[0].Query)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, records[0].Links)
	assert.Equal(t, []string{"https://c.example"}, records[1].Links)
}

func TestFetch_NoOrganicResults(t *testing.T) {
	// Knowledge-panel-only responses carry no organic_results key at all.
	// The query still comes back, with empty links and a warning.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"result":{"search_parameters":{"q":"nike"}}}]`)
	}))
	defer server.Close()

	fetcher := NewDocumentFetcher()
	records, warnings, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "nike", records[0].Query)
	assert.NotNil(t, records[0].Links)
	assert.Empty(t, records[0].Links)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "nike")
}

func TestFetch_EntryWithoutQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[
			{"result":{"search_parameters":{}}},
			{"result":{"search_parameters":{"q":"trail shoes"},"organic_results":[{"link":"https://c.example"}]}}
		]`)
	}))
	defer server.Close()

	fetcher := NewDocumentFetcher()
	records, warnings, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "trail shoes", records[0].Query)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "skipped")
}

func TestFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "expired link")
	}))
	defer server.Close()

	fetcher := NewDocumentFetcher()
	_, _, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.Status)
	assert.Contains(t, fetchErr.Body, "expired link")
}

func TestFetch_MalformedDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"not":"an array"}`)
	}))
	defer server.Close()

	fetcher := NewDocumentFetcher()
	_, _, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Body, "malformed document")
}
