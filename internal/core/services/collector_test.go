package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

// mockFetcher implements driven.ResultFetcher for testing.
type mockFetcher struct {
	mu       sync.Mutex
	fetched  []string
	records  map[string][]domain.ResultRecord
	warnings map[string][]string
	errs     map[string]error
}

func (m *mockFetcher) Fetch(_ context.Context, location string) ([]domain.ResultRecord, []string, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, location)
	m.mu.Unlock()

	if err := m.errs[location]; err != nil {
		return nil, nil, err
	}
	return m.records[location], m.warnings[location], nil
}

func TestCollect_AggregatesAllLocations(t *testing.T) {
	fetcher := &mockFetcher{
		records: map[string][]domain.ResultRecord{
			"https://r.example/1": {{Query: "alpha keyword", Links: []string{"https://a.example"}}},
			"https://r.example/2": {{Query: "beta keyword", Links: []string{}}},
		},
	}

	collector := NewCollector(fetcher, 2)
	records, warnings := collector.Collect(context.Background(), []string{"https://r.example/1", "https://r.example/2"})

	require.Len(t, records, 2)
	assert.Empty(t, warnings)
	assert.Len(t, fetcher.fetched, 2)
}

func TestCollect_FetchErrorIsNonFatal(t *testing.T) {
	fetcher := &mockFetcher{
		records: map[string][]domain.ResultRecord{
			"https://r.example/good": {{Query: "alpha keyword", Links: []string{"https://a.example"}}},
		},
		errs: map[string]error{
			"https://r.example/bad": &domain.FetchError{Location: "https://r.example/bad", Status: 500, Body: "boom"},
		},
	}

	collector := NewCollector(fetcher, 2)
	records, warnings := collector.Collect(context.Background(), []string{"https://r.example/bad", "https://r.example/good"})

	require.Len(t, records, 1)
	assert.Equal(t, "alpha keyword", records[0].Query)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "https://r.example/bad")
}

func TestCollect_PropagatesDocumentWarnings(t *testing.T) {
	fetcher := &mockFetcher{
		records: map[string][]domain.ResultRecord{
			"https://r.example/1": {{Query: "alpha keyword", Links: []string{}}},
		},
		warnings: map[string][]string{
			"https://r.example/1": {`no organic results for query "alpha keyword"`},
		},
	}

	collector := NewCollector(fetcher, 1)
	records, warnings := collector.Collect(context.Background(), []string{"https://r.example/1"})

	require.Len(t, records, 1)
	assert.NotNil(t, records[0].Links)
	assert.Empty(t, records[0].Links)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "alpha keyword")
}

func TestCollect_EmptyLocationList(t *testing.T) {
	collector := NewCollector(&mockFetcher{}, 0)
	records, warnings := collector.Collect(context.Background(), nil)

	assert.Empty(t, records)
	assert.Empty(t, warnings)
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &mockFetcher{errs: map[string]error{
		"https://r.example/1": context.Canceled,
	}}
	collector := NewCollector(fetcher, 1)

	records, warnings := collector.Collect(ctx, []string{"https://r.example/1"})
	assert.Empty(t, records)
	assert.Empty(t, warnings)
}
