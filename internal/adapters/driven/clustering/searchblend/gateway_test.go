package searchblend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

func testRecords() []domain.UnifiedRecord {
	return []domain.UnifiedRecord{
		{Query: "best running shoes", Volume: 1000, Links: []string{"https://a.example", "https://b.example"}},
		{Query: "trail shoes", Volume: 200, Links: []string{"https://b.example"}},
	}
}

func TestCluster_RequestShape(t *testing.T) {
	var gotBody map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"Cluster Name":{},"Keyword":{},"Number of Keywords in Cluster":{}}`)
	}))
	defer server.Close()

	gateway := NewGateway(server.URL)
	_, err := gateway.Cluster(context.Background(), testRecords(), 4)
	require.NoError(t, err)

	var commonNum int
	require.NoError(t, json.Unmarshal(gotBody["common_num"], &commonNum))
	assert.Equal(t, 4, commonNum)

	// The table goes over the wire column-oriented with stringified row
	// indices.
	var frame map[string]map[string]any
	require.NoError(t, json.Unmarshal(gotBody["serp_df"], &frame))
	assert.Equal(t, "best running shoes", frame["Keyword"]["0"])
	assert.Equal(t, "trail shoes", frame["Keyword"]["1"])
	assert.Equal(t, float64(1000), frame["Volume"]["0"])
	assert.Equal(t, []any{"https://b.example"}, frame["URLs"]["1"])
}

func TestCluster_DecodesResponse(t *testing.T) {
	// Cluster sizes arrive as floats; indices come back unordered.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"Cluster Name": {"1": "trail", "0": "running shoes"},
			"Keyword": {"1": "trail shoes", "0": "best running shoes"},
			"Number of Keywords in Cluster": {"1": 1.0, "0": 2.0}
		}`)
	}))
	defer server.Close()

	gateway := NewGateway(server.URL)
	assignments, err := gateway.Cluster(context.Background(), testRecords(), 4)
	require.NoError(t, err)

	require.Len(t, assignments, 2)
	assert.Equal(t, domain.ClusterAssignment{ClusterName: "running shoes", Query: "best running shoes", ClusterSize: 2}, assignments[0])
	assert.Equal(t, domain.ClusterAssignment{ClusterName: "trail", Query: "trail shoes", ClusterSize: 1}, assignments[1])
}

func TestCluster_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "clustering backend exploded")
	}))
	defer server.Close()

	gateway := NewGateway(server.URL)
	_, err := gateway.Cluster(context.Background(), testRecords(), 4)
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "clustering backend exploded", apiErr.Body)
}

func TestCluster_MissingKeywordColumn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"Cluster Name":{"0":"x"}}`)
	}))
	defer server.Close()

	gateway := NewGateway(server.URL)
	_, err := gateway.Cluster(context.Background(), testRecords(), 4)
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Body, "Keyword")
}

func TestCluster_NonNumericIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"Cluster Name":{"a":"x"},"Keyword":{"a":"y"},"Number of Keywords in Cluster":{"a":1}}`)
	}))
	defer server.Close()

	gateway := NewGateway(server.URL)
	_, err := gateway.Cluster(context.Background(), testRecords(), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-numeric")
}

func TestCluster_EmptyInputPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"Cluster Name":{},"Keyword":{},"Number of Keywords in Cluster":{}}`)
	}))
	defer server.Close()

	gateway := NewGateway(server.URL)
	assignments, err := gateway.Cluster(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}
