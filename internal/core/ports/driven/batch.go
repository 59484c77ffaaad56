package driven

import (
	"context"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

// BatchService is a thin typed wrapper over the remote batch-job API.
// The remote service is authoritative for all state; implementations do not
// retry or deduplicate beyond single-request semantics.
type BatchService interface {
	// CreateBatch creates a new named batch and returns its remote ID.
	// The batch is created with the fixed policy: enabled, manual
	// schedule, highest priority.
	CreateBatch(ctx context.Context, name string) (string, error)

	// EnqueueQueries pushes one search per keyword record, each carrying
	// the shared search parameters. Must be called before StartBatch;
	// enqueuing into a started batch is a caller error, not defended here.
	EnqueueQueries(ctx context.Context, batchID string, records []domain.KeywordRecord, params domain.SearchParameters) error

	// StartBatch transitions the batch to running and returns the
	// resulting status. Idempotent: starting an already-running batch
	// re-returns the current status without error.
	StartBatch(ctx context.Context, batchID string) (domain.BatchStatus, error)

	// GetStatus returns the batch's current lifecycle status.
	GetStatus(ctx context.Context, batchID string) (domain.BatchStatus, error)

	// ListResultLocations returns one result-document URL per enqueued
	// query. Valid only once the batch is completed.
	ListResultLocations(ctx context.Context, batchID string) ([]string, error)
}

// ResultFetcher downloads and parses a single result document.
// A non-200 response yields a *domain.FetchError; malformed entries inside
// an otherwise valid document degrade to records with empty links and are
// reported through the returned warnings, never as an error.
type ResultFetcher interface {
	// Fetch retrieves the document at location and extracts one
	// ResultRecord per entry, plus human-readable warnings for entries
	// that lacked organic results.
	Fetch(ctx context.Context, location string) ([]domain.ResultRecord, []string, error)
}
