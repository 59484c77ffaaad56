package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrColumnNotFound indicates a required column is absent from the
	// input table. Wrapped with the column name at the call site.
	ErrColumnNotFound = errors.New("column not found")

	// ErrEmptySource indicates the input table has no data rows.
	ErrEmptySource = errors.New("input table is empty")

	// ErrInvalidVolume indicates a non-numeric, non-empty volume cell.
	ErrInvalidVolume = errors.New("invalid volume value")

	// ErrDuplicateQuery indicates the keyword set handed to the join
	// still contains duplicate query keys.
	ErrDuplicateQuery = errors.New("duplicate query")

	// ErrBatchTimeout indicates the batch did not reach a terminal
	// state within the configured poll budget.
	ErrBatchTimeout = errors.New("batch polling timed out")

	// ErrBatchFailed indicates the remote service reported the batch
	// as failed. Terminal; runs are retried manually by the operator.
	ErrBatchFailed = errors.New("batch failed remotely")

	// ErrAPIKeyMissing indicates no SERP API key is configured.
	ErrAPIKeyMissing = errors.New("API key not configured")

	// ErrNoKeywords indicates normalization filtered out every row.
	ErrNoKeywords = errors.New("no keywords left after normalization")
)

// APIError is a failed call to the batch or clustering service.
// Any non-2xx response or malformed response body produces one; the body is
// carried verbatim for diagnosis.
type APIError struct {
	// Op names the failed operation (e.g., "create batch").
	Op string

	// Status is the HTTP status code, 0 for malformed-body failures.
	Status int

	// Body is the raw response body, possibly truncated.
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Body)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

// FetchError is a failed download of a single result document.
// Non-fatal: the collector logs it and continues with other locations.
type FetchError struct {
	// Location is the result-document URL.
	Location string

	// Status is the HTTP status code, 0 for transport errors.
	Status int

	// Body is the raw response body or transport error text.
	Body string
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s: %s", e.Location, e.Body)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d: %s", e.Location, e.Status, e.Body)
}
