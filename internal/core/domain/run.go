package domain

import "time"

// RunState is the recorded outcome of a pipeline run.
type RunState string

const (
	// RunSucceeded means the run produced a cluster table.
	RunSucceeded RunState = "succeeded"

	// RunFailed means the run aborted before producing output.
	RunFailed RunState = "failed"
)

// RunRecord is the persisted history entry for one pipeline run.
type RunRecord struct {
	// ID is the unique run identifier.
	ID string

	// BatchID is the remote batch created for the run.
	// Empty if the run failed before batch creation.
	BatchID string

	// BatchName is the name the batch was created under.
	BatchName string

	// State records whether the run succeeded.
	State RunState

	// KeywordCount is the number of keywords enqueued after
	// normalization and deduplication.
	KeywordCount int

	// LocationCount is the number of result documents retrieved.
	LocationCount int

	// ClusterCount is the number of distinct clusters returned.
	ClusterCount int

	// WarningCount is the number of non-fatal warnings raised.
	WarningCount int

	// Error is the fatal error message for failed runs, empty otherwise.
	Error string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run reached a terminal state.
	FinishedAt time.Time
}
