package domain

// BatchStatus is the lifecycle state of a remote SERP batch.
type BatchStatus string

const (
	// BatchCreated means the batch exists remotely but has no queries yet.
	BatchCreated BatchStatus = "created"

	// BatchQueued means queries are enqueued but the batch has not started.
	BatchQueued BatchStatus = "queued"

	// BatchRunning means the remote service is retrieving SERPs.
	BatchRunning BatchStatus = "running"

	// BatchCompleted means all queries finished and results are downloadable.
	BatchCompleted BatchStatus = "completed"

	// BatchFailed means the remote service gave up on the batch.
	// Failed is terminal; there is no automatic retry.
	BatchFailed BatchStatus = "failed"
)

// Terminal reports whether the status ends the poll loop.
func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchFailed
}

// ParseBatchStatus maps a remote status string onto the lifecycle enum.
// Unknown strings map to BatchRunning so the poll loop keeps waiting
// rather than misreading a new remote state as terminal.
func ParseBatchStatus(remote string) BatchStatus {
	switch remote {
	case "idle":
		return BatchCreated
	case "queued":
		return BatchQueued
	case "running":
		return BatchRunning
	case "all_succeeded", "partially_succeeded":
		return BatchCompleted
	case "all_failed":
		return BatchFailed
	default:
		return BatchRunning
	}
}

// Batch is a remote, named collection of search queries processed together
// by the SERP-retrieval service. ID is assigned remotely on creation and is
// immutable afterwards.
type Batch struct {
	// ID is the opaque remote identifier.
	ID string

	// Name is the human-readable batch name.
	Name string

	// Status is the last observed lifecycle state.
	Status BatchStatus

	// ResultLocations are the result-document URLs, one per enqueued
	// query. Populated only once Status is BatchCompleted.
	ResultLocations []string
}
