package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

// Stage identifies where in the pipeline a run currently is.
type Stage string

const (
	// StageIdle means no run is in progress.
	StageIdle Stage = "idle"
	// StageCreate means the remote batch is being created.
	StageCreate Stage = "create"
	// StageEnqueue means queries are being enqueued.
	StageEnqueue Stage = "enqueue"
	// StageStart means the batch is being started.
	StageStart Stage = "start"
	// StagePoll means the run is waiting for the batch to finish.
	StagePoll Stage = "poll"
	// StageCollect means result documents are being fetched.
	StageCollect Stage = "collect"
	// StageMerge means keyword and result rows are being joined.
	StageMerge Stage = "merge"
	// StageCluster means the clustering service is being called.
	StageCluster Stage = "cluster"
	// StageDone means the run finished.
	StageDone Stage = "done"
)

// RunOptions configures a single pipeline run.
type RunOptions struct {
	// BatchName names the remote batch. Empty generates a unique name.
	BatchName string

	// Params are the shared per-query search parameters.
	Params domain.SearchParameters

	// MinCommonLinks is the link-overlap threshold for clustering.
	// Zero or negative uses the service default of 4.
	MinCommonLinks int
}

// RunStatus is a point-in-time snapshot of an in-flight run.
type RunStatus struct {
	// RunID identifies the run.
	RunID string

	// BatchID is the remote batch, empty before creation.
	BatchID string

	// Stage is the current pipeline stage.
	Stage Stage

	// Keywords is the number of keywords in play.
	Keywords int

	// Warnings is the number of non-fatal warnings so far.
	Warnings int

	// StartedAt is when the run began.
	StartedAt time.Time
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	// RunID identifies the run.
	RunID string

	// BatchID is the remote batch the run created.
	BatchID string

	// BatchName is the name the batch was created under.
	BatchName string

	// Keywords is the number of keywords enqueued.
	Keywords int

	// Locations is the number of result documents retrieved.
	Locations int

	// Assignments is the full cluster table, unfiltered.
	Assignments []domain.ClusterAssignment

	// Warnings are the non-fatal issues encountered, in order.
	Warnings []string

	// Duration is the wall-clock run time.
	Duration time.Duration
}

// PipelineRunner drives the end-to-end clustering pipeline.
type PipelineRunner interface {
	// Run executes the full pipeline for an already-normalized keyword
	// set. It blocks until the run reaches a terminal state. Cancelling
	// ctx aborts local work; the remote batch is left as-is.
	// Any fatal stage error aborts the run with no partial output.
	Run(ctx context.Context, records []domain.KeywordRecord, opts RunOptions) (*RunResult, error)

	// Status returns a snapshot of the in-flight run, or a StageIdle
	// snapshot when nothing is running. After a run ends the snapshot
	// keeps its run and batch identifiers, so a cancelled run's remote
	// batch can still be named.
	Status() RunStatus
}
