package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driven"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driving"
	"github.com/custodia-labs/serpcluster-cli/internal/logger"
)

// PollConfig bounds the batch status poll loop.
type PollConfig struct {
	// Interval is the initial delay between status checks.
	Interval time.Duration

	// MaxInterval caps the backoff growth.
	MaxInterval time.Duration

	// Timeout is the overall poll budget. Exceeding it fails the run
	// with domain.ErrBatchTimeout.
	Timeout time.Duration
}

// DefaultPollConfig is the poll budget used when none is configured.
// Intervals double from Interval up to MaxInterval.
var DefaultPollConfig = PollConfig{
	Interval:    2 * time.Second,
	MaxInterval: 30 * time.Second,
	Timeout:     15 * time.Minute,
}

// DefaultMinCommonLinks is the clustering link-overlap threshold applied
// when the caller does not choose one.
const DefaultMinCommonLinks = 4

// Ensure Pipeline implements the interface.
var _ driving.PipelineRunner = (*Pipeline)(nil)

// Pipeline drives the end-to-end clustering run:
// dedup -> create batch -> enqueue -> start -> poll -> collect -> merge ->
// cluster. Strictly sequential; any fatal stage error aborts the remainder
// and no partial cluster output is produced.
type Pipeline struct {
	batch      driven.BatchService
	collector  *Collector
	clustering driven.ClusteringService
	runs       driven.RunStore
	poll       PollConfig

	// Status tracking
	mu     sync.RWMutex
	status driving.RunStatus
}

// NewPipeline creates a pipeline over the given services.
// runs may be nil to disable history. A zero poll config uses
// DefaultPollConfig.
func NewPipeline(batch driven.BatchService, collector *Collector, clustering driven.ClusteringService, runs driven.RunStore, poll PollConfig) *Pipeline {
	if poll.Interval <= 0 {
		poll.Interval = DefaultPollConfig.Interval
	}
	if poll.MaxInterval <= 0 {
		poll.MaxInterval = DefaultPollConfig.MaxInterval
	}
	if poll.Timeout <= 0 {
		poll.Timeout = DefaultPollConfig.Timeout
	}
	return &Pipeline{
		batch:      batch,
		collector:  collector,
		clustering: clustering,
		runs:       runs,
		poll:       poll,
		status:     driving.RunStatus{Stage: driving.StageIdle},
	}
}

// Status returns a snapshot of the in-flight run.
func (p *Pipeline) Status() driving.RunStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Run executes the full pipeline. See driving.PipelineRunner.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (p *Pipeline) Run(ctx context.Context, records []domain.KeywordRecord, opts driving.RunOptions) (*driving.RunResult, error) {
	runID := uuid.NewString()
	startedAt := time.Now()

	if len(records) == 0 {
		return nil, domain.ErrNoKeywords
	}

	// 1. Deduplicate queries (keep first) so the join stays strict and
	// the remote batch never sees duplicates.
	records, dropped := DedupKeywords(records)

	var warnings []string
	if dropped > 0 {
		w := fmt.Sprintf("dropped %d duplicate queries (kept first occurrence)", dropped)
		logger.Warn("%s", w)
		warnings = append(warnings, w)
	}

	batchName := opts.BatchName
	if batchName == "" {
		batchName = "serpcluster-" + runID[:8]
	}
	minCommon := opts.MinCommonLinks
	if minCommon <= 0 {
		minCommon = DefaultMinCommonLinks
	}

	p.setStatus(driving.RunStatus{
		RunID:     runID,
		Stage:     driving.StageCreate,
		Keywords:  len(records),
		Warnings:  len(warnings),
		StartedAt: startedAt,
	})
	defer p.finish()

	logger.Section("Pipeline run " + runID)
	logger.Info("Starting run with %d keywords", len(records))

	result, err := p.execute(ctx, runID, batchName, records, opts.Params, minCommon, &warnings)

	if p.runs != nil {
		p.record(runID, batchName, result, len(records), len(warnings), err, startedAt)
	}
	if err != nil {
		return nil, err
	}

	result.RunID = runID
	result.BatchName = batchName
	result.Keywords = len(records)
	result.Warnings = warnings
	result.Duration = time.Since(startedAt)
	return result, nil
}

// execute runs the remote stages. Split out so Run can record history for
// both outcomes without repeating itself.
func (p *Pipeline) execute(ctx context.Context, runID, batchName string, records []domain.KeywordRecord, params domain.SearchParameters, minCommon int, warnings *[]string) (*driving.RunResult, error) {
	// 2. Create the remote batch.
	batchID, err := p.batch.CreateBatch(ctx, batchName)
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	logger.Info("Created batch %s (%q)", batchID, batchName)
	p.advance(driving.StageEnqueue, batchID)

	// 3. Enqueue one search per keyword.
	if err := p.batch.EnqueueQueries(ctx, batchID, records, params); err != nil {
		return nil, fmt.Errorf("enqueue queries: %w", err)
	}
	logger.Info("Enqueued %d queries", len(records))
	p.advance(driving.StageStart, batchID)

	// 4. Start the batch.
	status, err := p.batch.StartBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("start batch: %w", err)
	}
	logger.Info("Batch started, status: %s", status)
	p.advance(driving.StagePoll, batchID)

	// 5. Poll until terminal. Cancellation stops local polling only;
	// the remote batch keeps running and is never deleted.
	status, err = p.waitForBatch(ctx, batchID, status)
	if err != nil {
		return nil, err
	}
	if status == domain.BatchFailed {
		return nil, fmt.Errorf("%w: batch %s", domain.ErrBatchFailed, batchID)
	}
	p.advance(driving.StageCollect, batchID)

	// 6. Fetch result locations and collect documents.
	locations, err := p.batch.ListResultLocations(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list result locations: %w", err)
	}
	logger.Info("Collecting %d result documents", len(locations))

	results, collectWarnings := p.collector.Collect(ctx, locations)
	*warnings = append(*warnings, collectWarnings...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.advance(driving.StageMerge, batchID)

	// 7. Left-join results onto the keyword table.
	unified, err := Merge(records, results)
	if err != nil {
		return nil, fmt.Errorf("merge results: %w", err)
	}
	p.advance(driving.StageCluster, batchID)

	// 8. Hand the unified table to the clustering service.
	logger.Info("Clustering %d records (min common links: %d)", len(unified), minCommon)
	assignments, err := p.clustering.Cluster(ctx, unified, minCommon)
	if err != nil {
		return nil, fmt.Errorf("cluster records: %w", err)
	}
	p.advance(driving.StageDone, batchID)

	return &driving.RunResult{
		BatchID:     batchID,
		Locations:   len(locations),
		Assignments: assignments,
	}, nil
}

// waitForBatch polls the batch status with exponential backoff until it is
// terminal, the poll budget is exhausted or ctx is cancelled.
func (p *Pipeline) waitForBatch(ctx context.Context, batchID string, status domain.BatchStatus) (domain.BatchStatus, error) {
	if status.Terminal() {
		return status, nil
	}

	deadline := time.Now().Add(p.poll.Timeout)
	interval := p.poll.Interval

	for {
		if time.Now().After(deadline) {
			return status, fmt.Errorf("%w: batch %s still %s after %s", domain.ErrBatchTimeout, batchID, status, p.poll.Timeout)
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(interval):
		}

		var err error
		status, err = p.batch.GetStatus(ctx, batchID)
		if err != nil {
			return status, fmt.Errorf("poll batch status: %w", err)
		}
		logger.Debug("Batch %s status: %s", batchID, status)

		if status.Terminal() {
			return status, nil
		}

		interval *= 2
		if interval > p.poll.MaxInterval {
			interval = p.poll.MaxInterval
		}
	}
}

// record persists the run outcome. History failures are reported as
// warnings, never as run failures.
func (p *Pipeline) record(runID, batchName string, result *driving.RunResult, keywords, warningCount int, runErr error, startedAt time.Time) {
	run := &domain.RunRecord{
		ID:           runID,
		BatchName:    batchName,
		State:        domain.RunSucceeded,
		KeywordCount: keywords,
		WarningCount: warningCount,
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
	}
	if result != nil {
		run.BatchID = result.BatchID
		run.LocationCount = result.Locations
		run.ClusterCount = countClusters(result.Assignments)
	}
	if runErr != nil {
		run.State = domain.RunFailed
		run.Error = runErr.Error()
	}

	// History writes get a short budget of their own: the run context
	// may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.runs.Save(ctx, run); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("saving run history: %v", err)
	}
}

// countClusters counts distinct cluster names in an assignment set.
func countClusters(assignments []domain.ClusterAssignment) int {
	names := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		names[a.ClusterName] = struct{}{}
	}
	return len(names)
}

// advance moves the status snapshot to the next stage.
func (p *Pipeline) advance(stage driving.Stage, batchID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Stage = stage
	p.status.BatchID = batchID
}

// setStatus replaces the status snapshot.
func (p *Pipeline) setStatus(s driving.RunStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = s
}

// finish returns the snapshot to StageIdle while keeping the run and batch
// identifiers. A cancelled run's batch keeps running remotely; callers read
// its ID off the snapshot to tell the operator which batch to look for.
func (p *Pipeline) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Stage = driving.StageIdle
}
