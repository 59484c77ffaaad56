package services

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driven"
	"github.com/custodia-labs/serpcluster-cli/internal/logger"
)

const (
	// DefaultCollectWorkers bounds concurrent result-document fetches.
	DefaultCollectWorkers = 4

	// defaultFetchRate is the sustained fetch rate. Result documents
	// live on a CDN, but we stay polite anyway.
	defaultFetchRate = 10.0

	// defaultFetchBurst is the fetch burst size.
	defaultFetchBurst = 5
)

// Collector fetches result documents and aggregates their records.
// Per-location failures degrade to warnings; a single bad document never
// aborts the collection.
type Collector struct {
	fetcher driven.ResultFetcher
	limiter *rate.Limiter
	workers int
}

// fetchOutcome carries one location's records and warnings to the aggregator.
type fetchOutcome struct {
	records  []domain.ResultRecord
	warnings []string
}

// NewCollector creates a collector over the given fetcher.
// workers <= 0 uses DefaultCollectWorkers.
func NewCollector(fetcher driven.ResultFetcher, workers int) *Collector {
	if workers <= 0 {
		workers = DefaultCollectWorkers
	}
	return &Collector{
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Limit(defaultFetchRate), defaultFetchBurst),
		workers: workers,
	}
}

// Collect fetches every location and returns the extracted records plus
// the warnings raised along the way. Output order follows fetch completion,
// not input order; callers must not rely on any particular ordering.
//
// A *domain.FetchError on one location is recorded as a warning and that
// location contributes zero records. Only context cancellation stops the
// collection early, and even then the records gathered so far are returned.
func (c *Collector) Collect(ctx context.Context, locations []string) ([]domain.ResultRecord, []string) {
	jobs := make(chan string)
	out := make(chan fetchOutcome)

	var wg sync.WaitGroup
	for range c.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for loc := range jobs {
				out <- c.fetchOne(ctx, loc)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, loc := range locations {
			select {
			case jobs <- loc:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	// Single-reader aggregation: no shared mutable state across fetches.
	var records []domain.ResultRecord
	var warnings []string
	for f := range out {
		records = append(records, f.records...)
		warnings = append(warnings, f.warnings...)
	}

	return records, warnings
}

// fetchOne downloads one location, translating failures into warnings.
func (c *Collector) fetchOne(ctx context.Context, location string) fetchOutcome {
	var out fetchOutcome

	if err := c.limiter.Wait(ctx); err != nil {
		return out
	}

	records, warnings, err := c.fetcher.Fetch(ctx, location)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return out
		}
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			logger.Warn("skipping result document: %v", fetchErr)
			out.warnings = append(out.warnings, fetchErr.Error())
			return out
		}
		logger.Warn("skipping result document %s: %v", location, err)
		out.warnings = append(out.warnings, "fetch "+location+": "+err.Error())
		return out
	}

	for _, w := range warnings {
		logger.Warn("%s", w)
	}
	out.records = records
	out.warnings = warnings
	return out
}
