package driven

import (
	"context"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

// RunStore persists pipeline run history.
type RunStore interface {
	// Save inserts or replaces a run record by ID.
	Save(ctx context.Context, run *domain.RunRecord) error

	// Get retrieves a run by ID.
	// Returns nil and no error if the run does not exist.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns up to limit runs, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Close releases underlying resources.
	Close() error
}
