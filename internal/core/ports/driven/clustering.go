package driven

import (
	"context"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

// ClusteringService groups keywords sharing overlapping organic results.
// The clustering algorithm itself is a remote black box; implementations
// are pure pass-throughs and must not mutate or filter the record set.
type ClusteringService interface {
	// Cluster sends the unified records and returns the cluster
	// assignment table. minCommonLinks is the number of shared organic
	// links required for two keywords to cluster together.
	Cluster(ctx context.Context, records []domain.UnifiedRecord, minCommonLinks int) ([]domain.ClusterAssignment, error)
}
