package driven

import "github.com/custodia-labs/serpcluster-cli/internal/core/domain"

// ConfigStore provides access to persisted tool configuration.
// Implementations handle storage (e.g., TOML files) and defaulting.
type ConfigStore interface {
	// APIKey returns the SERP service API key, empty if unset.
	APIKey() string

	// SERPBaseURL returns the batch-service base URL.
	SERPBaseURL() string

	// ClusteringURL returns the clustering endpoint URL.
	ClusteringURL() string

	// KeywordColumn returns the default keyword column name.
	KeywordColumn() string

	// VolumeColumn returns the default volume column name.
	VolumeColumn() string

	// MinCommonLinks returns the default link-overlap threshold.
	MinCommonLinks() int

	// PollBudget returns the poll interval, interval cap and overall
	// timeout for the batch poll loop, in that order.
	PollBudget() (interval, maxInterval, timeout string)

	// DefaultParameters returns the default per-query search parameters.
	DefaultParameters() domain.SearchParameters

	// Set stores a configuration value by key and persists it.
	// Unknown keys are rejected.
	Set(key, value string) error

	// Get returns a configuration value by key for display.
	Get(key string) (string, bool)

	// Path returns the configuration file path.
	Path() string
}
