// Package file provides the TOML-backed configuration store.
// Configuration lives at ~/.serpcluster/config.toml unless a config
// directory is supplied explicitly.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// config is the on-disk TOML shape. Zero values mean "use the default".
type config struct {
	APIKey          string `toml:"api_key,omitempty"`
	SERPBaseURL     string `toml:"serp_base_url,omitempty"`
	ClusteringURL   string `toml:"clustering_url,omitempty"`
	KeywordColumn   string `toml:"keyword_column,omitempty"`
	VolumeColumn    string `toml:"volume_column,omitempty"`
	MinCommonLinks  int    `toml:"min_common_links,omitempty"`
	PollInterval    string `toml:"poll_interval,omitempty"`
	PollMaxInterval string `toml:"poll_max_interval,omitempty"`
	PollTimeout     string `toml:"poll_timeout,omitempty"`
	Location        string `toml:"location,omitempty"`
	Language        string `toml:"language,omitempty"`
	Country         string `toml:"country,omitempty"`
	GoogleDomain    string `toml:"google_domain,omitempty"`
}

// Store is a file-based implementation of driven.ConfigStore using TOML.
type Store struct {
	mu       sync.RWMutex
	filePath string
	cfg      config
}

// NewStore creates a TOML config store.
// If configDir is empty, defaults to ~/.serpcluster/config.toml.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".serpcluster")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &Store{
		filePath: filepath.Join(configDir, "config.toml"),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// load reads the config file into memory.
func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	return toml.Unmarshal(data, &s.cfg)
}

// save persists the config with owner-only permissions: the file holds the
// API key.
func (s *Store) save() error {
	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// APIKey returns the SERP service API key, empty if unset.
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.APIKey
}

// SERPBaseURL returns the configured batch-service base URL, empty for the
// adapter default.
func (s *Store) SERPBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.SERPBaseURL
}

// ClusteringURL returns the configured clustering endpoint, empty for the
// adapter default.
func (s *Store) ClusteringURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.ClusteringURL
}

// KeywordColumn returns the default keyword column name.
func (s *Store) KeywordColumn() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg.KeywordColumn == "" {
		return "Keyword"
	}
	return s.cfg.KeywordColumn
}

// VolumeColumn returns the default volume column name.
func (s *Store) VolumeColumn() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg.VolumeColumn == "" {
		return "Volume"
	}
	return s.cfg.VolumeColumn
}

// MinCommonLinks returns the default link-overlap threshold, 0 if unset.
func (s *Store) MinCommonLinks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.MinCommonLinks
}

// PollBudget returns the configured poll interval, cap and timeout as
// duration strings, empty where unset.
func (s *Store) PollBudget() (interval, maxInterval, timeout string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.PollInterval, s.cfg.PollMaxInterval, s.cfg.PollTimeout
}

// DefaultParameters returns the default per-query search parameters.
func (s *Store) DefaultParameters() domain.SearchParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.SearchParameters{
		Location: s.cfg.Location,
		Language: s.cfg.Language,
		Country:  s.cfg.Country,
		Domain:   s.cfg.GoogleDomain,
	}
}

// Set stores a configuration value by key and persists it immediately.
// Unknown keys are rejected.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch key {
	case "api_key":
		s.cfg.APIKey = value
	case "serp_base_url":
		s.cfg.SERPBaseURL = value
	case "clustering_url":
		s.cfg.ClusteringURL = value
	case "keyword_column":
		s.cfg.KeywordColumn = value
	case "volume_column":
		s.cfg.VolumeColumn = value
	case "min_common_links":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("min_common_links must be an integer: %q", value)
		}
		s.cfg.MinCommonLinks = n
	case "poll_interval":
		s.cfg.PollInterval = value
	case "poll_max_interval":
		s.cfg.PollMaxInterval = value
	case "poll_timeout":
		s.cfg.PollTimeout = value
	case "location":
		s.cfg.Location = value
	case "language":
		s.cfg.Language = value
	case "country":
		s.cfg.Country = value
	case "google_domain":
		s.cfg.GoogleDomain = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	return s.save()
}

// Get returns a configuration value by key for display.
// The API key is returned as stored; callers decide how to present it.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch key {
	case "api_key":
		return s.cfg.APIKey, true
	case "serp_base_url":
		return s.cfg.SERPBaseURL, true
	case "clustering_url":
		return s.cfg.ClusteringURL, true
	case "keyword_column":
		return s.cfg.KeywordColumn, true
	case "volume_column":
		return s.cfg.VolumeColumn, true
	case "min_common_links":
		return strconv.Itoa(s.cfg.MinCommonLinks), true
	case "poll_interval":
		return s.cfg.PollInterval, true
	case "poll_max_interval":
		return s.cfg.PollMaxInterval, true
	case "poll_timeout":
		return s.cfg.PollTimeout, true
	case "location":
		return s.cfg.Location, true
	case "language":
		return s.cfg.Language, true
	case "country":
		return s.cfg.Country, true
	case "google_domain":
		return s.cfg.GoogleDomain, true
	default:
		return "", false
	}
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}
