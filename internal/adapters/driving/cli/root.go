// Package cli implements the cobra command tree for serpcluster.
// Commands are registered in init() functions and share the application
// wiring built lazily in ensureApp.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/serpcluster-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/serpcluster-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driven"
	"github.com/custodia-labs/serpcluster-cli/internal/core/services"
	"github.com/custodia-labs/serpcluster-cli/internal/logger"
)

var (
	version = "dev"

	flagVerbose   bool
	flagConfigDir string

	// App-level wiring, built by ensureApp.
	configStore driven.ConfigStore
	runStore    driven.RunStore
)

var rootCmd = &cobra.Command{
	Use:   "serpcluster",
	Short: "Cluster keywords by shared organic search results",
	Long: `serpcluster submits a keyword list as a SERP-retrieval batch, waits for
the results, and groups keywords that share organic result URLs via a
remote clustering service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.serpcluster)")
}

// SetVersion sets the version string printed by the version command.
// Called from main with the ldflags-provided build version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	defer closeApp()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeApp()
		os.Exit(1)
	}
}

// ensureApp builds the config store on first use.
// Commands that need it call this from their RunE.
func ensureApp() error {
	if configStore != nil {
		return nil
	}
	store, err := configfile.NewStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = store
	return nil
}

// ensureRunStore opens the run-history database on first use.
func ensureRunStore() error {
	if runStore != nil {
		return nil
	}
	store, err := sqlite.NewStore(dataDir())
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	runStore = store.RunStore()
	return nil
}

// dataDir derives the history location from the config directory flag.
// Empty means the sqlite adapter default under the home directory.
func dataDir() string {
	if flagConfigDir == "" {
		return ""
	}
	return flagConfigDir + string(os.PathSeparator) + "data"
}

// closeApp releases app-level resources.
func closeApp() {
	if runStore != nil {
		if err := runStore.Close(); err != nil {
			logger.Warn("closing run history: %v", err)
		}
		runStore = nil
	}
}

// pollConfig assembles the poll budget from config, with flag overrides
// applied by the run command.
func pollConfig() services.PollConfig {
	cfg := services.DefaultPollConfig
	if configStore == nil {
		return cfg
	}

	interval, maxInterval, timeout := configStore.PollBudget()
	if d, err := time.ParseDuration(interval); err == nil && d > 0 {
		cfg.Interval = d
	}
	if d, err := time.ParseDuration(maxInterval); err == nil && d > 0 {
		cfg.MaxInterval = d
	}
	if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}
