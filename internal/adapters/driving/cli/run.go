package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/serpcluster-cli/internal/adapters/driven/clustering/searchblend"
	"github.com/custodia-labs/serpcluster-cli/internal/adapters/driven/serp/valueserp"
	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driven"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driving"
	"github.com/custodia-labs/serpcluster-cli/internal/core/services"
	"github.com/custodia-labs/serpcluster-cli/internal/loaders"
	"github.com/custodia-labs/serpcluster-cli/internal/logger"
)

var (
	runColumn       string
	runVolumeColumn string
	runBatchName    string
	runLocation     string
	runLanguage     string
	runCountry      string
	runDomain       string
	runMinCommon    int
	runTimeout      time.Duration
	runPollInterval time.Duration
	runWorkers      int
	runWatch        bool
	runNoHistory    bool
	runAll          bool
	runJSON         bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run the full clustering pipeline on a keyword file",
	Long: `Loads a keyword/volume table (.csv or .xlsx), normalizes it, retrieves
SERPs for every keyword through a remote batch, and clusters keywords that
share organic result URLs.

The keyword column defaults to "Keyword" and the volume column to "Volume";
override with --column / --volume-column or set defaults with "config set".`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runColumn, "column", "c", "", "keyword column name (default from config)")
	runCmd.Flags().StringVar(&runVolumeColumn, "volume-column", "", "volume column name (default from config)")
	runCmd.Flags().StringVar(&runBatchName, "batch-name", "", "remote batch name (default generated)")
	runCmd.Flags().StringVar(&runLocation, "location", "", "search location (e.g. \"United States\")")
	runCmd.Flags().StringVar(&runLanguage, "language", "", "interface language code (hl)")
	runCmd.Flags().StringVar(&runCountry, "country", "", "country code (gl)")
	runCmd.Flags().StringVar(&runDomain, "google-domain", "", "google domain to search")
	runCmd.Flags().IntVar(&runMinCommon, "min-common-links", 0, "shared links required to cluster two keywords (default 4)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "overall poll budget (e.g. 20m)")
	runCmd.Flags().DurationVar(&runPollInterval, "poll-interval", 0, "initial status poll interval (e.g. 5s)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent result-document fetches")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "re-run whenever the input file changes")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the run in local history")
	runCmd.Flags().BoolVar(&runAll, "all", false, "show all clusters, including those with 3 or fewer keywords")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the cluster table as JSON")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}
	path := args[0]

	apiKey, err := resolveAPIKey()
	if err != nil {
		return err
	}

	pipeline, err := buildPipeline(apiKey)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !runWatch {
		return executeOnce(ctx, cmd, pipeline, path)
	}
	return watchAndRun(ctx, cmd, pipeline, path)
}

// executeOnce loads, normalizes and pushes one file through the pipeline.
func executeOnce(ctx context.Context, cmd *cobra.Command, pipeline driving.PipelineRunner, path string) error {
	records, err := loadKeywords(path)
	if err != nil {
		return err
	}
	logger.Info("Normalized %d keywords from %s", len(records), path)

	opts := driving.RunOptions{
		BatchName:      runBatchName,
		Params:         searchParams(),
		MinCommonLinks: minCommonLinks(),
	}

	result, err := pipeline.Run(ctx, records, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			if id := pipeline.Status().BatchID; id != "" {
				return fmt.Errorf("run cancelled; remote batch %s keeps running and is billed remotely", id)
			}
		}
		return err
	}

	if runJSON {
		return outputClustersJSON(cmd, result)
	}

	volumes := make(map[string]int, len(records))
	for _, r := range records {
		volumes[r.Query] = r.Volume
	}
	return outputClusters(cmd, result, volumes, !runAll)
}

// loadKeywords loads and normalizes the keyword table.
func loadKeywords(path string) ([]domain.KeywordRecord, error) {
	table, err := loaders.Load(path)
	if err != nil {
		return nil, err
	}

	records, err := services.NormalizeTable(table, keywordColumn(), volumeColumn())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNoKeywords
	}
	return records, nil
}

// buildPipeline wires the remote adapters into a pipeline runner.
func buildPipeline(apiKey string) (driving.PipelineRunner, error) {
	batch := valueserp.NewClient(configStore.SERPBaseURL(), apiKey)
	collector := services.NewCollector(valueserp.NewDocumentFetcher(), runWorkers)
	gateway := searchblend.NewGateway(configStore.ClusteringURL())

	var history driven.RunStore
	if !runNoHistory {
		if err := ensureRunStore(); err != nil {
			// History is a convenience; a missing database never
			// blocks a run.
			logger.Warn("run history unavailable: %v", err)
		}
		history = runStore
	}

	poll := pollConfig()
	if runPollInterval > 0 {
		poll.Interval = runPollInterval
	}
	if runTimeout > 0 {
		poll.Timeout = runTimeout
	}

	return services.NewPipeline(batch, collector, gateway, history, poll), nil
}

// resolveAPIKey returns the configured API key, prompting interactively
// when the terminal allows it.
func resolveAPIKey() (string, error) {
	if key := configStore.APIKey(); key != "" {
		return key, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("%w: set it with \"serpcluster config set api_key <key>\"", domain.ErrAPIKeyMissing)
	}

	fmt.Fprint(os.Stderr, "SERP API key: ")
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	if len(key) == 0 {
		return "", domain.ErrAPIKeyMissing
	}
	return string(key), nil
}

// searchParams merges flag overrides over configured defaults.
func searchParams() domain.SearchParameters {
	params := configStore.DefaultParameters()
	if runLocation != "" {
		params.Location = runLocation
	}
	if runLanguage != "" {
		params.Language = runLanguage
	}
	if runCountry != "" {
		params.Country = runCountry
	}
	if runDomain != "" {
		params.Domain = runDomain
	}
	return params
}

// keywordColumn resolves the keyword column: flag, then config default.
func keywordColumn() string {
	if runColumn != "" {
		return runColumn
	}
	return configStore.KeywordColumn()
}

// volumeColumn resolves the volume column: flag, then config default.
func volumeColumn() string {
	if runVolumeColumn != "" {
		return runVolumeColumn
	}
	return configStore.VolumeColumn()
}

// minCommonLinks resolves the overlap threshold: flag, then config, then
// the pipeline default.
func minCommonLinks() int {
	if runMinCommon > 0 {
		return runMinCommon
	}
	return configStore.MinCommonLinks()
}

// watchDebounce coalesces editor write bursts into one re-run.
const watchDebounce = 500 * time.Millisecond

// watchAndRun executes the pipeline once, then re-runs it whenever the
// input file changes, until ctx is cancelled.
func watchAndRun(ctx context.Context, cmd *cobra.Command, pipeline driving.PipelineRunner, path string) error {
	if err := executeOnce(ctx, cmd, pipeline, path); err != nil {
		// Keep watching: the next save may fix the input.
		logger.Warn("run failed: %v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	logger.Info("Watching %s for changes", path)

	var mu sync.Mutex
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				logger.Section("File changed, re-running")
				if err := executeOnce(ctx, cmd, pipeline, path); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("run failed: %v", err)
				}
			})
			mu.Unlock()
		}
	}
}
