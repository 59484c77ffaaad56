package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/serpcluster-cli/internal/core/services"
	"github.com/custodia-labs/serpcluster-cli/internal/loaders"
)

var (
	normalizeLimit int
	normalizeJSON  bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Preview the normalized keyword table without running a batch",
	Long: `Loads the keyword file and applies the same normalization the run
command uses: select the keyword and volume columns, fill missing volumes
with 0, strip characters that are not letters, digits or spaces, and drop
queries of 3 characters or fewer. Nothing is sent anywhere.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&runColumn, "column", "c", "", "keyword column name (default from config)")
	normalizeCmd.Flags().StringVar(&runVolumeColumn, "volume-column", "", "volume column name (default from config)")
	normalizeCmd.Flags().IntVarP(&normalizeLimit, "limit", "n", 10, "preview row count, 0 for all")
	normalizeCmd.Flags().BoolVar(&normalizeJSON, "json", false, "output the full table as JSON")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	table, err := loaders.Load(args[0])
	if err != nil {
		return err
	}

	records, err := services.NormalizeTable(table, keywordColumn(), volumeColumn())
	if err != nil {
		return err
	}
	dropped := len(table.Rows) - len(records)

	if normalizeJSON {
		payload := make([]map[string]any, 0, len(records))
		for _, r := range records {
			payload = append(payload, map[string]any{"query": r.Query, "volume": r.Volume})
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal table: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%d keywords (%d rows dropped)", len(records), dropped)))
	shown := records
	if normalizeLimit > 0 && len(shown) > normalizeLimit {
		shown = shown[:normalizeLimit]
	}
	for _, r := range shown {
		cmd.Printf("  %-50s %d\n", r.Query, r.Volume)
	}
	if len(shown) < len(records) {
		cmd.Println(mutedStyle.Render(fmt.Sprintf("(%d more, use --limit 0 to show all)", len(records)-len(shown))))
	}
	return nil
}
