package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show past pipeline runs",
	Long: `Without arguments, lists recent runs from the local history database.
With a run ID, shows that run's details.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}
	if err := ensureRunStore(); err != nil {
		return err
	}

	if len(args) == 1 {
		return showRun(cmd, args[0])
	}

	runs, err := runStore.List(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	cmd.Printf("%-36s  %-10s  %-19s  %8s  %8s\n", "RUN", "STATE", "STARTED", "KEYWORDS", "CLUSTERS")
	for _, run := range runs {
		cmd.Printf("%-36s  %-10s  %-19s  %8d  %8d\n",
			run.ID, run.State, run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.KeywordCount, run.ClusterCount)
	}
	return nil
}

func showRun(cmd *cobra.Command, id string) error {
	run, err := runStore.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %q not found", id)
	}

	cmd.Println(titleStyle.Render("Run " + run.ID))
	cmd.Printf("State:      %s\n", run.State)
	cmd.Printf("Batch:      %s (%q)\n", run.BatchID, run.BatchName)
	cmd.Printf("Keywords:   %d\n", run.KeywordCount)
	cmd.Printf("Documents:  %d\n", run.LocationCount)
	cmd.Printf("Clusters:   %d\n", run.ClusterCount)
	cmd.Printf("Warnings:   %d\n", run.WarningCount)
	cmd.Printf("Started:    %s\n", run.StartedAt.Local().Format(time.RFC1123))
	cmd.Printf("Duration:   %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	if run.State == domain.RunFailed {
		cmd.Printf("Error:      %s\n", run.Error)
	}
	return nil
}
