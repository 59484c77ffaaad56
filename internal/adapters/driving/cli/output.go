package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driving"
)

// minRenderedClusterSize is the presentation threshold: clusters at or
// below this size are hidden unless --all is given. Matches the treemap
// filter of the original report.
const minRenderedClusterSize = 3

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	clusterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9E2AF"))
)

// cluster is an aggregated render row.
type cluster struct {
	name     string
	size     int
	volume   int
	keywords []string
}

// outputClusters renders the cluster table grouped by cluster name.
// volumes maps each query to its search volume for the per-cluster totals.
// When filtered is true, clusters with minRenderedClusterSize or fewer
// keywords are summarized instead of listed.
func outputClusters(cmd *cobra.Command, result *driving.RunResult, volumes map[string]int, filtered bool) error {
	clusters := groupAssignments(result.Assignments, volumes)

	cmd.Println(titleStyle.Render(fmt.Sprintf("Clusters for batch %q", result.BatchName)))
	cmd.Println(mutedStyle.Render(fmt.Sprintf("%d keywords, %d result documents, %d clusters, finished in %s",
		result.Keywords, result.Locations, len(clusters), result.Duration.Round(fractionOf(result.Duration)))))
	cmd.Println()

	hidden := 0
	for _, c := range clusters {
		if filtered && c.size <= minRenderedClusterSize {
			hidden++
			continue
		}
		cmd.Println(clusterStyle.Render(fmt.Sprintf("%s (%d)", c.name, c.size)) +
			mutedStyle.Render(fmt.Sprintf("  volume %d", c.volume)))
		for _, kw := range c.keywords {
			cmd.Printf("  %s\n", kw)
		}
		cmd.Println()
	}

	if hidden > 0 {
		cmd.Println(mutedStyle.Render(fmt.Sprintf("(%d small clusters hidden, use --all to show them)", hidden)))
	}
	if len(result.Warnings) > 0 {
		cmd.Println(warnStyle.Render(fmt.Sprintf("%d warnings (run with --verbose for details)", len(result.Warnings))))
	}
	return nil
}

// outputClustersJSON prints the full, unfiltered run result as JSON.
func outputClustersJSON(cmd *cobra.Command, result *driving.RunResult) error {
	payload := struct {
		RunID       string                     `json:"run_id"`
		BatchID     string                     `json:"batch_id"`
		BatchName   string                     `json:"batch_name"`
		Keywords    int                        `json:"keywords"`
		Locations   int                        `json:"locations"`
		Assignments []domain.ClusterAssignment `json:"assignments"`
		Warnings    []string                   `json:"warnings,omitempty"`
	}{
		RunID:       result.RunID,
		BatchID:     result.BatchID,
		BatchName:   result.BatchName,
		Keywords:    result.Keywords,
		Locations:   result.Locations,
		Assignments: result.Assignments,
		Warnings:    result.Warnings,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// groupAssignments folds assignment rows into render clusters,
// largest first, ties broken by name.
func groupAssignments(assignments []domain.ClusterAssignment, volumes map[string]int) []cluster {
	byName := make(map[string]*cluster)
	for _, a := range assignments {
		c, ok := byName[a.ClusterName]
		if !ok {
			c = &cluster{name: a.ClusterName, size: a.ClusterSize}
			byName[a.ClusterName] = c
		}
		c.keywords = append(c.keywords, a.Query)
		c.volume += volumes[a.Query]
	}

	clusters := make([]cluster, 0, len(byName))
	for _, c := range byName {
		clusters = append(clusters, *c)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].size != clusters[j].size {
			return clusters[i].size > clusters[j].size
		}
		return clusters[i].name < clusters[j].name
	})
	return clusters
}

// fractionOf picks a sensible rounding unit for displaying a duration.
func fractionOf(d time.Duration) time.Duration {
	switch {
	case d > time.Minute:
		return time.Second
	case d > time.Second:
		return time.Second / 10
	default:
		return time.Millisecond
	}
}
