package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:     "analytics",
	Short:   "Usage and risk reports",
	GroupID: "reports",
}

var analyticsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show prompt totals, top platforms and recent activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := apiClient.AnalyticsStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting analytics: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), s, printAnalyticsStats)
	},
}

var analyticsChartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show chart series as a table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient.ChartData(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting chart data: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), c, printChart)
	},
}

var analyticsTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Print trend data as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := apiClient.Trends(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting trends: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), t)
	},
}

var healthCmd = &cobra.Command{
	Use:         "health",
	Short:       "Check the health of the API",
	GroupID:     "system",
	Annotations: noSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := apiClient.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), map[string]string{"status": status}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Health: %s\n", status)
		}

		switch strings.ToLower(status) {
		case "ok", "healthy", "up":
			return nil
		}
		return fmt.Errorf("unhealthy: %s", status)
	},
}

func init() {
	analyticsCmd.AddCommand(analyticsStatsCmd)
	analyticsCmd.AddCommand(analyticsChartCmd)
	analyticsCmd.AddCommand(analyticsTrendsCmd)
}
