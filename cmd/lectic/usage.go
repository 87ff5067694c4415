// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lectic/internal/usage"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Chart the tokens lectic has used",
	Long: `Usage reads the token ledger that lectic updates after every reply and
draws one bar per hour, day, week or month. Each model has its own colour;
the shades split output, uncached input and cached input tokens.`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func runUsage(cmd *cobra.Command, args []string) error {
	granularityFlag, _ := cmd.Flags().GetString("granularity")
	units, _ := cmd.Flags().GetInt("units")
	filterFlag, _ := cmd.Flags().GetString("filter")
	width, _ := cmd.Flags().GetInt("width")
	summary, _ := cmd.Flags().GetBool("summary")

	g, err := usage.ParseGranularity(granularityFlag)
	if err != nil {
		return err
	}

	var filter *regexp.Regexp
	if filterFlag != "" {
		filter, err = regexp.Compile(filterFlag)
		if err != nil {
			return fmt.Errorf("invalid filter regex: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := usage.NewStore(cfg.DataDir, log)
	if err != nil {
		return err
	}
	defer store.Close()

	buckets, err := store.Report(cmd.Context(), g, units, filter)
	if err != nil {
		return err
	}

	if summary {
		return usage.Summary(cmd.OutOrStdout(), buckets)
	}
	return usage.Chart(cmd.OutOrStdout(), buckets, width)
}

func init() {
	usageCmd.Flags().StringP("granularity", "g", "day", "bucket size: hour, day, week or month")
	usageCmd.Flags().IntP("units", "n", 14, "number of most recent buckets to show (0 for all)")
	usageCmd.Flags().String("filter", "", "only count models matching this regular expression")
	usageCmd.Flags().Int("width", 50, "width of the longest bar")
	usageCmd.Flags().Bool("summary", false, "print per-model totals instead of a chart")

	rootCmd.AddCommand(usageCmd)
}
