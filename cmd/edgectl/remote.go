package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/tipster-edge/internal/api"
	"github.com/yourusername/tipster-edge/internal/client"
	"github.com/yourusername/tipster-edge/internal/config"
	"github.com/yourusername/tipster-edge/internal/edge"
	"github.com/yourusername/tipster-edge/internal/logger"
)

func newRemoteCmd(opts *options) *cobra.Command {
	var c *client.Client

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Query a running edge API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c, err = newClient(opts)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c != nil {
				_ = c.Close()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.baseURL, "url", "", "API base URL (overrides client.base_url)")

	suggested := &cobra.Command{
		Use:   "suggested",
		Short: "Show the curated parlay suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			res, err := c.SuggestedParlays(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "Pool:         %d candidates (cached=%t)\n", res.PoolSize, res.Cached)
			fmt.Fprintf(out, "Conservative: %s\n", describeView(res.Conservative))
			fmt.Fprintf(out, "Aggressive:   %s\n", describeView(res.Aggressive))
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard CLV statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			s, err := c.DashboardStats(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, s)
			}
			fmt.Fprintf(out, "Predictions:    %d\n", s.TotalPredictions)
			fmt.Fprintf(out, "Positive CLV:   %d (%.1f%%)\n", s.PositiveCLV, s.PositiveCLVRate*100)
			fmt.Fprintf(out, "Avg CLV:        %s\n", edge.FormatPercentDefault(s.AvgCLVPercent))
			fmt.Fprintf(out, "Avg EV:         %s\n", edge.FormatPercentDefault(s.AvgEVPercent))
			fmt.Fprintf(out, "Avg confidence: %.1f\n", s.AvgConfidence)
			fmt.Fprintf(out, "Avg stake:      %s\n", edge.FormatStake(s.AvgRecommendedStake))
			printTiers(out, s.TierBreakdown)
			return nil
		},
	}

	var limit int
	best := &cobra.Command{
		Use:   "best",
		Short: "List the best closed predictions by EV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			items, err := c.BestEdges(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, items)
			}
			for _, it := range items {
				fmt.Fprintf(out, "%-32s EV %-9s CLV %-9s %s\n", it.Label, it.CLV.Formatted.EV, it.CLV.Formatted.CLV, it.CLV.Tier)
			}
			return nil
		},
	}
	best.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum rows (server default when 0)")

	cmd.AddCommand(suggested, stats, best)
	return cmd
}

func newClient(opts *options) (*client.Client, error) {
	cfg, err := config.LoadWithDefaults(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	baseURL := cfg.Client.BaseURL
	if opts.baseURL != "" {
		baseURL = opts.baseURL
	}

	log := logger.New(logrus.WarnLevel.String(), cfg.App.Environment, os.Stderr)
	return client.New(baseURL, client.HTTPConfigFrom(cfg.Client), log)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 30*time.Second)
}

func describeView(v *api.ParlayView) string {
	if v == nil {
		return "none"
	}
	return describe(&v.ParlayCandidate)
}

func printTiers(w io.Writer, tiers map[edge.Tier]int) {
	names := make([]string, 0, len(tiers))
	for t := range tiers {
		names = append(names, string(t))
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-8s %d\n", n, tiers[edge.Tier(n)])
	}
}
