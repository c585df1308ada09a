package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/tipster-edge/internal/edge"
)

func newCLVCmd(opts *options) *cobra.Command {
	var (
		entry, closing, maxStake float64
		strict                   bool
	)

	cmd := &cobra.Command{
		Use:   "clv",
		Short: "Compute CLV, EV, confidence and stake for one odds pair",
		Example: `  edgectl clv --entry 2.2 --close 2.0
  edgectl clv --entry 2.2 --close 2.0 --max-stake 0.02 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc := edge.NewCalculator(edge.WithMaxStakeFraction(maxStake), edge.WithStrictOdds(strict))
			res, err := calc.Calculate(edge.OddsPair{EntryOdds: entry, CloseOdds: closing})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, map[string]any{
					"clvPercent":       jsonFloat(res.CLVPercent),
					"evPercent":        jsonFloat(res.EVPercent),
					"confidence":       res.Confidence,
					"kellyFraction":    jsonFloat(res.KellyFraction),
					"recommendedStake": jsonFloat(res.RecommendedStake),
					"tier":             edge.ConfidenceTier(res.Confidence),
				})
			}

			fmt.Fprintf(out, "CLV:        %s\n", edge.FormatPercentDefault(res.CLVPercent))
			fmt.Fprintf(out, "EV:         %s\n", edge.FormatPercentDefault(res.EVPercent))
			fmt.Fprintf(out, "Confidence: %.0f (%s)\n", res.Confidence, edge.ConfidenceTier(res.Confidence))
			fmt.Fprintf(out, "Stake:      %s of bankroll\n", edge.FormatStake(res.RecommendedStake))
			return nil
		},
	}

	cmd.Flags().Float64Var(&entry, "entry", 0, "Decimal odds at entry")
	cmd.Flags().Float64Var(&closing, "close", 0, "Decimal odds at close")
	cmd.Flags().Float64Var(&maxStake, "max-stake", edge.DefaultMaxStakeFraction, "Cap on the recommended bankroll fraction")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject odds <= 0 instead of producing Inf/NaN")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("close")
	return cmd
}

func newEdgeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Normalize, format and derive edges",
	}

	normalize := &cobra.Command{
		Use:   "normalize VALUE...",
		Short: "Normalize edges given as fractions or percentages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type row struct {
				Raw        string  `json:"raw"`
				Edge       float64 `json:"edge"`
				Suspicious bool    `json:"suspicious"`
			}
			rows := make([]row, 0, len(args))
			for _, a := range args {
				v := edge.ParseEdgeValue(a)
				if !v.Valid() {
					return fmt.Errorf("%q is not a number", a)
				}
				rows = append(rows, row{Raw: a, Edge: v.Normalized(), Suspicious: edge.IsSuspiciousEdge(v)})
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, rows)
			}
			for _, r := range rows {
				flag := ""
				if r.Suspicious {
					flag = "  (suspicious)"
				}
				fmt.Fprintf(out, "%s\t%s%s\n", r.Raw, strconv.FormatFloat(r.Edge, 'f', -1, 64), flag)
			}
			return nil
		},
	}

	format := &cobra.Command{
		Use:   "format VALUE...",
		Short: "Render edges as signed percentages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				fmt.Fprintln(cmd.OutOrStdout(), edge.FormatEdge(a))
			}
			return nil
		},
	}

	var prob, odds float64
	calc := &cobra.Command{
		Use:   "calc",
		Short: "Derive an edge from a model probability and decimal odds",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := edge.CalculateEdge(prob, odds)
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"edge":      e,
					"formatted": edge.FormatSignedPercent(e),
					"color":     edge.PercentColor(e),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), edge.FormatSignedPercent(e))
			return nil
		},
	}
	calc.Flags().Float64Var(&prob, "prob", 0, "Model win probability in [0, 1]")
	calc.Flags().Float64Var(&odds, "odds", 0, "Decimal odds")
	_ = calc.MarkFlagRequired("prob")
	_ = calc.MarkFlagRequired("odds")

	cmd.AddCommand(normalize, format, calc)
	return cmd
}

func newParlaysCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parlays",
		Short: "Curate parlay candidates",
	}

	var file string
	selectCmd := &cobra.Command{
		Use:   "select",
		Short: "Pick the conservative and aggressive parlays from a JSON pool",
		Long: `Reads a JSON array of candidates, or an object with a "candidates" array,
and prints the safest qualifying parlay and the highest edge qualifying parlay.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := readPool(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			s := edge.SelectParlays(pool)

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, s)
			}
			fmt.Fprintf(out, "Pool:         %d candidates\n", len(pool))
			fmt.Fprintf(out, "Conservative: %s\n", describe(s.Conservative))
			fmt.Fprintf(out, "Aggressive:   %s\n", describe(s.Aggressive))
			return nil
		},
	}
	selectCmd.Flags().StringVarP(&file, "file", "f", "", "Path to the candidate pool, - for stdin")
	_ = selectCmd.MarkFlagRequired("file")

	cmd.AddCommand(selectCmd)
	return cmd
}

func readPool(path string, stdin io.Reader) ([]edge.ParlayCandidate, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pool: %w", err)
	}

	var pool []edge.ParlayCandidate
	if err := json.Unmarshal(data, &pool); err == nil {
		return pool, nil
	}
	var wrapped struct {
		Candidates []edge.ParlayCandidate `json:"candidates"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse pool: %w", err)
	}
	return wrapped.Candidates, nil
}

func describe(c *edge.ParlayCandidate) string {
	if c == nil {
		return "none"
	}
	id := c.ID
	if id == "" {
		id = "(unnamed)"
	}
	return fmt.Sprintf("%s  legs=%d edge=%s prob=%.3f odds=%.2f", id, c.LegCount, edge.FormatEdge(c.EdgePct), c.AdjustedProb, c.ImpliedOdds)
}

// jsonFloat maps Inf and NaN to nil so results stay encodable.
func jsonFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
