// Package main provides edgectl, a command line front end for the edge engine.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type options struct {
	configFile string
	jsonOutput bool
	baseURL    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "edgectl",
		Short:         "Closing line value and parlay edge tools",
		Long:          `Computes CLV metrics, normalizes edges and curates parlays locally, or queries a running edge API.`,
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")

	root.AddCommand(
		newCLVCmd(opts),
		newEdgeCmd(opts),
		newParlaysCmd(opts),
		newRemoteCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
