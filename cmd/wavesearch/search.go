package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mstrand/wavesearch/internal/adapters"
	"github.com/mstrand/wavesearch/internal/pipeline"
	"github.com/mstrand/wavesearch/internal/report"
	"github.com/mstrand/wavesearch/internal/search"
	"github.com/mstrand/wavesearch/pkg/stringsutil"
)

var (
	searchEngines   []string
	searchStopAfter int
	searchStream    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a one-shot federated search and print the ranked results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		if searchStopAfter < 0 || searchStopAfter > int(search.Wave3) {
			return fmt.Errorf("--stop-after must be between 1 and 3")
		}

		cfg, err := adapters.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load engine config: %w", err)
		}

		reg, cleanup, err := adapters.Build(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("build registry: %w", err)
		}
		defer cleanup()

		pipe, err := pipeline.New(reg, pipeline.DefaultConfig())
		if err != nil {
			return err
		}

		opts := pipeline.Options{
			Engines:       stringsutil.RemoveEmptyStrings(searchEngines),
			StopAfterWave: search.WavePhase(searchStopAfter),
		}

		if searchStream {
			return runStreaming(cmd, pipe, query, opts)
		}

		resp, err := pipe.Search(cmd.Context(), query, opts)
		if err != nil {
			return err
		}
		report.WriteTable(resp, os.Stdout)
		return nil
	},
}

// runStreaming prints a progress line as each wave settles, then the
// final ranked table.
func runStreaming(cmd *cobra.Command, pipe *pipeline.Pipeline, query string, opts pipeline.Options) error {
	for update := range pipe.SearchStreaming(cmd.Context(), query, opts) {
		if update.Phase == search.WaveComplete {
			report.WriteTable(update.Final, os.Stdout)
			return nil
		}
		fmt.Fprintf(os.Stderr, "%s settled: %d results so far\n", update.Phase, len(update.Results))
	}
	return cmd.Context().Err()
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchEngines, "engines", nil,
		"Engine codes to query, bypassing the router")
	searchCmd.Flags().IntVar(&searchStopAfter, "stop-after", 0,
		"Stop after the given wave (1-3), 0 runs the full cascade")
	searchCmd.Flags().BoolVar(&searchStream, "stream", false,
		"Print per-wave progress while the cascade runs")
	rootCmd.AddCommand(searchCmd)
}
