package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mstrand/wavesearch/internal/adapters"
	"github.com/mstrand/wavesearch/internal/search"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List the configured engines and their tiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := adapters.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load engine config: %w", err)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join([]string{"Code", "Name", "Tier", "Kind", "Wave"}, "\t"))
		fmt.Fprintln(tw, strings.Join([]string{"---", "---", "---", "---", "---"}, "\t"))

		for _, eng := range cfg.Engines {
			tier := search.Tier(eng.Tier)
			fmt.Fprintln(tw, strings.Join([]string{
				eng.Code,
				eng.Name,
				eng.Tier,
				string(eng.Kind),
				search.PhaseForTier(tier).String(),
			}, "\t"))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}
