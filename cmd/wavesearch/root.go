package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "wavesearch",
	Short: "Federated search across engine cascades",
	Long: `wavesearch runs a query across a registry of search engines, grouped
into latency waves, and prints the merged results ranked by confidence.

Commands:
  wavesearch search <query>   Run a one-shot federated search
  wavesearch engines          List the configured engines and their tiers`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/engines.yaml",
		"Path to the engine registry YAML")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn",
		"Log level: debug, info, warn, error")
}
