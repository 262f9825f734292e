package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/marketsearch/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "marketsearch",
		Short:         "Marketplace search API",
		Long:          "Geospatial product search, ranking and facets for the marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("env", config.GetEnv(), "Config environment (local, dev, prod)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(versionCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves --env and loads the matching config file.
func loadConfig(cmd *cobra.Command) (string, config.Config, error) {
	env, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(env)
	if err != nil {
		return env, config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return env, cfg, nil
}
