package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/greenscreen/internal/cli"
	"github.com/aretw0/greenscreen/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "greenscreen",
	Short: "GreenScreen simulates and automates block-mode terminal hosts",
	Long: `GreenScreen speaks the block-mode terminal protocol from both ends.

Use "serve" to run a host simulator from screen and navigation definitions,
and "run" to drive a host through a scripted workflow.

Settings are read from GREENSCREEN_* environment variables; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (default from GREENSCREEN_LOG_LEVEL)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit JSON logs")
}

// loadConfig reads the environment and applies the persistent logging flags.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON, _ = cmd.Flags().GetBool("log-json")
	}
	logger, err := cli.NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
