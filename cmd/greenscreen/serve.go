package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/greenscreen"
	"github.com/aretw0/greenscreen/internal/cli"
	"github.com/aretw0/greenscreen/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the host simulator",
	Long: `Serves the screens of a catalog to terminal clients, moving between them
according to the navigation rules. With --admin, a read-only HTTP API exposes
screens, live sessions, the navigation graph and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("listen") {
			cfg.Host.Listen, _ = flags.GetString("listen")
		}
		if flags.Changed("admin") {
			cfg.Host.Admin, _ = flags.GetString("admin")
		}
		if flags.Changed("catalog") {
			cfg.Host.Catalog, _ = flags.GetString("catalog")
		}
		if flags.Changed("navigation") {
			cfg.Host.Navigation, _ = flags.GetString("navigation")
		}
		if flags.Changed("max-sessions") {
			cfg.Host.MaxSessions, _ = flags.GetInt("max-sessions")
		}
		if flags.Changed("results") {
			cfg.Results.Store, _ = flags.GetString("results")
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, greenscreen.Version)
		}

		ctx, interrupt := cli.NotifyInterrupt(cmd.Context())
		defer interrupt.Stop()
		err = cli.Serve(ctx, cli.ServeOptions{
			Host:    cfg.Host,
			Results: cfg.Results,
			Version: greenscreen.Version,
			Logger:  logger,
			Out:     os.Stdout,
		})
		if sig := interrupt.Signal(); sig != nil && err == nil {
			logger.Info("host stopped", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Terminal listen address (default from GREENSCREEN_LISTEN, :3270)")
	serveCmd.Flags().String("admin", "", "Admin API listen address; empty disables it")
	serveCmd.Flags().StringP("catalog", "c", "", "Screen catalog file or directory")
	serveCmd.Flags().StringP("navigation", "n", "", "Navigation rules file")
	serveCmd.Flags().Int("max-sessions", 0, "Maximum concurrent sessions; 0 is unlimited")
	serveCmd.Flags().String("results", "", "Result store served under /results")
}
