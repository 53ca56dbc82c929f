package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/greenscreen/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <workflow>",
	Short: "Run a workflow against a host",
	Long: `Connects to the host named in the workflow, executes its steps and prints
the result. Placeholders such as {{ user }} resolve from --var and --var-file.
The exit status is non-zero when the workflow fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		catalogPath, _ := flags.GetString("catalog")
		if catalogPath == "" {
			catalogPath = cfg.Host.Catalog
		}
		pairs, _ := flags.GetStringArray("var")
		vars, err := cli.ParseVars(pairs)
		if err != nil {
			return err
		}
		varFile, _ := flags.GetString("var-file")
		output, _ := flags.GetString("output")
		exclusive, _ := flags.GetBool("exclusive")
		if flags.Changed("results") {
			cfg.Results.Store, _ = flags.GetString("results")
		}

		ctx, interrupt := cli.NotifyInterrupt(cmd.Context())
		defer interrupt.Stop()
		_, err = cli.Run(ctx, cli.RunOptions{
			Catalog:   catalogPath,
			Workflow:  args[0],
			Vars:      vars,
			VarFile:   varFile,
			Results:   cfg.Results,
			Exclusive: exclusive,
			Output:    output,
			Logger:    logger,
			Out:       os.Stdout,
		})
		if sig := interrupt.Signal(); sig != nil {
			logger.Warn("run interrupted", "signal", sig.String())
			interrupt.Stop()
			os.Exit(interrupt.ExitCode())
		}
		if errors.Is(err, cli.ErrWorkflowFailed) {
			// Already reported.
			interrupt.Stop()
			os.Exit(1)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("catalog", "c", "", "Screen catalog file or directory (default from GREENSCREEN_CATALOG)")
	runCmd.Flags().StringArray("var", nil, "Workflow variable as key=value (repeatable)")
	runCmd.Flags().String("var-file", "", "YAML file of workflow variables")
	runCmd.Flags().StringP("output", "o", cli.OutputReport, "Output format: report, json or quiet")
	runCmd.Flags().String("results", "", "Store the result: memory, a directory, or a redis:// URL")
	runCmd.Flags().Bool("exclusive", false, "Hold a Redis lock on the workflow name while running")
}
