package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/greenscreen/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [workflow...]",
	Short: "Check catalog, navigation and workflow files",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogPath, _ := cmd.Flags().GetString("catalog")
		navigation, _ := cmd.Flags().GetString("navigation")
		return cli.Validate(cli.ValidateOptions{
			Catalog:    catalogPath,
			Navigation: navigation,
			Workflows:  args,
			Out:        os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("catalog", "c", "screens", "Screen catalog file or directory")
	validateCmd.Flags().StringP("navigation", "n", "", "Navigation rules file")
}
