package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/greenscreen/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the navigation rules as a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogPath, _ := cmd.Flags().GetString("catalog")
		navigation, _ := cmd.Flags().GetString("navigation")
		return cli.Graph(os.Stdout, catalogPath, navigation)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("catalog", "c", "screens", "Screen catalog file or directory")
	graphCmd.Flags().StringP("navigation", "n", "navigation.yaml", "Navigation rules file")
}
