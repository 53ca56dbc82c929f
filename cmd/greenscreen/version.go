package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/greenscreen"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of greenscreen",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("greenscreen version %s\n", greenscreen.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
