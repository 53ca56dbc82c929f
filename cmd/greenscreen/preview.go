package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/greenscreen/internal/cli"
)

var previewCmd = &cobra.Command{
	Use:   "preview <screen_id>",
	Short: "Draw a catalog screen as the simulator would send it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogPath, _ := cmd.Flags().GetString("catalog")
		pairs, _ := cmd.Flags().GetStringArray("data")
		errText, _ := cmd.Flags().GetString("error")
		data, err := cli.ParseVars(pairs)
		if err != nil {
			return err
		}
		return cli.Preview(os.Stdout, catalogPath, args[0], data, errText)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringP("catalog", "c", "screens", "Screen catalog file or directory")
	previewCmd.Flags().StringArray("data", nil, "Display field value as name=value (repeatable)")
	previewCmd.Flags().String("error", "", "Text for the error line")
}
