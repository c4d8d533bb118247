package cmd

import (
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection pass against the tracker API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		return a.newCollector().RunOnce(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
}
