package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runParams string

var runCmd = &cobra.Command{
	Use:   "run <module-id>",
	Short: "Run one analysis module and print its result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		var overrides map[string]any
		if runParams != "" {
			if err := json.Unmarshal([]byte(runParams), &overrides); err != nil {
				return fmt.Errorf("parse --params: %w", err)
			}
		}

		res, err := a.svc.Run(cmd.Context(), args[0], overrides)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	runCmd.Flags().StringVar(&runParams, "params", "", "JSON object of parameter overrides")
	rootCmd.AddCommand(runCmd)
}
