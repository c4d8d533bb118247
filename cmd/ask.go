package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCategory string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the analytics agent a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		question := strings.Join(args, " ")
		answer, err := a.orch.Ask(cmd.Context(), askCategory, nil, question)
		fmt.Println(answer)
		return err
	},
}

func init() {
	askCmd.Flags().StringVar(&askCategory, "category", "universal", "agent category (universal, performance, optimization, quality)")
	rootCmd.AddCommand(askCmd)
}
