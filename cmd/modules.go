package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var modulesYAML bool

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the registered analysis modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		if modulesYAML {
			type moduleEntry struct {
				ID          string `yaml:"id"`
				Name        string `yaml:"name"`
				Category    string `yaml:"category"`
				Version     string `yaml:"version"`
				Description string `yaml:"description"`
				Schedule    string `yaml:"schedule,omitempty"`
			}
			var entries []moduleEntry
			for _, m := range a.svc.Registry().All() {
				meta := m.Metadata()
				entries = append(entries, moduleEntry{
					ID:          meta.ID,
					Name:        meta.Name,
					Category:    meta.Category,
					Version:     meta.Version,
					Description: meta.Description,
					Schedule:    m.DefaultConfig().Schedule,
				})
			}
			return yaml.NewEncoder(os.Stdout).Encode(entries)
		}

		for _, m := range a.svc.Registry().All() {
			meta := m.Metadata()
			fmt.Printf("%-20s %-14s v%-8s %s\n", meta.ID, meta.Category, meta.Version, meta.Description)
		}
		return nil
	},
}

func init() {
	modulesCmd.Flags().BoolVar(&modulesYAML, "yaml", false, "print as YAML")
	rootCmd.AddCommand(modulesCmd)
}
