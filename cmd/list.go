package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listYAML bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List example categories and examples",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		summary := a.catalog.Summary()
		if listYAML {
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(summary)
		}
		for _, c := range summary {
			fmt.Println(c.Name)
			for _, ex := range c.Examples {
				fmt.Printf("  %-20s %s\n", ex.Title, ex.Description)
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "print the catalog as YAML")
	rootCmd.AddCommand(listCmd)
}
