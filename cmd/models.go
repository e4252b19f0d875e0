package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgokul695/Winterthon/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List providers and the models the selected one offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := llm.NewRegistry(llm.ConfigFromEnv(), nil)

		mode, _ := cmd.Flags().GetString("mode")
		if mode == "" {
			mode = reg.Default()
		}

		fmt.Println("Providers:")
		for _, name := range reg.Names() {
			marker := " "
			if name == reg.Default() {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, name)
		}

		models, err := reg.Models(cmd.Context(), mode)
		if err != nil {
			return fmt.Errorf("list %s models: %w", mode, err)
		}
		fmt.Printf("\nModels for %s:\n", mode)
		for _, m := range models {
			fmt.Printf("  %s\n", m)
		}
		return nil
	},
}

func init() {
	modelsCmd.Flags().StringP("mode", "m", "", "Provider to list models for (default from WINTERTHON_LLM_PROVIDER)")
}
