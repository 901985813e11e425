package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the configured model providers",
	Long: `Providers lists every model identifier in the registry: the built-in
table merged with the optional JSON override file (--providers-file or the
providers_file setting).`,
	RunE: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	_, registry, err := loadSetup()
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Providers"))
	fmt.Println()
	for _, id := range registry.IDs() {
		cfg, err := registry.Resolve(id)
		if err != nil {
			continue
		}
		fmt.Println(stepStyle.Render(id))
		detail := fmt.Sprintf("  backend: %s, model: %s, timeout: %.0fs", cfg.Backend, cfg.ModelName, cfg.TimeoutSeconds)
		if cfg.Endpoint != "" {
			detail += ", endpoint: " + cfg.Endpoint
		}
		fmt.Println(progressStyle.Render(detail))
	}
	fmt.Println()
	return nil
}
