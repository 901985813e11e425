package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lorekeep/scenarist/internal/config"
	"github.com/lorekeep/scenarist/internal/provider"
)

var (
	cfgFile       string
	providersFile string
)

var rootCmd = &cobra.Command{
	Use:   "scenarist",
	Short: "Scenarist - tabletop RPG scenario generator",
	Long: `Scenarist generates complete tabletop role-playing scenarios by chaining
LLM generation steps: hooks, antagonist, world context, synopsis, NPCs,
locations, scene breakdown, coherence check and final compilation.

Each step builds on the accumulated output of the previous ones. Runs can
execute end to end with streamed progress, or one step at a time against a
persisted session so individual sections can be regenerated.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a scenarist.yaml settings file")
	rootCmd.PersistentFlags().StringVar(&providersFile, "providers-file", "", "Path to a JSON provider override file")
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSetup loads the settings file and the merged provider registry.
func loadSetup() (*config.Config, *provider.Registry, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	path := cfg.ProvidersFile
	if providersFile != "" {
		path = providersFile
	}
	registry, err := provider.LoadRegistry(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, registry, nil
}
