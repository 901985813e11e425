package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lorekeep/scenarist/internal/scenario"
	"github.com/lorekeep/scenarist/internal/session"
)

var (
	stepNew      bool
	stepProvider string
	stepSession  string
	stepItem     string
	stepShow     bool
	stepInputs   inputFlags
)

var stepCmd = &cobra.Command{
	Use:   "step [step-name]",
	Short: "Run one generation step against a persisted session",
	Long: `Step drives the pipeline one step at a time. Sessions persist the inputs
and the accumulated context in a local SQLite database, so any single step
can be re-run ("regenerate just this section") without redoing the rest.

Steps, in dependency order:
  hooks, antagonist, world_context, synopsis, list_items,
  detail_npc, detail_location, outline_scenes, detail_scene,
  coherence_report, revise_scenes, title, compile

detail_npc, detail_location and detail_scene take the item to detail via
--item.

Examples:
  scenarist step --new --provider gemini-flash --theme "Horror" --idea "haunted lighthouse"
  scenarist step synopsis --session 2f1c...
  scenarist step detail_npc --session 2f1c... --item "Keeper Aldous Finch"
  scenarist step --show --session 2f1c...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStep,
}

func init() {
	rootCmd.AddCommand(stepCmd)
	stepCmd.Flags().BoolVar(&stepNew, "new", false, "Create a new session from the input flags")
	stepCmd.Flags().StringVar(&stepProvider, "provider", "", "Model identifier for a new session")
	stepCmd.Flags().StringVar(&stepSession, "session", "", "Session identifier")
	stepCmd.Flags().StringVar(&stepItem, "item", "", "Item name for per-item steps")
	stepCmd.Flags().BoolVar(&stepShow, "show", false, "Show the session's accumulated context keys")
	stepInputs.register(stepCmd)
}

func runStep(cmd *cobra.Command, args []string) error {
	cfg, registry, err := loadSetup()
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	store, err := session.Open(cfg.SessionDB)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer store.Close()

	if stepNew {
		providerID := stepProvider
		if providerID == "" {
			providerID = cfg.DefaultProvider
		}
		// Fail on a bad provider now, not on the first step later.
		if _, err := registry.Resolve(providerID); err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}

		s, err := store.Create(stepInputs.inputs(cfg.Language), providerID)
		if err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}
		fmt.Println(successStyle.Render("✓ Session created"))
		fmt.Println(headerStyle.Render(s.ID))
		return nil
	}

	if stepSession == "" {
		return fmt.Errorf("%s --session is required", errorStyle.Render("Error:"))
	}

	s, err := store.Get(stepSession)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	if stepShow {
		fmt.Println(headerStyle.Render("Session " + s.ID))
		fmt.Println(progressStyle.Render(fmt.Sprintf("provider: %s, updated: %s", s.Provider, s.UpdatedAt.Format("2006-01-02 15:04"))))
		fmt.Println()
		for _, key := range s.Context.Keys() {
			v := s.Context[key]
			if v.IsList {
				fmt.Println(stepStyle.Render(fmt.Sprintf("%s (%d items)", key, len(v.List))))
			} else {
				fmt.Println(stepStyle.Render(string(key)))
			}
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("%s a step name is required (or --new / --show)", errorStyle.Render("Error:"))
	}
	stepName := scenario.StepName(args[0])

	model, err := registry.Build(s.Provider)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(progressStyle.Render("→ Running " + string(stepName)))

	pipeline := scenario.NewPipeline(model)
	out, err := pipeline.RunStep(context.Background(), stepName, s.Inputs, s.Context, stepItem)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	keys := scenario.Merge(s.Context, stepName, out)
	if err := store.SaveContext(s.ID, s.Context); err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	updated := make([]string, 0, len(keys))
	for _, k := range keys {
		updated = append(updated, string(k))
	}
	fmt.Println(successStyle.Render("✓ " + string(stepName) + " → " + strings.Join(updated, ", ")))
	fmt.Println()
	fmt.Println(bodyStyle.Render(out))
	return nil
}
