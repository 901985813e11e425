package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lorekeep/scenarist/internal/scenario"
)

var (
	genProvider string
	genRevise   bool
	genOut      string
	genVerbose  bool
	genInputs   inputFlags
)

// inputFlags collects the scenario input fields shared by the generate and
// step commands.
type inputFlags struct {
	gameSystem  string
	playerCount string
	themeTone   string
	coreIdea    string
	constraints string
	include     string
	avoid       string
	language    string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.gameSystem, "system", "", "Game system (e.g. 'Call of Cthulhu 7e')")
	cmd.Flags().StringVar(&f.playerCount, "players", "", "Number of players")
	cmd.Flags().StringVar(&f.themeTone, "theme", "", "Theme and tone (e.g. 'Horror, slow dread')")
	cmd.Flags().StringVar(&f.coreIdea, "idea", "", "Core idea the scenario builds on")
	cmd.Flags().StringVar(&f.constraints, "constraints", "", "Hard constraints (e.g. 'no magic, low-tech')")
	cmd.Flags().StringVar(&f.include, "include", "", "Key elements that must appear")
	cmd.Flags().StringVar(&f.avoid, "avoid", "", "Elements to avoid")
	cmd.Flags().StringVar(&f.language, "language", "", "Target output language (default from settings)")
}

func (f *inputFlags) inputs(defaultLanguage string) scenario.Inputs {
	language := f.language
	if language == "" {
		language = defaultLanguage
	}
	return scenario.Inputs{
		GameSystem:      f.gameSystem,
		PlayerCount:     f.playerCount,
		ThemeTone:       f.themeTone,
		CoreIdea:        f.coreIdea,
		Constraints:     f.constraints,
		KeyElements:     f.include,
		ElementsToAvoid: f.avoid,
		Language:        language,
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a full scenario end to end, streaming progress",
	Long: `Generate runs the whole step sequence automatically and streams each
step's output as it is produced. The compiled Markdown document is printed
at the end, or written to --out.

Requires the API key environment variable of the chosen provider
(e.g. GOOGLE_API_KEY for gemini-flash, OPENAI_API_KEY for gpt-4).

Examples:
  scenarist generate --provider gemini-flash --theme "Horror" --idea "haunted lighthouse"
  scenarist generate --provider gpt-4 --theme "Space opera" --players 4 --revise --out scenario.md`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&genProvider, "provider", "", "Model identifier from the provider registry")
	generateCmd.Flags().BoolVar(&genRevise, "revise", false, "Rewrite all scenes after the coherence check")
	generateCmd.Flags().StringVar(&genOut, "out", "", "Write the compiled Markdown document to this file")
	generateCmd.Flags().BoolVar(&genVerbose, "verbose", false, "Show streamed fragments for every step")
	genInputs.register(generateCmd)
}

// Styling
var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
	stepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Italic(true)
	bodyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
)

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, registry, err := loadSetup()
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	providerID := genProvider
	if providerID == "" {
		providerID = cfg.DefaultProvider
	}

	model, err := registry.Build(providerID)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	in := genInputs.inputs(cfg.Language)

	fmt.Println()
	fmt.Println(headerStyle.Render("Generating scenario"))
	fmt.Println(progressStyle.Render(fmt.Sprintf("provider: %s, language: %s", providerID, in.Language)))
	fmt.Println()

	pipeline := scenario.NewPipeline(model)
	events := pipeline.Run(ctx, in, scenario.RunOptions{Revise: genRevise})

	var title, document string
	for e := range events {
		switch {
		case e.Err != nil:
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), e.Err)

		case e.Fragment != "":
			if genVerbose {
				fmt.Print(bodyStyle.Render(e.Fragment))
			}

		case e.Done:
			if genVerbose {
				fmt.Println()
			}
			label := string(e.Step)
			if e.Item != "" {
				label = fmt.Sprintf("%s (%s)", e.Step, e.Item)
			}
			fmt.Println(successStyle.Render("✓ " + label))

			switch e.Step {
			case scenario.StepTitle:
				title = scenario.DeriveTitle(e.Text)
			case scenario.StepCompile:
				document = e.Text
			}
		}
	}

	if document == "" {
		return fmt.Errorf("%s generation ended without a compiled document", errorStyle.Render("Error:"))
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(title))
	fmt.Println()

	if genOut != "" {
		if err := os.WriteFile(genOut, []byte(document), 0o644); err != nil {
			return fmt.Errorf("%s writing %s: %w", errorStyle.Render("Error:"), genOut, err)
		}
		fmt.Println(successStyle.Render("✓ Written to " + genOut))
		return nil
	}

	fmt.Println(bodyStyle.Render(strings.TrimSpace(document)))
	fmt.Println()
	return nil
}
