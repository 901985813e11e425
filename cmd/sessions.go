package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lorekeep/scenarist/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved generation sessions",
	Long: `Sessions lists every persisted single-step run: its identifier, the
provider it targets and when it was last updated. Use the identifier with
'scenarist step --session' to continue a run.`,
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadSetup()
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	store, err := session.Open(cfg.SessionDB)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer store.Close()

	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Sessions"))
	fmt.Println()
	if len(sessions) == 0 {
		fmt.Println(progressStyle.Render("No sessions yet. Create one with 'scenarist step --new'."))
		fmt.Println()
		return nil
	}
	for _, s := range sessions {
		fmt.Println(stepStyle.Render(s.ID))
		detail := fmt.Sprintf("  provider: %s, updated: %s", s.Provider, s.UpdatedAt.Format("2006-01-02 15:04"))
		if s.Inputs.CoreIdea != "" {
			detail += ", idea: " + s.Inputs.CoreIdea
		}
		fmt.Println(progressStyle.Render(detail))
	}
	fmt.Println()
	return nil
}
