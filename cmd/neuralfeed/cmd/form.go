package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nfrund/neuralfeed/internal/authflow"
	"github.com/nfrund/neuralfeed/internal/tui/authform"
)

var formRegister bool

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Open the interactive sign-in form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		variant := authflow.Login
		if formRegister {
			variant = authflow.Register
		}

		model := authform.New(cmd.Context(), client, client, variant)
		p := tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("form failed: %w", err)
		}

		out := cmd.OutOrStdout()
		switch outcome := model.Outcome(); {
		case outcome.SignedIn:
			fmt.Fprintln(out, successStyle.Render("✓ "+authflow.MsgLoggedIn))
		case outcome.SocialURL != "":
			printField(out, "Open", outcome.SocialURL)
		}
		return nil
	},
}

func init() {
	formCmd.Flags().BoolVar(&formRegister, "register", false, "Start on the create account form")
	rootCmd.AddCommand(formCmd)
}
