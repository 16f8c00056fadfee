package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/neuralfeed/internal/authclient"
	"github.com/nfrund/neuralfeed/internal/authflow"
)

var (
	flagName     string
	flagEmail    string
	flagPassword string
)

// errReported marks a failure the flow already printed.
var errReported = errors.New("request failed")

var loginCmd = &cobra.Command{
	Use:     "login",
	Short:   "Sign in with e-mail and password",
	Example: `  neuralfeed login --email ada@example.com --password secret`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return submit(cmd, authflow.Login, authflow.Credentials{Email: flagEmail, Password: flagPassword})
	},
}

var registerCmd = &cobra.Command{
	Use:     "register",
	Short:   "Create an account",
	Example: `  neuralfeed register --name Ada --email ada@example.com --password secret`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return submit(cmd, authflow.Register, authflow.Credentials{Name: flagName, Email: flagEmail, Password: flagPassword})
	},
}

var socialCmd = &cobra.Command{
	Use:       "social <provider>",
	Short:     "Start a Google or GitHub sign-in",
	Long:      "Prints the provider URL to open in a browser. The browser session is signed in once the provider redirects back.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"google", "github"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		flow := authflow.New(client, client, printer(cmd.OutOrStdout(), cmd.ErrOrStderr()))
		res, err := flow.SocialAction(cmd.Context(), args[0])
		if err != nil {
			return errReported
		}
		printField(cmd.OutOrStdout(), "Open", res.URL)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Signed out"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		user, err := client.Whoami(cmd.Context())
		if errors.Is(err, authclient.ErrNotSignedIn) {
			return errors.New("not signed in, run 'neuralfeed login'")
		}
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printField(out, "Name", user.Name)
		printField(out, "Email", user.Email)
		printField(out, "ID", user.ID)
		return nil
	},
}

// submit runs one form submission against the server. Validation and
// server failures are printed by the flow.
func submit(cmd *cobra.Command, variant authflow.Variant, creds authflow.Credentials) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	flow := authflow.New(client, client, printer(cmd.OutOrStdout(), cmd.ErrOrStderr()), authflow.WithVariant(variant))
	if err := flow.Submit(cmd.Context(), creds); err != nil {
		return errReported
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&flagEmail, "email", "e", "", "Account e-mail")
		c.Flags().StringVarP(&flagPassword, "password", "p", "", "Account password")
	}
	registerCmd.Flags().StringVarP(&flagName, "name", "n", "", "Display name")

	rootCmd.AddCommand(loginCmd, registerCmd, socialCmd, logoutCmd, whoamiCmd)
}
