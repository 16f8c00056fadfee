package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/neuralfeed/internal/authclient"
	"github.com/nfrund/neuralfeed/internal/config"
)

// appFs holds the session file. Tests swap in a memory filesystem.
var appFs afero.Fs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "neuralfeed",
	Short: "Neural Feed Messenger command line client",
	Long: `neuralfeed signs you in to a Neural Feed Messenger server.

The server is read from NEURALFEED_URL (default http://localhost:8080) and
the session is kept in $NEURALFEED_HOME/session.json (default ~/.neuralfeed).

Use "neuralfeed [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}

func newClient() (*authclient.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	return authclient.New(cfg.ServerURL, authclient.NewSessionStore(appFs, cfg.SessionPath()))
}
