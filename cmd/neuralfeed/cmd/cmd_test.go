package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/neuralfeed/internal/authflow"
	"github.com/nfrund/neuralfeed/internal/config"
	"github.com/nfrund/neuralfeed/internal/rendering"
	"github.com/nfrund/neuralfeed/internal/server"
	"github.com/nfrund/neuralfeed/internal/testutils"
)

func setup(t *testing.T) {
	t.Helper()
	h := testutils.NewAuthHarness(t, nil)
	cfg := &config.Config{AppBaseURL: "http://chat.test", SessionSecret: "a-very-secret-key-for-testing-!"}
	s := server.New(cfg, testutils.DiscardLogger, server.Deps{Auth: h.Service, Renderer: rendering.NewUniversalRenderer()})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, s.RegisterRoutes(ctx, h.Bus))
	ts := httptest.NewServer(s.E)
	t.Cleanup(ts.Close)

	t.Setenv("NEURALFEED_URL", ts.URL)
	t.Setenv("NEURALFEED_HOME", "/nf")

	prev := appFs
	appFs = afero.NewMemMapFs()
	t.Cleanup(func() { appFs = prev })
}

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	flagName, flagEmail, flagPassword = "", "", ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCLI_AccountLifecycle(t *testing.T) {
	setup(t)

	out, _, err := execute(t, "register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, authflow.MsgAccountCreated)

	_, errOut, err := execute(t, "register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "Email already in use")

	_, _, err = execute(t, "whoami")
	assert.ErrorContains(t, err, "not signed in")

	_, errOut, err = execute(t, "login", "-e", "ada@example.com", "-p", "wrong")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, authflow.MsgInvalidCredentials)

	out, _, err = execute(t, "login", "-e", "ada@example.com", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, authflow.MsgLoggedIn)

	out, _, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "Ada")

	out, _, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, _, err = execute(t, "whoami")
	assert.ErrorContains(t, err, "not signed in")
}

func TestCLI_LoginValidation(t *testing.T) {
	setup(t)

	_, errOut, err := execute(t, "login", "--email", "not-an-email", "--password", "x")
	assert.ErrorIs(t, err, errReported)
	assert.NotEmpty(t, errOut)
}

func TestCLI_SocialUnknownProvider(t *testing.T) {
	setup(t)

	_, errOut, err := execute(t, "social", "myspace")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, authflow.MsgSocialFailure)
}

func TestCLI_Version(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "neuralfeed v"+version+"\n", out)
}
