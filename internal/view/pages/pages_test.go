package pages

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maragu.dev/gomponents"

	"github.com/nfrund/neuralfeed/internal/authflow"
	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/view"
)

func render(t *testing.T, n gomponents.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, n.Render(&buf))
	return buf.String()
}

func TestAuthForm(t *testing.T) {
	t.Run("login variant", func(t *testing.T) {
		html := render(t, AuthForm(AuthFormData{Variant: authflow.Login, Email: "ada@example.com"}))

		assert.Contains(t, html, `action="/auth/login"`)
		assert.Contains(t, html, `value="ada@example.com"`)
		assert.Contains(t, html, `hx-disabled-elt="find button"`)
		assert.Contains(t, html, `href="/?variant=register"`)
		assert.NotContains(t, html, `name="name"`)
		assert.NotContains(t, html, "Or continue with")
	})

	t.Run("register variant", func(t *testing.T) {
		html := render(t, AuthForm(AuthFormData{
			Variant:   authflow.Register,
			Providers: []ProviderLink{{Name: "google", DisplayName: "Google"}},
		}))

		assert.Contains(t, html, `action="/auth/register"`)
		assert.Contains(t, html, `name="name"`)
		assert.Contains(t, html, `href="/?variant=login"`)
		assert.Contains(t, html, `href="/auth/social/google"`)
	})
}

func TestPage(t *testing.T) {
	html := render(t, Page("Sign in", view.FlashData{Error: []string{"Invalid credentials"}}, AuthForm(AuthFormData{})))

	assert.Contains(t, html, "<title>Sign in - Neural Feed</title>")
	assert.Contains(t, html, "Invalid credentials")
	assert.Contains(t, html, htmxSrc)
}

func TestConversations(t *testing.T) {
	html := render(t, Conversations(ConversationsData{
		CurrentUser:   &domain.User{ID: "u1", Name: "Ada"},
		Conversations: []ConversationItem{{ID: "c1", Title: "Grace"}},
		Users:         []*domain.User{{ID: "u2", Name: "Grace"}},
		Active:        &ConversationItem{ID: "c1", Title: "Grace"},
		Messages:      []MessageItem{{ID: "m1", Sender: "Ada", Body: "hello <b>", Mine: true}},
	}))

	assert.Contains(t, html, `href="/conversations/c1"`)
	assert.Contains(t, html, `hx-post="/conversations/c1/messages"`)
	assert.Contains(t, html, "hello &lt;b&gt;")
	assert.Contains(t, html, `class="message message-mine"`)
}
