package view_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/neuralfeed/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

func setupTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	store := sessions.NewCookieStore([]byte(testSessionSecret))
	sessionMiddleware := session.Middleware(store)

	// Run a no-op handler through the middleware so the store is in the
	// context.
	var c echo.Context
	handler := func(ctx echo.Context) error { c = ctx; return nil }
	sessionMiddleware(handler)(e.NewContext(req, rec))

	return c, rec
}

func TestFlashMessages(t *testing.T) {
	t.Run("success flash is read once", func(t *testing.T) {
		c, _ := setupTestContext()

		view.SetFlashSuccess(c, "Logged in successfully")

		flashes := view.GetFlashData(c)
		assert.Equal(t, []string{"Logged in successfully"}, flashes.Success)
		assert.Empty(t, flashes.Error)

		assert.True(t, view.GetFlashData(c).Empty(), "flashes should be cleared after being read")
	})

	t.Run("error flash", func(t *testing.T) {
		c, _ := setupTestContext()

		view.SetFlashError(c, "Invalid credentials")

		flashes := view.GetFlashData(c)
		assert.Equal(t, []string{"Invalid credentials"}, flashes.Error)
		assert.Empty(t, flashes.Success)
	})

	t.Run("no flashes", func(t *testing.T) {
		c, _ := setupTestContext()
		assert.True(t, view.GetFlashData(c).Empty())
	})

	t.Run("form email survives one render", func(t *testing.T) {
		c, _ := setupTestContext()

		view.SetFormEmail(c, "ada@example.com")
		assert.Equal(t, "ada@example.com", view.PopFormEmail(c))
		assert.Empty(t, view.PopFormEmail(c))
	})
}

func TestAdapters(t *testing.T) {
	node := html.P(gomponents.Text("hello"))

	var buf bytes.Buffer
	require.NoError(t, view.AdaptGomponentToTempl(node).Render(context.Background(), &buf))
	assert.Equal(t, "<p>hello</p>", buf.String())

	buf.Reset()
	component := templ.Raw("<em>hi</em>")
	require.NoError(t, view.AdaptTemplToGomponent(component).Render(&buf))
	assert.Equal(t, "<em>hi</em>", buf.String())
}
