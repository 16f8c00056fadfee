package pages

import (
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/neuralfeed/internal/view"
)

const (
	htmxSrc    = "https://unpkg.com/htmx.org@2.0.4"
	stylesheet = "/static/css/app.css"
)

// DocumentTitle returns the document title for a page.
func DocumentTitle(title string) string {
	if title != "" {
		return title + " - Neural Feed"
	}
	return "Neural Feed"
}

// Page wraps body in the document shell and renders queued notifications
// above it.
func Page(title string, flashes view.FlashData, body ...gomponents.Node) gomponents.Node {
	return components.HTML5(components.HTML5Props{
		Title:    DocumentTitle(title),
		Language: "en",
		Head: []gomponents.Node{
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			Link(Rel("stylesheet"), Href(stylesheet)),
			Script(Src(htmxSrc), Defer()),
		},
		Body: []gomponents.Node{
			Main(
				ID("content"),
				Notifications(flashes),
				gomponents.Group(body),
			),
		},
	})
}

// Notifications renders flash messages as toasts.
func Notifications(flashes view.FlashData) gomponents.Node {
	if flashes.Empty() {
		return nil
	}
	return Div(
		ID("toasts"),
		gomponents.Map(flashes.Success, func(msg string) gomponents.Node {
			return Div(Class("toast toast-success"), Role("status"), gomponents.Text(msg))
		}),
		gomponents.Map(flashes.Error, func(msg string) gomponents.Node {
			return Div(Class("toast toast-error"), Role("alert"), gomponents.Text(msg))
		}),
	)
}
