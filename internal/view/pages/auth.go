package pages

import (
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/neuralfeed/internal/authflow"
)

// ProviderLink is a federated sign-in button.
type ProviderLink struct {
	Name        string
	DisplayName string
}

// AuthFormData is the view model for the sign-in page.
type AuthFormData struct {
	Variant   authflow.Variant
	Email     string
	Providers []ProviderLink
}

// AuthForm renders the login or register form. The submit button is
// disabled by htmx while the request is in flight.
func AuthForm(d AuthFormData) gomponents.Node {
	register := d.Variant == authflow.Register

	action, submit := "/auth/login", "Sign in"
	toggleText, toggleLink, toggleHref := "New to Neural Feed?", "Create an account", "/?variant=register"
	if register {
		action, submit = "/auth/register", "Register"
		toggleText, toggleLink, toggleHref = "Already have an account?", "Login", "/?variant=login"
	}

	return Div(
		Class("auth"),
		H2(gomponents.Text("Sign in to your account")),
		Form(
			ID("auth-form"),
			Method("post"),
			Action(action),
			hx.Boost("true"),
			gomponents.Attr("hx-disabled-elt", "find button"),
			gomponents.If(register, field("name", "Name", "text", "")),
			field("email", "Email address", "email", d.Email),
			field("password", "Password", "password", ""),
			Button(Type("submit"), Class("btn-primary"), gomponents.Text(submit)),
		),
		gomponents.If(len(d.Providers) > 0, Div(
			Class("social"),
			P(gomponents.Text("Or continue with")),
			gomponents.Map(d.Providers, func(p ProviderLink) gomponents.Node {
				return A(
					Class("btn-social"),
					Href("/auth/social/"+p.Name),
					gomponents.Text(p.DisplayName),
				)
			}),
		)),
		P(
			Class("toggle"),
			gomponents.Text(toggleText+" "),
			A(ID("toggle-variant"), Href(toggleHref), gomponents.Text(toggleLink)),
		),
	)
}

func field(name, label, typ, value string) gomponents.Node {
	return Div(
		Class("field"),
		Label(For(name), gomponents.Text(label)),
		Input(
			ID(name),
			Name(name),
			Type(typ),
			Value(value),
			Required(),
			gomponents.If(typ == "email", AutoComplete("email")),
		),
	)
}
