package pages

import (
	"fmt"

	"maragu.dev/gomponents"
	"maragu.dev/gomponents/components"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/neuralfeed/internal/domain"
)

// ConversationsData is the view model for the conversations layout.
type ConversationsData struct {
	CurrentUser   *domain.User
	Conversations []ConversationItem
	Users         []*domain.User
	Active        *ConversationItem
	Messages      []MessageItem
}

// ConversationItem is a conversation row with a display title.
type ConversationItem struct {
	ID    string
	Title string
}

// MessageItem is a message with its sender's display name.
type MessageItem struct {
	ID     string
	Sender string
	Body   string
	Mine   bool
}

// Conversations renders the sidebar and, when a conversation is open, its
// messages and the message form.
func Conversations(d ConversationsData) gomponents.Node {
	return Div(
		Class("conversations"),
		Aside(
			Div(
				Class("whoami"),
				gomponents.Text(d.CurrentUser.Name),
				A(Href("/auth/logout"), gomponents.Text("Logout")),
			),
			H3(gomponents.Text("Messages")),
			Ul(
				ID("conversation-list"),
				gomponents.Map(d.Conversations, func(c ConversationItem) gomponents.Node {
					return Li(A(Href("/conversations/"+c.ID), gomponents.Text(c.Title)))
				}),
			),
			H3(gomponents.Text("People")),
			Ul(
				ID("user-list"),
				gomponents.Map(d.Users, func(u *domain.User) gomponents.Node {
					return Li(Form(
						Method("post"),
						Action("/conversations"),
						Input(Type("hidden"), Name("userId"), Value(u.ID)),
						Button(Type("submit"), gomponents.Text(u.Name)),
					))
				}),
			),
		),
		gomponents.If(d.Active != nil, activeConversation(d)),
	)
}

func activeConversation(d ConversationsData) gomponents.Node {
	return Section(
		Class("conversation"),
		H2(gomponents.Text(d.Active.Title)),
		Div(
			ID("messages"),
			gomponents.Map(d.Messages, Message),
		),
		MessageForm(d.Active.ID),
	)
}

// Message renders a single message. It is also returned on its own as the
// htmx response to a posted message.
func Message(m MessageItem) gomponents.Node {
	return Div(
		ID("message-"+m.ID),
		components.Classes{"message": true, "message-mine": m.Mine},
		Span(Class("sender"), gomponents.Text(m.Sender)),
		P(gomponents.Text(m.Body)),
	)
}

// MessageForm posts a message and appends the rendered reply to the list.
// The input is cleared after each request.
func MessageForm(conversationID string) gomponents.Node {
	action := fmt.Sprintf("/conversations/%s/messages", conversationID)
	return Form(
		ID("message-form"),
		Method("post"),
		Action(action),
		hx.Post(action),
		hx.Target("#messages"),
		hx.Swap("beforeend"),
		gomponents.Attr("hx-on::after-request", "if(event.detail.successful) this.reset()"),
		gomponents.Attr("hx-disabled-elt", "find button"),
		Input(Name("message"), Type("text"), Placeholder("Write a message"), AutoComplete("off"), Required()),
		Button(Type("submit"), gomponents.Text("Send")),
	)
}
