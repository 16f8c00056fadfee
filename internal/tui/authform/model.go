// Package authform is a terminal rendition of the login/register form.
package authform

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nfrund/neuralfeed/internal/authflow"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

// Outcome is what the form ended with.
type Outcome struct {
	SignedIn bool
	// SocialURL is set when a federated sign-in was started and the user
	// has to finish it in a browser.
	SocialURL string
}

type notice struct {
	text  string
	isErr bool
}

// notices is the Notifier given to the flow. It runs on command
// goroutines, so it is guarded.
type notices struct {
	mu   sync.Mutex
	last notice
}

func (n *notices) Success(msg string) { n.set(notice{text: msg}) }
func (n *notices) Error(msg string)   { n.set(notice{text: msg, isErr: true}) }

func (n *notices) set(nt notice) {
	n.mu.Lock()
	n.last = nt
	n.mu.Unlock()
}

func (n *notices) get() notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

type submitDoneMsg struct {
	variant authflow.Variant
	err     error
}

type socialDoneMsg struct {
	res authflow.SignInResult
	err error
}

// Model is the bubbletea model for the form.
type Model struct {
	ctx     context.Context
	flow    *authflow.Flow
	notices *notices

	inputs  []textinput.Model
	focus   int
	pending bool
	outcome Outcome
	quit    bool
}

// New creates the form starting on variant.
func New(ctx context.Context, auth authflow.Authenticator, accounts authflow.AccountCreator, variant authflow.Variant) *Model {
	n := &notices{}
	m := &Model{
		ctx:     ctx,
		flow:    authflow.New(auth, accounts, n, authflow.WithVariant(variant)),
		notices: n,
		inputs:  newInputs(),
	}
	m.focus = m.visible()[0]
	m.updateFocus()
	return m
}

func newInputs() []textinput.Model {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 64
	name.Width = 32

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 254
	email.Width = 32

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 72
	password.Width = 32

	return []textinput.Model{name, email, password}
}

// Outcome reports how the form ended. It is meaningful after the program
// exits.
func (m *Model) Outcome() Outcome {
	return m.outcome
}

// Variant is the active form variant.
func (m *Model) Variant() authflow.Variant {
	return m.flow.State().Variant
}

// Loading reports whether a request is in flight.
func (m *Model) Loading() bool {
	return m.pending || m.flow.State().Loading
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case submitDoneMsg:
		m.pending = false
		if msg.err != nil {
			return m, nil
		}
		if msg.variant == authflow.Register {
			// Account created; sign in with the same e-mail next.
			m.flow.ToggleVariant()
			m.inputs[fieldPassword].SetValue("")
			m.focus = fieldPassword
			m.updateFocus()
			return m, nil
		}
		m.outcome.SignedIn = true
		m.quit = true
		return m, tea.Quit

	case socialDoneMsg:
		m.pending = false
		if msg.err != nil {
			return m, nil
		}
		m.outcome.SocialURL = msg.res.URL
		m.quit = true
		return m, tea.Quit
	}

	// Cursor blink ticks belong to the focused input.
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quit = true
		return m, tea.Quit
	}
	if m.Loading() {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+t":
		m.flow.ToggleVariant()
		m.clampFocus()
		return m, nil
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	case "enter":
		return m, m.submit()
	case "ctrl+g":
		return m, m.social("google")
	case "ctrl+h":
		return m, m.social("github")
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	creds := authflow.Credentials{
		Email:    strings.TrimSpace(m.inputs[fieldEmail].Value()),
		Password: m.inputs[fieldPassword].Value(),
	}
	variant := m.Variant()
	if variant == authflow.Register {
		creds.Name = strings.TrimSpace(m.inputs[fieldName].Value())
	}

	m.pending = true
	ctx, flow := m.ctx, m.flow
	return func() tea.Msg {
		return submitDoneMsg{variant: variant, err: flow.Submit(ctx, creds)}
	}
}

func (m *Model) social(provider string) tea.Cmd {
	m.pending = true
	ctx, flow := m.ctx, m.flow
	return func() tea.Msg {
		res, err := flow.SocialAction(ctx, provider)
		return socialDoneMsg{res: res, err: err}
	}
}

// visible lists the inputs shown for the active variant.
func (m *Model) visible() []int {
	if m.Variant() == authflow.Register {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m *Model) moveFocus(delta int) {
	fields := m.visible()
	pos := 0
	for i, f := range fields {
		if f == m.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	m.focus = fields[pos]
	m.updateFocus()
}

// clampFocus moves focus off an input the variant no longer shows.
func (m *Model) clampFocus() {
	for _, f := range m.visible() {
		if f == m.focus {
			return
		}
	}
	m.focus = m.visible()[0]
	m.updateFocus()
}

func (m *Model) updateFocus() {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}
