package authform

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nfrund/neuralfeed/internal/authflow"
)

var (
	accent = lipgloss.Color("#7c3aed")

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 3).
			Width(48)
	titleStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(10)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")).Bold(true)
)

var labels = [...]string{fieldName: "Name", fieldEmail: "Email", fieldPassword: "Password"}

func (m *Model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	if m.Variant() == authflow.Register {
		b.WriteString(titleStyle.Render("Create an account"))
	} else {
		b.WriteString(titleStyle.Render("Sign in to your account"))
	}
	b.WriteString("\n\n")

	for _, f := range m.visible() {
		b.WriteString(labelStyle.Render(labels[f]))
		b.WriteString(m.inputs[f].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.Loading() {
		b.WriteString(titleStyle.Render("Please wait..."))
		b.WriteString("\n")
	}
	if n := m.notices.get(); n.text != "" {
		if n.isErr {
			b.WriteString(errorStyle.Render(n.text))
		} else {
			b.WriteString(successStyle.Render(n.text))
		}
		b.WriteString("\n")
	}

	toggle := "ctrl+t create an account"
	if m.Variant() == authflow.Register {
		toggle = "ctrl+t sign in instead"
	}
	b.WriteString(helpStyle.Render("enter submit • tab next • " + toggle))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+g Google • ctrl+h GitHub • esc quit"))

	return boxStyle.Render(b.String()) + "\n"
}
