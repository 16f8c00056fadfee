package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/nfrund/neuralfeed/internal/authflow"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7c3aed")).Width(8)
)

// printer writes flow notifications to the terminal.
func printer(out, errOut io.Writer) authflow.Notifier {
	return authflow.NotifierFuncs{
		OnSuccess: func(msg string) { fmt.Fprintln(out, successStyle.Render("✓ "+msg)) },
		OnError:   func(msg string) { fmt.Fprintln(errOut, errorStyle.Render("✗ "+msg)) },
	}
}

func printField(out io.Writer, label, value string) {
	fmt.Fprintln(out, labelStyle.Render(label)+value)
}
