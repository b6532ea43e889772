package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// colorEnabled gates all styled output. Resolved once per run from the
// configured color mode.
var colorEnabled = true

// applyColorMode resolves the output.color setting. "auto" enables
// color only when stdout is a terminal.
func applyColorMode(mode string) {
	switch mode {
	case "always":
		colorEnabled = true
	case "never":
		colorEnabled = false
	default:
		colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

func styled(style lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return style.Render(s)
}

func header(s string) string  { return styled(headerStyle, s) }
func success(s string) string { return styled(successStyle, s) }
func warn(s string) string    { return styled(warnStyle, s) }
func dim(s string) string     { return styled(dimStyle, s) }
