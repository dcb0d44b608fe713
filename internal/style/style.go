// Package style renders the CLI's colored status lines and tables: a
// small palette of lipgloss styles plus termenv color-profile detection
// so output degrades gracefully when stdout isn't a terminal.
package style

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(purple)
	okStyle     = lipgloss.NewStyle().Foreground(green)
	errStyle    = lipgloss.NewStyle().Foreground(red)
	warnStyle   = lipgloss.NewStyle().Foreground(yellow)
	labelStyle  = lipgloss.NewStyle().Foreground(dim)
)

// Configure sets lipgloss's color profile from the terminal environment,
// falling back to plain ASCII when stdout isn't a TTY.
func Configure() {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

func OK(format string, a ...any) string {
	return okStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func Warn(format string, a ...any) string {
	return warnStyle.Render("!") + " " + fmt.Sprintf(format, a...)
}

func Err(format string, a ...any) string {
	return errStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

func Accent(s string) string { return accentStyle.Render(s) }

// KeyValues renders aligned "label: value" lines.
func KeyValues(pairs [][2]string) string {
	maxLen := 0
	for _, p := range pairs {
		if len(p[0]) > maxLen {
			maxLen = len(p[0])
		}
	}
	var sb strings.Builder
	for _, p := range pairs {
		label := fmt.Sprintf("%-*s", maxLen+1, p[0]+":")
		sb.WriteString(labelStyle.Render(label) + " " + p[1] + "\n")
	}
	return sb.String()
}
