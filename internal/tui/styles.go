// Package tui provides the terminal user interface for watching upcoming
// maintenance.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for the watch view.
var (
	ColorPrimary = lipgloss.Color("#0EA5E9") // Sky
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorBorder  = lipgloss.Color("#4B5563") // Dark gray
)

// Base styles.
var (
	// StyleTitle is used for section titles.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleMuted is used for secondary information.
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleUnit is used for AC unit names.
	StyleUnit = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleSelected marks the row under the cursor.
	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Reverse(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// StyleFieldName labels notification and detail fields.
	StyleFieldName = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	StyleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Box styles.
var (
	// StyleListBox frames the upcoming list.
	StyleListBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	// StyleBannerBox frames a raised notification.
	StyleBannerBox = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(ColorWarning).
			Padding(0, 1).
			MarginBottom(1)

	// StyleDetailBox frames the detail pane.
	StyleDetailBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)
)

// helpKey is one entry of the help bar.
type helpKey struct {
	key  string
	desc string
}

// HelpBar renders a key legend.
func HelpBar(keys ...helpKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, StyleHelpKey.Render(k.key)+" "+StyleHelpDesc.Render(k.desc))
	}
	return StyleHelp.Render(strings.Join(parts, "  •  "))
}

// boxWidth leaves room for a border and padding inside width.
func boxWidth(width int) int {
	return max(width-4, 20)
}
