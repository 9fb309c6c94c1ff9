package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusIndicator renders a document status as a colored dot and label.
func StatusIndicator(s domain.DocumentStatus) string {
	switch s {
	case domain.DocumentCompleted:
		return StyleGreen.Render("● COMPLETED")
	case domain.DocumentError:
		return StyleRed.Render("● ERROR")
	case domain.DocumentAwaitingAuthorization:
		return StyleYellow.Render("● AWAITING AUTHORIZATION")
	case domain.DocumentCreating:
		return StyleBlue.Render("● CREATING")
	}
	return StyleDim.Render("● " + strings.ToUpper(string(s)))
}

// FailureStyle colors authorization problems yellow (the user can fix them
// by signing in) and everything else red.
func FailureStyle(kind export.FailureKind) lipgloss.Style {
	if kind == export.FailureAuthorization {
		return StyleYellow
	}
	return StyleRed
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string { return StyleDim.Render(text) }

func Bold(text string) string { return StyleBold.Render(text) }
