package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	white       = lipgloss.Color("#ffffff")
	gray        = lipgloss.Color("#a6adc8")
	accent      = lipgloss.Color("#5a56e0")
	accentLight = lipgloss.Color("#8a86f0")
	success     = lipgloss.Color("#3EB974")
	destructive = lipgloss.Color("#a83c3c")
)

var (
	BoldStyle    = lipgloss.NewStyle().Bold(true).Foreground(white)
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	CodeStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentLight)
	HelpStyle    = lipgloss.NewStyle().Foreground(gray)
	ErrStyle     = lipgloss.NewStyle().Foreground(destructive)
	SuccessStyle = lipgloss.NewStyle().Foreground(success)
)

func PrintErrStr(errMsg string) {
	fmt.Println(ErrStyle.Render(errMsg))
}
