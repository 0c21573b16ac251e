package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorDanger = lipgloss.Color("196")

	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorDanger).
			Foreground(colorDanger).
			Padding(1, 3)
)

func dangerBanner(dbName string) string {
	return bannerStyle.Render(fmt.Sprintf(
		"DANGER: --rebuild --force\n\nDatabase '%s' will be DROPPED and RECREATED.\nAll data in it will be lost.",
		dbName,
	))
}
