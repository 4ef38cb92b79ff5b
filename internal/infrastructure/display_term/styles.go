package display_term

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/davarch/pipeline-watcher/internal/domain"
)

var (
	ColorGreen = lipgloss.Color("10")
	ColorRed   = lipgloss.Color("9")
	ColorBlue  = lipgloss.Color("12")
	ColorGray  = lipgloss.Color("8")

	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(ColorGray)
)

func colorFor(c domain.Classification) lipgloss.Color {
	switch c {
	case domain.Healthy, domain.Paused:
		return ColorGreen
	case domain.Failed:
		return ColorRed
	case domain.InProgress:
		return ColorBlue
	default:
		return ColorGray
	}
}

func trayColor(s domain.TrayState) lipgloss.Color {
	switch s {
	case domain.TrayHealthy:
		return ColorGreen
	case domain.TrayFailed:
		return ColorRed
	default:
		return ColorGray
	}
}
