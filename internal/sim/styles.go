package sim

import (
	"github.com/charmbracelet/lipgloss"

	"aether-sim/internal/cas"
)

var (
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	clusterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	energyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	flagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)

	modeStyles = map[string]lipgloss.Style{
		cas.ModeDirect.String(): lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		cas.ModeChain.String():  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		cas.ModeTwoHop.String(): lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
)

func modeStyle(mode string) lipgloss.Style {
	if s, ok := modeStyles[mode]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
