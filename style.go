package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	signalHigh = "#00B300"
	signalLow  = "#D05F00"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#D359E3"}
	colorSubtle  = lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#616161"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#388E3C", Dark: "#81C784"}
	colorError   = lipgloss.AdaptiveColor{Light: "#D32F2F", Dark: "#E57373"}

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
)

// renderTable lays out rows under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return strings.TrimRight(t.Render(), "\n") + "\n"
}

func yesNo(b bool) string {
	if b {
		return successStyle.Render("yes")
	}
	return errorStyle.Render("no")
}

// renderStrength colors a signal strength percentage from signalLow to
// signalHigh. Values that don't parse are left unstyled.
func renderStrength(strength string) string {
	n, err := strconv.Atoi(strength)
	if err != nil {
		return strength
	}
	n = max(0, min(n, 100))
	start, _ := colorful.Hex(signalLow)
	end, _ := colorful.Hex(signalHigh)
	blend := start.BlendRgb(end, float64(n)/100.0)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(blend.Hex())).Render(strength + "%")
}
