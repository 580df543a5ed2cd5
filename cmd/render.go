package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#E95420"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	blue    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("#C2185B"))
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BCD4"))
	gray    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9A9EA0"))
	bold    = lipgloss.NewStyle().Bold(true)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// section separates groups of rows
type section [][]string

func renderTable(title string, headers []string, sections ...section) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(gray).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			switch {
			case row == table.HeaderRow:
				return style.Bold(true)
			case col == 0:
				return style.Inherit(cyan)
			default:
				return style.Align(lipgloss.Right)
			}
		})

	for i, s := range sections {
		if i > 0 {
			t.Row(blankRow(len(headers))...)
		}
		for _, row := range s {
			t.Row(row...)
		}
	}

	return bold.Render(title) + "\n" + t.Render()
}

func blankRow(n int) []string {
	return make([]string, n)
}

func formatLevel(v float64, unit string) string {
	if math.IsInf(v, -1) {
		return strings.TrimSpace("-inf " + unit)
	}
	return strings.TrimSpace(fmt.Sprintf("%.1f %s", v, unit))
}

func lufsStatus(lufs float64) string {
	switch {
	case lufs > -6:
		return red.Render("very loud")
	case lufs > -10:
		return yellow.Render("loud")
	case lufs > -16:
		return green.Render("normal")
	default:
		return blue.Render("quiet")
	}
}

func peakStatus(peak float64) string {
	switch {
	case peak > -0.1:
		return red.Render("clipping risk")
	case peak > -1.0:
		return yellow.Render("hot")
	default:
		return green.Render("safe")
	}
}

// energyBar draws a ten cell bar for a percentage.
func energyBar(band string, percent float64) string {
	filled := max(0, min(10, int(percent/10)))
	bar := strings.Repeat("■", filled) + strings.Repeat("□", 10-filled)

	switch strings.ToLower(band) {
	case "sub":
		return magenta.Render(bar)
	case "low":
		return blue.Render(bar)
	case "mid":
		return green.Render(bar)
	case "high":
		return yellow.Render(bar)
	default:
		return cyan.Render(bar)
	}
}

// formatDifference colors a track-minus-reference delta: differences at or
// beyond threshold are highlighted, near-zero ones count as a match.
func formatDifference(diff float64, unit string, threshold float64) string {
	if math.IsNaN(diff) {
		return gray.Render("n/a")
	}
	if math.IsInf(diff, 0) {
		return yellow.Render(fmt.Sprintf("%+.0f %s", diff, unit))
	}
	if math.Abs(diff) < 0.1 {
		return green.Render("match")
	}

	arrow := "↓"
	if diff > 0 {
		arrow = "↑"
	}
	text := fmt.Sprintf("%s %+.1f %s", arrow, diff, unit)
	if math.Abs(diff) >= threshold {
		return yellow.Render(text)
	}
	return text
}

func formatBandDifference(diff float64, significant bool) string {
	if math.Abs(diff) < 0.5 {
		return green.Render("match")
	}
	text := fmt.Sprintf("%+.1f%%", diff)
	if significant {
		return yellow.Render("! " + text)
	}
	return text
}
