package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/internal/messaging"
)

// placeholder stands in for values the server does not have yet
const placeholder = "--"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(18)
	valueStyle = lipgloss.NewStyle().Bold(true)
	darkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	lightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func formatWh(wh float64) string {
	return fmt.Sprintf("%.2f Wh", wh)
}

func renderStats(addr string, data *messaging.DataResponse) string {
	luminance := placeholder
	if data.CurrentLuminance != nil {
		s := domain.LuminanceSample{Value: *data.CurrentLuminance}
		luminance = fmt.Sprintf("%.1f nits (%s)", s.Value, s.Brightness())
	}
	cpu := placeholder
	if data.CPUUsage != nil {
		cpu = fmt.Sprintf("%.1f%%", *data.CPUUsage)
	}
	source := data.Source
	if source == "" || source == domain.UnknownSource {
		source = placeholder
	}
	display := placeholder
	if data.Display.WidthPx > 0 {
		display = fmt.Sprintf("%dx%d %s", data.Display.WidthPx, data.Display.HeightPx, data.Display.Tech)
	}

	lines := []string{
		titleStyle.Render("darkwatt @ " + addr),
		row("Luminance", luminance),
		row("Surface", source),
		row("Tracked sites", fmt.Sprint(data.TotalTrackedSites)),
		row("Saved (site)", formatWh(data.Savings.CurrentSite)),
		row("Saved today", formatWh(data.Savings.Today)),
		row("Saved this week", formatWh(data.Savings.Week)),
		row("Saved total", formatWh(data.Savings.Total)),
		row("Potential", formatWh(data.PotentialSavingWh)),
		row("CPU", cpu),
		row("Display", display),
	}
	return strings.Join(lines, "\n")
}

func renderTheme(resp messaging.ThemeResponse) string {
	style := lightStyle
	if resp.Mode.IsDark() {
		style = darkStyle
	}
	defined := "no"
	if resp.DefinedDark {
		defined = "yes"
	}
	return strings.Join([]string{
		row("Theme", style.Render(resp.Mode.String())),
		row("Decided by", string(resp.Signal)),
		row("Own dark theme", defined),
	}, "\n")
}
