package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
)

func (a *App) View() string {
	var body string
	switch a.view {
	case viewSession:
		body = a.renderSession()
	case viewHistory:
		body = a.renderHistory()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderMixer()
	}

	out := a.renderHeader() + "\n\n" + body
	if a.modal != modalNone {
		out += "\n\n" + a.renderModal()
	}
	if a.status != "" {
		out += "\n\n" + a.renderStatus()
	}
	return out
}

func (a *App) renderHeader() string {
	views := []struct {
		v     viewState
		label string
	}{
		{viewMixer, "[m] Mixer"},
		{viewSession, "[s] Session"},
		{viewHistory, "[h] History"},
		{viewSettings, "[o] Settings"},
	}
	var tabs []string
	for _, t := range views {
		if t.v == a.view {
			tabs = append(tabs, activeViewStyle.Render(t.label))
		} else {
			tabs = append(tabs, inactiveViewStyle.Render(t.label))
		}
	}
	return titleStyle.Render("Jamdeck") + "  " + strings.Join(tabs, " ")
}

func (a *App) renderStatus() string {
	if strings.HasPrefix(a.status, "error:") {
		return errStyle.Render(a.status)
	}
	return okStyle.Render(a.status)
}

func (a *App) renderMixer() string {
	var b strings.Builder

	b.WriteString(a.renderAssetsLine() + "\n\n")

	b.WriteString(labelStyle.Render("mean steering  ") +
		renderSlider(a.steer.Mean, 0, 2, 30) +
		valueStyle.Render(fmt.Sprintf("  %.2f", a.steer.Mean)) + "\n")

	k, received := a.steer.CentroidCount()
	if k <= 0 {
		if !received {
			b.WriteString(mutedStyle.Render("waiting for assets status...") + "\n")
		} else {
			b.WriteString(mutedStyle.Render("no centroids loaded") + "\n")
		}
	} else {
		sel := fmt.Sprintf("centroid %d/%d", a.steer.CompactIndex+1, k)
		b.WriteString("\n" + labelStyle.Render("◀ ") + selectedStyle.Render(sel) + labelStyle.Render(" ▶") + "\n")
		b.WriteString(labelStyle.Render("intensity      ") +
			renderSlider(a.steer.CompactIntensity, 0, 2, 30) +
			valueStyle.Render(fmt.Sprintf("  %.2f", a.steer.CompactIntensity)) + "\n")

		if a.steer.ShowAdvancedCentroids {
			b.WriteString("\n" + a.renderWeightBars(k) + "\n")
		}
	}

	b.WriteString("\n" + helpLine(
		"←/→", "select centroid",
		"↑/↓", "intensity",
		"[/]", "mean",
		"a", "advanced",
		"0", "zero",
		"enter", "start",
	))
	return b.String()
}

func (a *App) renderAssetsLine() string {
	var parts []string
	if a.steer.AssetsRepo != "" {
		parts = append(parts, labelStyle.Render("assets ")+valueStyle.Render(a.steer.AssetsRepo))
	}
	if a.steer.MeanAvailable {
		parts = append(parts, okStyle.Render("mean ✓"))
	} else {
		parts = append(parts, mutedStyle.Render("mean ✗"))
	}
	if k, _ := a.steer.CentroidCount(); k > 0 {
		parts = append(parts, okStyle.Render(fmt.Sprintf("centroids %d", k)))
	} else {
		parts = append(parts, mutedStyle.Render("centroids ✗"))
	}
	if !a.steer.AssetsAvailable() {
		parts = append(parts, warnStyle.Render("steering unavailable"))
	}
	if a.playing {
		parts = append(parts, okStyle.Render("▶ playing"))
	}
	return strings.Join(parts, "  ")
}

// renderWeightBars draws the full per-centroid weight vector, selected
// centroid highlighted.
func (a *App) renderWeightBars(k int) string {
	width := a.width
	if width <= 0 {
		width = 80
	}
	if width > 2*k {
		width = 2 * k
	}

	bc := barchart.New(width, 6)
	for i, w := range a.steer.Weights() {
		style := barStyle
		if i == a.steer.CompactIndex {
			style = barActiveStyle
		}
		bc.Push(barchart.BarData{
			Label: strconv.Itoa(i),
			Values: []barchart.BarValue{
				{Name: "weight", Value: w, Style: style},
			},
		})
	}
	bc.Draw()
	return bc.View()
}

func (a *App) renderSession() string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("style prompts") + "\n")
	for i, e := range a.params.Styles {
		marker := "  "
		if a.view == viewSession && i == a.sessionCursor {
			marker = selectedStyle.Render("▶ ")
		}
		text := e.Text
		if text == "" {
			text = mutedStyle.Render("<empty>")
		}
		b.WriteString(fmt.Sprintf("%s%-40s %s %s\n", marker, text,
			renderSlider(e.Weight, 0, 2, 16),
			valueStyle.Render(fmt.Sprintf("%.2f", e.Weight))))
	}

	b.WriteString("\n" + labelStyle.Render("generation") + "\n")
	knobs := []struct {
		label string
		value string
	}{
		{"bpm", strconv.Itoa(a.bpm)},
		{"loop weight", fmt.Sprintf("%.2f", a.params.LoopWeight)},
		{"bars/chunk", strconv.Itoa(a.params.Bars)},
		{"temperature", fmt.Sprintf("%.2f", a.params.Temperature)},
		{"top-k", strconv.Itoa(a.params.TopK)},
		{"guidance", fmt.Sprintf("%.2f", a.params.GuidanceWeight)},
	}
	styles := len(a.params.Styles)
	for i, kn := range knobs {
		marker := "  "
		if a.sessionCursor == styles+i {
			marker = selectedStyle.Render("▶ ")
		}
		b.WriteString(fmt.Sprintf("%s%-14s %s\n", marker, labelStyle.Render(kn.label), valueStyle.Render(kn.value)))
	}

	b.WriteString("\n" + helpLine(
		"↑/↓", "row",
		"←/→", "adjust",
		"enter", "edit prompt / start",
		"n", "new prompt",
		"x", "remove",
	))
	return b.String()
}

func (a *App) renderHistory() string {
	if len(a.history) == 0 {
		return mutedStyle.Render("no sessions recorded yet") + "\n\n" + helpLine("r", "reload")
	}

	var b strings.Builder
	for i, rec := range a.history {
		marker := "  "
		if i == a.historyCursor {
			marker = selectedStyle.Render("▶ ")
		}
		styles := rec.Styles
		if len(styles) > 44 {
			styles = styles[:41] + "..."
		}
		b.WriteString(fmt.Sprintf("%s%s  %3d bpm  %-44s %s\n",
			marker,
			mutedStyle.Render(rec.StartedAt.Local().Format("02/01 15:04")),
			rec.BPM,
			styles,
			labelStyle.Render(rec.AssetsRepo)))
	}
	b.WriteString("\n" + helpLine("↑/↓", "select", "enter", "recall into session", "r", "reload"))
	return b.String()
}

func (a *App) renderSettings() string {
	rows := []struct {
		label string
		value string
	}{
		{"backend url", a.cfg.Backend.BaseURL},
		{"poll interval", fmt.Sprintf("%d ms", a.cfg.Backend.PollIntervalMS)},
		{"default bpm", strconv.Itoa(a.cfg.Session.DefaultBPM)},
	}

	var b strings.Builder
	for i, r := range rows {
		marker := "  "
		if i == a.settingsCursor {
			marker = selectedStyle.Render("▶ ")
		}
		b.WriteString(fmt.Sprintf("%s%-14s %s\n", marker, labelStyle.Render(r.label), valueStyle.Render(r.value)))
	}
	b.WriteString(mutedStyle.Render("\ndatabase: "+a.cfg.Database.Path) + "\n")
	b.WriteString("\n" + helpLine("u", "edit url", "←/→", "adjust", "w", "write config"))
	return b.String()
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalEditPrompt:
		out := titleStyle.Render("Edit style prompt") + "\n" + a.promptInput.View()
		if len(a.suggestions) > 0 {
			out += "\n" + labelStyle.Render("recall:")
			for i, s := range a.suggestions {
				line := fmt.Sprintf("  %s (%.0f%%)", s.Text, s.Score*100)
				if i == 0 {
					line += mutedStyle.Render("  [tab]")
				}
				out += "\n" + mutedStyle.Render(line)
			}
		}
		return out + "\n" + helpLine("enter", "apply", "tab", "take suggestion", "esc", "cancel")
	case modalEditURL:
		return titleStyle.Render("Backend base URL") + "\n" + a.urlInput.View() +
			"\n" + helpLine("enter", "apply", "esc", "cancel")
	}
	return ""
}

// renderSlider draws val within [lo,hi] as a fixed-width bar.
func renderSlider(val, lo, hi float64, width int) string {
	if hi <= lo {
		return ""
	}
	frac := (val - lo) / (hi - lo)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	on := int(frac*float64(width) + 0.5)
	return sliderOnStyle.Render(strings.Repeat("█", on)) +
		sliderOffStyle.Render(strings.Repeat("░", width-on))
}

func helpLine(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpKeyStyle.Render(pairs[i])+" "+helpDescStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "   ")
}
