package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/metadata"
	"github.com/litescript/ls-skymap/internal/state"
	"github.com/litescript/ls-skymap/internal/version"
)

// Overlay colours drawn into the braille canvas.
const (
	colorHighlight = "#ffe8a3"
	colorTooltipFG = "#e6ecff"
	colorTooltipBG = "#1a2238"
)

const (
	minMapCols = 20
	minMapRows = 8
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.loadErr != nil {
		return errorStyle.Render("Failed to load sky catalog: "+m.loadErr.Error()) +
			"\n\n" + dimStyle.Render("Press q to quit.")
	}
	if m.cat == nil {
		return "Loading sky catalog..."
	}
	if m.mapCols < minMapCols || m.mapRows < minMapRows || m.frame.canvas == nil {
		return "Star map requires a larger terminal"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	sky := strings.Join(m.frame.canvas.Lines(), "\n")
	if m.mapCols < m.width && m.panelVisible() {
		panel := m.renderPanel(m.width - m.mapCols)
		sky = lipgloss.JoinHorizontal(lipgloss.Top, sky, panel)
	}
	b.WriteString(sky)
	b.WriteString("\n")

	switch {
	case m.query.Focused():
		b.WriteString(m.query.View())
	case m.answer != "":
		b.WriteString(answerStyle.Render(truncate(m.answer, m.width)))
	default:
		b.WriteString(dimStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(truncate(m.helpText(), m.width)))
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("ls-skymap " + version.Version)
	v := m.machine.View()
	where := "All constellations"
	if v.IsSelected() {
		where = fmt.Sprintf("%s  ×%.1f", v.Selected, m.frame.transform.Zoom)
		if v.Collapsed {
			where += "  (panel hidden)"
		}
	}
	var extras []string
	if m.overlays.Meridian {
		extras = append(extras, "meridian")
	}
	if m.overlays.Sun {
		extras = append(extras, "sun")
	}
	if len(extras) > 0 {
		where += "  [" + strings.Join(extras, ", ") + "]"
	}
	if sky, ok := m.controller.Hover().Sky(m.frame.transform); ok {
		where += "  " + formatFocus(sky)
	}
	return title + "  " + headerStyle.Render(where)
}

func (m Model) helpText() string {
	if m.query.Focused() {
		return "enter: ask  esc: cancel"
	}
	help := "click: select  /: ask  n/p: next/prev  a: all  c: panel  i: image  s: survey  m: meridian  o: sun  y: copy  q: quit"
	if v := m.machine.View(); v.MetadataErr != nil {
		help = "r: retry  " + help
	}
	return help
}

// renderPanel renders the info panel for the selection.
func (m Model) renderPanel(cols int) string {
	v := m.machine.View()
	inner := cols - 4
	if inner < 10 {
		inner = 10
	}

	var lines []string
	lines = append(lines, panelTitleStyle.Render(v.Selected))
	lines = append(lines, labelStyle.Render("Centre ")+formatFocus(v.Focus))
	if m.overlays.Sun {
		lines = append(lines, labelStyle.Render("Sun ")+formatSunSeparation(v.Focus, m.lastFrame))
	}

	switch {
	case v.Loading:
		lines = append(lines, "", dimStyle.Render("Loading description..."))
	case v.Metadata != nil:
		rec := v.Metadata
		lines = append(lines,
			labelStyle.Render("Area ")+rec.Area,
			labelStyle.Render("Brightest ")+rec.BrightestStar,
			"",
			lipgloss.NewStyle().Width(inner).Render(rec.Description),
		)
		if rec.ReferenceURL != "" {
			lines = append(lines, "", dimStyle.Render(truncate(rec.ReferenceURL, inner)))
		}
		if rec.Fallback {
			lines = append(lines, errorStyle.Render("Description unavailable (r: retry)"))
		}
	}

	if m.showImage {
		lines = append(lines, "")
		lines = append(lines, m.renderImage(inner)...)
	}

	return panelStyle.Width(cols - 2).Height(m.mapRows - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderImage(cols int) []string {
	switch {
	case m.opts.Images == nil:
		return []string{dimStyle.Render("Imagery disabled")}
	case m.imageLoading:
		return []string{dimStyle.Render("Fetching " + m.survey + " image...")}
	case m.imageErr != nil:
		return []string{errorStyle.Render("Image failed (r: retry)")}
	case m.image == nil:
		return nil
	}
	w := thumbCols
	if cols < w {
		w = cols
	}
	out := Thumbnail(m.image, w, thumbRows)
	return append(out, dimStyle.Render(m.survey+" via "+metadata.SkyViewSource))
}

// panelText is the info panel as plain text, for copying.
func panelText(v state.View) string {
	if !v.IsSelected() {
		return ""
	}
	lines := []string{v.Selected, "Centre " + formatFocus(v.Focus)}
	if rec := v.Metadata; rec != nil {
		lines = append(lines,
			"Area: "+rec.Area,
			"Brightest star: "+rec.BrightestStar,
			"",
			rec.Description,
		)
		if rec.ReferenceURL != "" {
			lines = append(lines, "", rec.ReferenceURL)
		}
	}
	return strings.Join(lines, "\n")
}

// formatSunSeparation gives the Sun's distance from a sky position at t,
// or now when t is zero.
func formatSunSeparation(e astro.Equatorial, t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return fmt.Sprintf("%.0f° away", astro.SunSeparation(e, t))
}

func formatFocus(e astro.Equatorial) string {
	return astro.FormatRA(e.RAdeg) + "  " + astro.FormatDec(e.DecDeg)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
