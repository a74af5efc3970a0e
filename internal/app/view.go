package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/JulienEnigma/instacommand/internal/campaign"
	"github.com/JulienEnigma/instacommand/internal/telemetry"
)

var (
	colorAccent  = lipgloss.Color("203")
	colorDim     = lipgloss.Color("241")
	colorOK      = lipgloss.Color("114")
	colorWarn    = lipgloss.Color("221")
	colorErr     = lipgloss.Color("203")
	colorTitle   = lipgloss.Color("252")
	colorPending = lipgloss.Color("110")

	titleStyle  = lipgloss.NewStyle().Foreground(colorTitle).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	okStyle     = lipgloss.NewStyle().Foreground(colorOK)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	errStyle    = lipgloss.NewStyle().Foreground(colorErr)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent)
	advStyle    = lipgloss.NewStyle().Foreground(colorPending).Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

var outcomeStyles = map[telemetry.Outcome]lipgloss.Style{
	telemetry.OutcomeSuccess: okStyle,
	telemetry.OutcomeWarning: warnStyle,
	telemetry.OutcomeError:   errStyle,
}

func renderPanel(title, body string, width, height int) string {
	inner := width - panelStyle.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}
	head := titleStyle.Render(title)
	return panelStyle.Width(inner).Height(height).Render(head + "\n" + body)
}

func (m *Model) resizePanels() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	contentHeight := m.height - 6
	if contentHeight < 6 {
		contentHeight = 6
	}
	topHeight := contentHeight * 2 / 3
	bottomHeight := contentHeight - topHeight

	leftWidth := m.width * 3 / 5
	rightWidth := m.width - leftWidth

	m.feedView = viewport.New(leftWidth-4, topHeight-1)
	m.campaignView = viewport.New(rightWidth-4, topHeight-1)
	m.historyView = viewport.New(m.width-4, bottomHeight-1)
}

func (m *Model) refreshFeedView() {
	if !m.ready {
		return
	}
	entries := m.feed.SnapshotByCategory(m.currentFilter())
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, renderEntry(e))
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("awaiting telemetry..."))
	}
	m.feedView.SetContent(strings.Join(lines, "\n"))
	m.feedView.GotoBottom()
}

func renderEntry(e telemetry.LogEntry) string {
	style, ok := outcomeStyles[e.Outcome]
	if !ok {
		style = dimStyle
	}
	line := fmt.Sprintf("%s %s", dimStyle.Render(e.Timestamp), style.Render(e.Action))
	if e.Target != "" {
		line += " " + accentStyle.Render(e.Target)
	}
	if e.Details != "" {
		line += dimStyle.Render(" | " + e.Details)
	}
	if e.Probability != nil {
		line += dimStyle.Render(fmt.Sprintf(" (%d%%)", *e.Probability))
	}
	return line
}

func (m *Model) refreshHistoryView() {
	if !m.ready {
		return
	}
	commands := m.console.History().Snapshot()
	lines := make([]string, 0, len(commands)*2)
	for _, c := range commands {
		marker := okStyle.Render("+")
		if !c.Success {
			marker = errStyle.Render("x")
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			dimStyle.Render(c.Timestamp), marker, c.Input))
		if c.Output != "" {
			lines = append(lines, "  "+dimStyle.Render(c.Output))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("no commands yet"))
	}
	m.historyView.SetContent(strings.Join(lines, "\n"))
	m.historyView.GotoBottom()
}

func (m *Model) refreshCampaignView() {
	if !m.ready {
		return
	}
	visible := m.visibleCampaigns()
	if m.campaignCursor >= len(visible) {
		m.campaignCursor = 0
	}
	lines := make([]string, 0, len(visible)*3)
	for i, c := range visible {
		lines = append(lines, renderCampaign(c, i == m.campaignCursor)...)
	}
	if len(visible) == 0 {
		lines = append(lines, dimStyle.Render("nothing here"))
	}
	m.campaignView.SetContent(strings.Join(lines, "\n"))
}

func renderCampaign(c campaign.Campaign, selected bool) []string {
	cursor := "  "
	if selected {
		cursor = accentStyle.Render("> ")
	}
	head := fmt.Sprintf("%s%s %s", cursor, titleStyle.Render(c.Codename),
		statusBadge(c.Status))
	meter := fmt.Sprintf("   %s %d/%d", progressBar(c.Progress, 14), c.Current, c.Target)
	lines := []string{head, dimStyle.Render(meter)}
	if c.Status == campaign.StatusCompleted && c.Verdict != "" {
		lines = append(lines, "   "+okStyle.Render(c.Verdict))
	}
	return lines
}

func statusBadge(s campaign.Status) string {
	switch s {
	case campaign.StatusActive:
		return okStyle.Render("[ACTIVE]")
	case campaign.StatusPaused:
		return warnStyle.Render("[PAUSED]")
	case campaign.StatusCompleted:
		return okStyle.Render("[DONE]")
	case campaign.StatusFailed:
		return errStyle.Render("[FAILED]")
	case campaign.StatusArchived:
		return dimStyle.Render("[ARCHIVED]")
	default:
		return dimStyle.Render("[SCHEDULED]")
	}
}

func progressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := int(progress / 100 * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// View lays out the console: telemetry and campaigns on top, command echo
// below, then the advisory strip, input line, and help line.
func (m Model) View() string {
	if !m.ready {
		return "initializing..."
	}

	feedTitle := "TELEMETRY"
	if f := m.currentFilter(); f != "" {
		feedTitle += " [" + strings.ToUpper(string(f)) + "]"
	}
	if !m.feed.Connected() {
		feedTitle += errStyle.Render(" OFFLINE")
	}
	campaignTitle := "CAMPAIGNS"
	if m.showArchived {
		campaignTitle = "CAMPAIGNS [ARCHIVED]"
	}

	leftWidth := m.width * 3 / 5
	rightWidth := m.width - leftWidth
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		renderPanel(feedTitle, m.feedView.View(), leftWidth, m.feedView.Height),
		renderPanel(campaignTitle, m.campaignView.View(), rightWidth, m.campaignView.Height),
	)
	bottom := renderPanel("COMMAND LOG", m.historyView.View(), m.width, m.historyView.Height)

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n")
	b.WriteString(bottom)
	b.WriteString("\n")

	if m.showAdvisory {
		if s, ok := m.notifier.Latest(); ok {
			b.WriteString(advStyle.Render(
				fmt.Sprintf("STANLEY %s %s (%s) ctrl+y to use", s.Timestamp, s.Text, s.Reason)))
			b.WriteString("\n")
		}
	}

	status := m.statusText
	if m.console.Executing() {
		status = m.spin.View() + " " + status
	}
	b.WriteString(dimStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(
		"enter run | tab complete | ^f filter | ^n/^b select | ^p pause | ^a activate | ^g archive | ^d dup | ^v archived | ^y suggest | ^k clear | ^e csv | ^j json | ^c quit"))
	return b.String()
}
