package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/designlens/designlens/internal/domain"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warn    = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(warn)
	infoStyle     = lipgloss.NewStyle().Foreground(info)
	suggestStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3E635"))
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))

	statusStyles = map[domain.Status]lipgloss.Style{
		domain.StatusPass:            passStyle,
		domain.StatusPassSuggestions: suggestStyle,
		domain.StatusIncomplete:      warnStyle,
		domain.StatusFail:            failStyle,
	}

	severityStyles = map[domain.Severity]lipgloss.Style{
		domain.SeverityCritical:   failStyle,
		domain.SeverityWarning:    warnStyle,
		domain.SeveritySuggestion: suggestStyle,
		domain.SeverityInfo:       infoStyle,
	}
)

// RenderSession renders the human-readable review report.
func RenderSession(session *domain.ReviewSession) string {
	var b strings.Builder

	title := headerStyle.Render("designlens")
	subtitle := dimStyle.Render("Design & Accessibility Review")
	status := statusStyle(session.OverallStatus).Render(strings.ToUpper(string(session.OverallStatus)))
	views := dimStyle.Render(fmt.Sprintf("%d views reviewed", len(session.ViewResults)))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + status + "\n" + views))
	b.WriteString("\n\n")

	for i, view := range session.ViewResults {
		renderView(&b, view)
		if i < len(session.ViewResults)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n")
	b.WriteString("  " + dimStyle.Render("session "+session.SessionID))
	b.WriteString("\n")

	return b.String()
}

func renderView(b *strings.Builder, view domain.ViewReviewResult) {
	status := statusStyle(view.Status).Render(string(view.Status))
	b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
		titleStyle.Render(view.ViewID),
		dimStyle.Render(view.Viewport.String()),
		status,
	))
	b.WriteString(fmt.Sprintf("  %s  %s\n",
		dimStyle.Render("score"),
		scoreStyle(view.Score).Render(fmt.Sprintf("%d / 100", view.Score)),
	))

	counts := view.CountBySeverity()
	if len(view.Findings) > 0 {
		var tags []string
		for _, sev := range []domain.Severity{
			domain.SeverityCritical, domain.SeverityWarning,
			domain.SeveritySuggestion, domain.SeverityInfo,
		} {
			if n := counts[sev]; n > 0 {
				tags = append(tags, severityStyles[sev].Render(fmt.Sprintf("%d %s", n, sev)))
			}
		}
		b.WriteString("  " + strings.Join(tags, "  ") + "\n")
	}

	for _, check := range view.Checks {
		if !check.Ran {
			b.WriteString("  " + warnStyle.Render(fmt.Sprintf("⚠ %s check did not run", check.Check)))
			if check.Error != "" {
				b.WriteString(dimStyle.Render(" (" + check.Error + ")"))
			}
			b.WriteString("\n")
		}
	}

	for _, finding := range view.Findings {
		tag := severityStyles[finding.Severity].Render(fmt.Sprintf("%-10s", finding.Severity))
		b.WriteString(fmt.Sprintf("    %s %s %s\n",
			tag,
			dimStyle.Render("["+string(finding.Check)+"]"),
			finding.Message,
		))
		if finding.SuggestedFix != "" {
			b.WriteString("               " + dimStyle.Render("fix: "+finding.SuggestedFix) + "\n")
		}
	}

	if view.Screenshot != "" {
		b.WriteString("    " + faintStyle.Render("screenshot: "+view.Screenshot) + "\n")
	}
}

func statusStyle(s domain.Status) lipgloss.Style {
	if style, ok := statusStyles[s]; ok {
		return style
	}
	return dimStyle
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 90:
		return passStyle
	case score >= 70:
		return suggestStyle
	case score >= 50:
		return warnStyle
	default:
		return failStyle
	}
}
