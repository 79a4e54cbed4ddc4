package collect

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#22C55E")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#374151")

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(14)

	styleOK = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true)

	styleFailed = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleBarFilled = lipgloss.NewStyle().Foreground(colorSuccess)
	styleBarEmpty  = lipgloss.NewStyle().Foreground(colorMuted)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

const barWidth = 20

// Summary renders the report for a terminal.
func (r *Report) Summary() string {
	var lines []string
	lines = append(lines, styleTitle.Render(fmt.Sprintf("%d links, %d subscriptions in %s",
		len(r.Links), len(r.Subscriptions), r.Duration.Round(time.Millisecond))))

	counts := sortedCounts(r.ByProtocol())
	if len(counts) > 0 {
		lines = append(lines, "")
	}
	for _, pc := range counts {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Left,
			styleLabel.Render(pc.name),
			shareBar(pc.count, len(r.Links)),
			fmt.Sprintf(" %d", pc.count),
		))
	}

	if len(r.Sources) > 0 {
		lines = append(lines, "")
	}
	for _, s := range r.Sources {
		status := styleOK.Render("●")
		detail := fmt.Sprintf("%d links", s.Links)
		if !s.OK() {
			status = styleFailed.Render("○")
			detail = s.Error
		}
		lines = append(lines, strings.Join([]string{status, s.Ref, styleBarEmpty.Render(detail)}, " "))
	}
	return styleBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// shareBar renders count/total as a fixed-width bar.
func shareBar(count, total int) string {
	filled := 0
	if total > 0 {
		filled = barWidth * count / total
	}
	return styleBarFilled.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", barWidth-filled))
}
