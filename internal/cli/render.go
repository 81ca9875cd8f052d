package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"codemorph/internal/analysis"
	"codemorph/internal/gateway/repository/usage"
	"codemorph/internal/gateway/service/morph"
	"codemorph/internal/goal"
	"codemorph/internal/sandbox"
)

var (
	accent  = lipgloss.Color("#8B5CF6")
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
	statValueStyle = lipgloss.NewStyle().Bold(true).Foreground(success).Width(10)
	labelStyle     = lipgloss.NewStyle().Foreground(fg)
	dimStyle       = lipgloss.NewStyle().Foreground(dim)
	badgeStyle     = lipgloss.NewStyle().Foreground(warning).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(danger)
	separatorLine  = lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("─", 60))
)

func renderResult(res morph.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Transformed code"))
	b.WriteString("\n")
	b.WriteString(separatorLine)
	b.WriteString("\n")
	b.WriteString(res.Code)
	if !strings.HasSuffix(res.Code, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(separatorLine)
	b.WriteString("\n\n")
	b.WriteString(renderAnalysis(res.Analysis, res.AnalysisFallback))
	return b.String()
}

func renderAnalysis(a analysis.Analysis, fallback bool) string {
	var stats []string
	for _, s := range a.SummaryStats.Ordered() {
		stats = append(stats, statValueStyle.Render(s.Value)+labelStyle.Render(s.Description))
	}
	var b strings.Builder
	header := titleStyle.Render("Analysis")
	if fallback {
		header += " " + dimStyle.Render("(unavailable)")
	}
	b.WriteString(boxStyle.Render(header + "\n\n" + strings.Join(stats, "\n")))
	b.WriteString("\n\n")
	for _, c := range a.DetailedChanges {
		fmt.Fprintf(&b, "  %s  %s\n", c.Icon, labelStyle.Render(c.Description))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(a.Explanation))
	b.WriteString("\n")
	return b.String()
}

func renderOutcome(o sandbox.Outcome) string {
	style := labelStyle
	if o.IsError {
		style = errorStyle
	}
	var b strings.Builder
	for _, line := range o.Lines {
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func renderGoals(opts []goal.Option) string {
	var b strings.Builder
	for _, o := range opts {
		line := titleStyle.Render(o.Name) + "  " + dimStyle.Render(o.Subtitle)
		if o.Badge != "" {
			line += "  " + badgeStyle.Render(o.Badge)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderUsage(stats []usage.DayStat) string {
	if len(stats) == 0 {
		return dimStyle.Render("No model calls recorded.") + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%-12s %-28s %8s %7s %12s %12s", "DAY", "MODEL", "REQUESTS", "ERRORS", "PROMPT", "RESPONSE")))
	b.WriteString("\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "%-12s %-28s %8d %7d %12d %12d\n", s.Day, s.Model, s.Requests, s.Errors, s.PromptBytes, s.ResponseBytes)
	}
	return b.String()
}
