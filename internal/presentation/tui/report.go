package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/quizgraph/pkg/diagnostics"
	"github.com/muesli/termenv"
)

var severityIcon = map[diagnostics.Severity]string{
	diagnostics.SeveritySuccess: "✅",
	diagnostics.SeverityWarning: "⚠️",
	diagnostics.SeverityError:   "❌",
	diagnostics.SeverityInfo:    "ℹ️",
}

// ReportMarkdown formats validator findings as a markdown document.
func ReportMarkdown(title string, r diagnostics.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "**Health score:** %d/100\n\n", r.HealthScore)
	sb.WriteString("| | Check | Details |\n|---|---|---|\n")
	for _, f := range r.Findings {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", severityIcon[f.Severity], f.Title, strings.ReplaceAll(f.Description, "|", "\\|"))
	}
	return sb.String()
}

// HealthBadge renders the score coloured by band: red below 50, yellow
// below 80, green otherwise.
func HealthBadge(score int) string {
	p := termenv.ColorProfile()
	color := "#22c55e"
	switch {
	case score < 50:
		color = "#ef4444"
	case score < 80:
		color = "#eab308"
	}
	return termenv.String(fmt.Sprintf("health %d/100", score)).Foreground(p.Color(color)).Bold().String()
}
