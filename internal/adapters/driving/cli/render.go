package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driving"
)

// Styles for command output. The palette matches the terminal theme used
// across the project.
var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9E2AF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8"))

	answerBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1).
			Width(76)
)

// renderAnswerPanel renders the generated answer inside a bordered panel
// with the question as its heading.
func renderAnswerPanel(question, answer string) string {
	heading := headingStyle.Render(question)
	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		answerBoxStyle.Render(answer),
	)
}

// statusGlyph maps a per-file outcome to a coloured marker.
func statusGlyph(status domain.FileStatus) string {
	switch status {
	case domain.FileSucceeded:
		return successStyle.Render("✓")
	case domain.FileSkipped:
		return warningStyle.Render("-")
	default:
		return errorStyle.Render("✗")
	}
}

// healthGlyph maps a dependency status to a coloured marker.
func healthGlyph(status driving.DependencyStatus) string {
	switch {
	case !status.Configured:
		return mutedStyle.Render("·")
	case status.Err != nil:
		return errorStyle.Render("✗")
	default:
		return successStyle.Render("✓")
	}
}

// formatSeconds renders a duration as seconds with two decimals.
func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// formatMetric renders a metric pointer, "n/a" when the metric could
// not be computed.
func formatMetric(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *v)
}

// truncateRunes shortens s to at most n runes, appending an ellipsis
// when something was cut.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
