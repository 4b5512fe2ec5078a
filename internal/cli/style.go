// Terminal styles for command output.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/maruel/notiondoc/internal/export"
	"github.com/maruel/notiondoc/internal/notion"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// writeResults prints one line per generated format.
func writeResults(w io.Writer, workspaceName string, results []export.Result) {
	lines := []string{titleStyle.Render(workspaceName + " documentation")}
	for i := range results {
		r := &results[i]
		name := fmt.Sprintf("%-8s", r.Format)
		if r.OK() {
			lines = append(lines, fmt.Sprintf("%s %s %s %s",
				successStyle.Render("✓"), name, r.Path, dimStyle.Render(humanSize(r.Size))))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", errorStyle.Render("✗"), name, errorStyle.Render(r.Err.Error())))
	}
	_, _ = fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

// writeStats prints the fetch counters.
func writeStats(w io.Writer, s notion.FetchStats) {
	parts := []string{
		fmt.Sprintf("%s %d", dimStyle.Render("Pages:"), s.Pages),
		fmt.Sprintf("%s %d", dimStyle.Render("Databases:"), s.Databases),
	}
	if s.DataSources > 0 {
		parts = append(parts, fmt.Sprintf("%s %d", dimStyle.Render("Data sources:"), s.DataSources))
	}
	if s.Items > 0 {
		parts = append(parts, fmt.Sprintf("%s %d", dimStyle.Render("Items:"), s.Items))
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%s %s", dimStyle.Render("Skipped:"), errorStyle.Render(fmt.Sprint(s.Skipped))))
	}
	_, _ = fmt.Fprintln(w, strings.Join(parts, "  "))
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
