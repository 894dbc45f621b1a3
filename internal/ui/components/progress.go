package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/intellistudy/internal/ui/theme"
)

// TaskBar renders completed-of-total tasks as a labelled bar followed by
// the "done/total" count.
type TaskBar struct {
	Label string
	Done  int
	Total int
	Width int
	Fill  color.Color
}

// NewTaskBar creates a bar filled with theme.Secondary.
func NewTaskBar(label string, done, total, width int) TaskBar {
	return TaskBar{Label: label, Done: done, Total: total, Width: width, Fill: theme.Secondary}
}

// Fraction is Done/Total clamped to [0, 1]. An empty bar is 0.
func (b TaskBar) Fraction() float64 {
	if b.Total <= 0 {
		return 0
	}
	return min(max(float64(b.Done)/float64(b.Total), 0), 1)
}

func (b TaskBar) View() string {
	var out strings.Builder
	if b.Label != "" {
		out.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(b.Label))
		out.WriteString("  ")
	}

	count := fmt.Sprintf("  %d/%d", b.Done, b.Total)
	barWidth := max(b.Width-lipgloss.Width(out.String())-len(count), 4)
	filled := int(float64(barWidth) * b.Fraction())

	out.WriteString(lipgloss.NewStyle().Foreground(b.Fill).Render(strings.Repeat("█", filled)))
	out.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", barWidth-filled)))
	out.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(count))
	return out.String()
}
