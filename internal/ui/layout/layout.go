package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/intellistudy/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// Below this width the task tree gets a fixed narrow pane.
	CompactWidthThreshold = 100

	// TreePaneRatio is the share of the width given to the task tree.
	TreePaneRatio = 0.3

	compactTreeWidth = 24
	minTreeWidth     = 20
)

// KeyHint is a key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool {
	return width < CompactWidthThreshold
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// SplitWidth divides width into the tree pane and the remaining panes.
func SplitWidth(width int) (tree, rest int) {
	tree = int(float64(width) * TreePaneRatio)
	if IsCompactWidth(width) {
		tree = compactTreeWidth
	}
	tree = min(max(tree, minTreeWidth), width)
	return tree, max(width-tree, 0)
}

func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader renders the top bar: app name, centered screen title and
// the plan's task counter. total 0 hides the counter.
func RenderHeader(title string, done, total int, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  IntelliStudy")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	right := ""
	if total > 0 {
		right = lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("✓ %d/%d", done, total)) +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %d%%  ", done*100/total))
	}

	inner := max(width-4, 0)
	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(left), 1)
	rightGap := max(inner-lipgloss.Width(left)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	return bar(width).Render(left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right)
}

// RenderFooter renders key hints on one line. Hints that do not fit are
// dropped from the front, so global hints at the end stay visible.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts,
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key)+" "+
				lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description))
	}

	const sep = "   "
	avail := width - 6
	for len(parts) > 1 && lipgloss.Width(strings.Join(parts, sep)) > avail {
		parts = parts[1:]
	}
	return bar(width).Render("  " + strings.Join(parts, sep))
}

// RenderFrame stacks header, content and footer, padding content to fill
// the height left between them.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(contentHeight).Render(content)
	return header + "\n" + body + "\n" + footer
}
