package study

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/intellistudy/internal/tasktree"
	"github.com/abhisek/intellistudy/internal/ui/theme"
)

// renderTree draws the task tree in a width x height box, keeping the
// cursor row visible.
func (s *StudyScreen) renderTree(width, height int) string {
	nodes := s.nodes()
	if len(nodes) == 0 {
		return theme.Hint.Render("No tasks in this plan")
	}

	activeID := s.sess.ActiveID()
	start := 0
	if s.cursor >= height {
		start = s.cursor - height + 1
	}
	end := min(start+height, len(nodes))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, s.treeLine(nodes[i], i == s.cursor, nodes[i].ID == activeID, width))
	}
	return strings.Join(lines, "\n")
}

func (s *StudyScreen) treeLine(n tasktree.Node, atCursor, active bool, width int) string {
	var prefix string
	switch {
	case !n.IsLeaf():
		prefix = ""
	case n.Completed:
		prefix = "  ✓ "
	default:
		prefix = "  ○ "
	}

	marker := " "
	if atCursor {
		marker = "▸"
	}
	text := marker + prefix + n.Label
	text = truncate(text, width)

	var style lipgloss.Style
	switch {
	case atCursor && s.focus == paneTree:
		style = theme.Selected
	case active:
		style = theme.Active
	case !n.IsLeaf():
		style = theme.Heading
	case n.Completed:
		style = theme.Done
	default:
		style = theme.Unselected
	}
	return style.Render(text)
}
