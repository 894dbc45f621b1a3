package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/intellistudy/internal/plan"
	"github.com/abhisek/intellistudy/internal/ui/theme"
)

// renderDetail draws the active day and topic.
func (s *StudyScreen) renderDetail(width, height int) string {
	nav := s.sess.Navigator()
	day, ok := nav.CurrentDay()
	if !ok {
		return theme.Hint.Render("This plan has no scheduled days")
	}

	var b strings.Builder
	label := s.sess.Plan().Label(nav.DayIndex())
	header := fmt.Sprintf("Day %d of %d", label, len(s.sess.Plan().DailyBreakdown))
	if day.FocusArea != "" {
		header += " · " + day.FocusArea
	}
	if mins := day.TotalMinutes(); mins > 0 {
		header += fmt.Sprintf(" · %s", formatMinutes(mins))
	}
	b.WriteString(theme.Heading.Render(truncate(header, width)))
	b.WriteString("\n")

	topic, ok := nav.CurrentTopic()
	if !ok {
		if day.DaySummary != "" {
			b.WriteString(wrap(day.DaySummary, width))
			b.WriteString("\n")
		}
		b.WriteString(theme.Hint.Render("No topics scheduled for this day"))
		return clip(b.String(), height)
	}

	title := topic.Topic
	if n := len(day.Items); !topic.IsSummary && n > 0 {
		title = fmt.Sprintf("%s (%d/%d)", topic.Topic, nav.TopicIndex()+1, n)
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(truncate(title, width)))
	if topic.Priority != "" {
		b.WriteString("  " + theme.PriorityColor(string(topic.Priority)).Render(string(topic.Priority)))
	}
	b.WriteString("\n")

	if topic.Details != "" {
		b.WriteString(wrap(topic.Details, width))
		b.WriteString("\n")
	}
	if len(topic.LearningObjectives) > 0 {
		b.WriteString(theme.Heading.Render("Objectives"))
		b.WriteString("\n")
		for _, o := range topic.LearningObjectives {
			b.WriteString(wrap("• "+o, width))
			b.WriteString("\n")
		}
	}
	if len(topic.Resources) > 0 {
		b.WriteString(theme.Heading.Render("Resources"))
		b.WriteString("\n")
		for _, r := range topic.Resources {
			b.WriteString(wrap("• "+resourceLine(r), width))
			b.WriteString("\n")
		}
	}
	return clip(b.String(), height)
}

func resourceLine(r plan.Resource) string {
	line := r.Title
	if r.Type != "" {
		line += " [" + r.Type + "]"
	}
	if r.URL != "" && r.URL != r.Title {
		line += " " + r.URL
	}
	return line
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(max(width, 1)).Render(s)
}

// clip keeps at most height lines of s.
func clip(s string, height int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
