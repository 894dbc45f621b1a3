package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intellistudy/internal/plan"
	"github.com/abhisek/intellistudy/internal/router"
	"github.com/abhisek/intellistudy/internal/screen"
	"github.com/abhisek/intellistudy/internal/session"
	"github.com/abhisek/intellistudy/internal/ui/components"
	"github.com/abhisek/intellistudy/internal/ui/layout"
	"github.com/abhisek/intellistudy/internal/ui/theme"
)

// SummaryScreen shows overall and per-day progress along with the plan's
// general advice.
type SummaryScreen struct {
	summary *session.Summary
	plan    *plan.StudyPlan
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. p may be nil.
func New(summary *session.Summary, p *plan.StudyPlan) *SummaryScreen {
	return &SummaryScreen{summary: summary, plan: p}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Progress"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back to plan"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder
	title := sum.Goal
	if title == "" {
		title = "Study plan"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), title))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Days: %d        Tasks done: %d/%d        Complete: %.0f%%",
		sum.Days, sum.Done, sum.Total, sum.Fraction*100)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), stats))
	b.WriteString("\n")
	if p := s.plan; p != nil && (p.DifficultyLevel != "" || p.HoursPerDay > 0) {
		var meta []string
		if p.DifficultyLevel != "" {
			meta = append(meta, "Difficulty: "+p.DifficultyLevel)
		}
		if p.HoursPerDay > 0 {
			meta = append(meta, fmt.Sprintf("%g h/day", p.HoursPerDay))
		}
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), strings.Join(meta, "    ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	barW := min(width-8, 60)
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(barW, 1)))
	section := func(name string) {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(name)))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")
	}

	section("Days")
	for _, d := range sum.PerDay {
		bar := components.NewTaskBar(d.Label, d.Done, d.Total, barW)
		bar.Fill = dayColor(d)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}

	if s.plan != nil && len(s.plan.GeneralTips) > 0 {
		b.WriteString("\n")
		section("Tips")
		for _, tip := range s.plan.GeneralTips {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.Text).Width(barW).Render("• "+tip)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func dayColor(d session.DayProgress) color.Color {
	switch {
	case d.Completed:
		return theme.Success
	case d.Done > 0:
		return theme.Accent
	default:
		return theme.Text
	}
}
