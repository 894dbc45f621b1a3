package formulas

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intellistudy/internal/formulas"
	"github.com/abhisek/intellistudy/internal/router"
	"github.com/abhisek/intellistudy/internal/screen"
	"github.com/abhisek/intellistudy/internal/ui/layout"
	"github.com/abhisek/intellistudy/internal/ui/theme"
)

// EmptyText is shown when the plan has neither formulas nor concepts.
const EmptyText = "No formulas or key concepts in this plan"

type tab int

const (
	tabFormulas tab = iota
	tabConcepts
)

// FormulasScreen lists a plan's key formulas and core concepts.
type FormulasScreen struct {
	formulas     []formulas.Item
	concepts     []formulas.Item
	selected     tab
	scrollOffset int
}

var _ screen.Screen = (*FormulasScreen)(nil)
var _ screen.KeyHintProvider = (*FormulasScreen)(nil)

// New creates a FormulasScreen over items. It opens on the concepts tab
// when there are concepts but no formulas.
func New(items []formulas.Item) *FormulasScreen {
	f, c := formulas.Split(items)
	s := &FormulasScreen{formulas: f, concepts: c}
	if len(f) == 0 && len(c) > 0 {
		s.selected = tabConcepts
	}
	return s
}

func (s *FormulasScreen) Init() tea.Cmd {
	return nil
}

func (s *FormulasScreen) Title() string {
	return "Formulas & Concepts"
}

func (s *FormulasScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch list"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *FormulasScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "esc", "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "tab", "shift+tab", "left", "right":
		s.selected = 1 - s.selected
		s.scrollOffset = 0
	case "up", "k":
		if s.scrollOffset > 0 {
			s.scrollOffset--
		}
	case "down", "j":
		if s.scrollOffset < len(s.current())-1 {
			s.scrollOffset++
		}
	}
	return s, nil
}

func (s *FormulasScreen) current() []formulas.Item {
	if s.selected == tabConcepts {
		return s.concepts
	}
	return s.formulas
}

func (s *FormulasScreen) View(width, height int) string {
	if len(s.formulas) == 0 && len(s.concepts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n" + EmptyText)
	}

	var b strings.Builder
	b.WriteString("\n")

	tabs := []string{
		s.tabLabel(tabFormulas, fmt.Sprintf("Formulas (%d)", len(s.formulas))),
		s.tabLabel(tabConcepts, fmt.Sprintf("Concepts (%d)", len(s.concepts))),
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(tabs, "     ")))
	b.WriteString("\n\n")

	cardW := min(width-8, 80)
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(cardW, 1)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	items := s.current()
	if len(items) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("Nothing in this list"))
		return b.String()
	}

	// Cards are variable height; render until the budget runs out.
	budget := max(height-8, 3)
	used := 0
	shown := s.scrollOffset
	for i := s.scrollOffset; i < len(items); i++ {
		card := renderItem(items[i], cardW)
		h := lipgloss.Height(card) + 1
		if used > 0 && used+h > budget {
			break
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
		b.WriteString("\n\n")
		used += h
		shown = i + 1
	}

	if rest := len(items) - shown; rest > 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render(fmt.Sprintf("... %d more", rest)))
	}
	return b.String()
}

func (s *FormulasScreen) tabLabel(t tab, label string) string {
	if t == s.selected {
		return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(label)
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
}

func renderItem(it formulas.Item, width int) string {
	text := lipgloss.NewStyle().Width(width)
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(it.Name))
	if it.Equation != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Secondary).Render("  "+it.Equation))
	}
	if it.Description != "" {
		lines = append(lines, text.Foreground(theme.Text).Render(it.Description))
	}
	if len(it.Variables) > 0 {
		for _, k := range slices.Sorted(maps.Keys(it.Variables)) {
			lines = append(lines, text.Foreground(theme.TextDim).Render(fmt.Sprintf("  %s: %s", k, it.Variables[k])))
		}
	}
	for _, ex := range it.Examples {
		lines = append(lines, text.Foreground(theme.TextDim).Italic(true).Render("  e.g. "+ex))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
