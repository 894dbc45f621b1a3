package welcome

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intellistudy/internal/router"
	"github.com/abhisek/intellistudy/internal/screen"
	"github.com/abhisek/intellistudy/internal/session"
	"github.com/abhisek/intellistudy/internal/ui/components"
	"github.com/abhisek/intellistudy/internal/ui/layout"
	"github.com/abhisek/intellistudy/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	totalDur     = 1500 * time.Millisecond
)

// GenerateHint tells the user how to create a plan.
const GenerateHint = "intellistudy generate --days 7 --hours 2 --notes notes.pdf"

const bookArt = `   ______ ______
 _/      Y      \_
// ~~ ~~ | ~~ ~ \\
// ~ ~ ~~ | ~~~ ~ \\
//________.|.________\\
` + "`----------`-'----------'"

type tickMsg time.Time

// WelcomeScreen is the splash shown at startup. With a plan loaded any key
// continues to the study screen. Without one it explains how to generate
// a plan and offers to check again.
type WelcomeScreen struct {
	sess         *session.Session
	studyFactory func() screen.Screen
	menu         components.Menu
	notice       string
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that hands over to the screen built by
// studyFactory once sess has a plan.
func New(sess *session.Session, studyFactory func() screen.Screen) *WelcomeScreen {
	w := &WelcomeScreen{sess: sess, studyFactory: studyFactory}
	w.menu = components.NewMenu([]components.MenuItem{
		{Label: "Check for a plan again", Hint: "after running generate elsewhere", Action: w.recheck},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return w
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	if w.sess.HasPlan() {
		return []layout.KeyHint{{Key: "Any key", Description: "Start studying"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Select"},
	}
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		if w.sess.HasPlan() {
			return w, w.transition()
		}
		if w.elapsed < totalDur {
			w.elapsed = totalDur
			return w, nil
		}
		var cmd tea.Cmd
		w.menu, cmd = w.menu.Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w *WelcomeScreen) recheck() tea.Cmd {
	w.sess.Reload(context.Background())
	if !w.sess.HasPlan() {
		w.notice = "Still no study plan found"
		return nil
	}
	return w.transition()
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.studyFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{lipgloss.NewStyle().Foreground(theme.Secondary).Render(bookArt)}

	if w.elapsed >= phase1End {
		sections = append(sections, "", RenderBanner(width))
	}

	if w.elapsed >= totalDur {
		sections = append(sections, "")
		if p := w.sess.Plan(); p != nil {
			goal := p.OverallGoal
			if goal == "" {
				goal = "Your study plan is ready"
			}
			sections = append(sections,
				lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(goal),
				"",
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to start studying"),
			)
		} else {
			sections = append(sections,
				lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("No study plan yet"),
				lipgloss.NewStyle().Foreground(theme.TextDim).Render("Generate one from your notes:"),
				lipgloss.NewStyle().Foreground(theme.Accent).Render("  "+GenerateHint),
				"",
				w.menu.View(),
			)
			if w.notice != "" {
				sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render(w.notice))
			}
		}
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
