package app

import (
	"context"
	"errors"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intellistudy/internal/router"
	"github.com/abhisek/intellistudy/internal/screen"
	"github.com/abhisek/intellistudy/internal/screens/formulas"
	"github.com/abhisek/intellistudy/internal/screens/study"
	"github.com/abhisek/intellistudy/internal/screens/summary"
	"github.com/abhisek/intellistudy/internal/screens/welcome"
	"github.com/abhisek/intellistudy/internal/session"
	"github.com/abhisek/intellistudy/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	sess   *session.Session
	width  int
	height int
}

// newAppModel starts on the welcome screen, which continues to the study
// screen once a plan is available.
func newAppModel(sess *session.Session) AppModel {
	screens := study.Screens{
		Formulas: func() screen.Screen { return formulas.New(sess.Formulas()) },
		Progress: func() screen.Screen { return summary.New(sess.Summary(), sess.Plan()) },
	}
	studyFactory := func() screen.Screen { return study.New(sess, screens) }
	return AppModel{
		router: router.New(welcome.New(sess, studyFactory)),
		sess:   sess,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	done, total := m.sess.Progress()
	header := layout.RenderHeader(title, done, total, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = append(hints, p.KeyHints()...)
	}
	if m.router.Depth() > 1 {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program over sess and blocks until it exits.
// A cancelled ctx stops the program without an error.
func Run(ctx context.Context, sess *session.Session, logger *slog.Logger) error {
	p := tea.NewProgram(newAppModel(sess), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		logger.Error("tui exited", "error", err)
		return err
	}
	return nil
}
