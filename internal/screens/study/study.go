package study

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intellistudy/internal/chat"
	"github.com/abhisek/intellistudy/internal/router"
	"github.com/abhisek/intellistudy/internal/screen"
	"github.com/abhisek/intellistudy/internal/session"
	"github.com/abhisek/intellistudy/internal/tasktree"
	"github.com/abhisek/intellistudy/internal/ui/components"
	"github.com/abhisek/intellistudy/internal/ui/layout"
	"github.com/abhisek/intellistudy/internal/ui/theme"
)

type pane int

const (
	paneTree pane = iota
	paneChat
)

// Screens builds the screens reachable from the study screen. A nil
// factory disables its key.
type Screens struct {
	Formulas func() screen.Screen
	Progress func() screen.Screen
}

// StudyScreen shows the plan's task tree, the active topic and the chat.
type StudyScreen struct {
	sess    *session.Session
	screens Screens

	cursor  int
	focus   pane
	input   components.TextInput
	spinner spinner.Model
	vp      viewport.Model
	follow  bool
	sending bool

	status    string
	statusErr bool
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)

// New creates a StudyScreen over sess.
func New(sess *session.Session, screens Screens) *StudyScreen {
	s := &StudyScreen{
		sess:    sess,
		screens: screens,
		input:   components.NewTextInput("Ask about this topic...", 2000),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent))),
		vp:      viewport.New(),
		follow:  true,
	}
	s.syncCursor()
	return s
}

func (s *StudyScreen) Init() tea.Cmd {
	return nil
}

func (s *StudyScreen) Title() string {
	if p := s.sess.Plan(); p != nil && p.OverallGoal != "" {
		return truncate(p.OverallGoal, 40)
	}
	return "Study Plan"
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	if s.focus == paneChat {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Send"},
			{Key: "PgUp/PgDn", Description: "Scroll"},
			{Key: "Tab", Description: "Tasks"},
			{Key: "Ctrl+N", Description: "New chat"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Open"},
		{Key: "Space", Description: "Done"},
		{Key: "[ ]", Description: "Day"},
		{Key: ", .", Description: "Topic"},
		{Key: "F", Description: "Formulas"},
		{Key: "P", Description: "Progress"},
		{Key: "Tab", Description: "Chat"},
	}
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sendDoneMsg:
		s.sending = false
		if msg.Err != nil {
			s.setStatus(sendErrorText(msg.Err), true)
		}
		s.follow = true
		return s, nil

	case spinner.TickMsg:
		// Keep ticking until the send returns; Busy may not be set yet.
		if c := s.sess.Chat(); !s.sending && (c == nil || !c.Busy()) {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.focus == paneChat {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *StudyScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return s, s.toggleFocus()
	case "ctrl+n":
		s.newChat()
		return s, nil
	}

	if s.focus == paneChat {
		switch msg.String() {
		case "enter":
			return s, s.send()
		case "esc":
			return s, s.toggleFocus()
		case "pgup":
			s.vp.PageUp()
			s.follow = false
			return s, nil
		case "pgdown":
			s.vp.PageDown()
			s.follow = s.vp.AtBottom()
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	nav := s.sess.Navigator()
	switch msg.String() {
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
	case "down", "j":
		s.cursor = min(s.cursor+1, max(len(s.nodes())-1, 0))
	case "enter":
		if n, ok := s.cursorNode(); ok {
			s.sess.Select(n.ID)
		}
	case "space":
		s.toggle()
	case "[":
		nav.PrevDay()
		s.syncCursor()
	case "]":
		nav.NextDay()
		s.syncCursor()
	case ",":
		nav.PrevTopic()
		s.syncCursor()
	case ".":
		nav.NextTopic()
		s.syncCursor()
	case "f":
		return s, push(s.screens.Formulas)
	case "p":
		return s, push(s.screens.Progress)
	}
	return s, nil
}

func push(factory func() screen.Screen) tea.Cmd {
	if factory == nil {
		return nil
	}
	next := factory()
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *StudyScreen) toggleFocus() tea.Cmd {
	if s.focus == paneChat {
		s.focus = paneTree
		s.input.Blur()
		return nil
	}
	s.focus = paneChat
	return s.input.Focus()
}

func (s *StudyScreen) toggle() {
	n, ok := s.cursorNode()
	if !ok || !n.IsLeaf() {
		return
	}
	done, err := s.sess.Toggle(context.Background(), n.ID)
	if err != nil {
		s.setStatus("Could not save progress: "+err.Error(), true)
		return
	}
	if done {
		s.setStatus("Marked "+n.Label+" done", false)
	} else {
		s.setStatus("Marked "+n.Label+" not done", false)
	}
}

func (s *StudyScreen) send() tea.Cmd {
	c := s.sess.Chat()
	if c == nil {
		s.setStatus("Chat is not available", true)
		return nil
	}
	text := s.input.Value()
	if text == "" {
		return nil
	}
	if c.Busy() {
		s.setStatus("Wait for the current reply to finish", true)
		return nil
	}

	cc := s.sess.ChatContext()
	s.input.Reset()
	s.follow = true
	s.status = ""
	s.sending = true
	send := func() tea.Msg {
		return sendDoneMsg{Err: c.Send(context.Background(), text, cc)}
	}
	return tea.Batch(send, s.spinner.Tick)
}

func (s *StudyScreen) newChat() {
	c := s.sess.Chat()
	if c == nil {
		return
	}
	if err := c.ClearTranscript(); err != nil {
		s.setStatus(sendErrorText(err), true)
		return
	}
	s.follow = true
	s.setStatus("Started a new chat", false)
}

func (s *StudyScreen) setStatus(text string, isErr bool) {
	s.status, s.statusErr = text, isErr
}

func (s *StudyScreen) nodes() []tasktree.Node {
	return tasktree.Flatten(s.sess.Tree())
}

func (s *StudyScreen) cursorNode() (tasktree.Node, bool) {
	nodes := s.nodes()
	if s.cursor < 0 || s.cursor >= len(nodes) {
		return tasktree.Node{}, false
	}
	return nodes[s.cursor], true
}

// syncCursor moves the tree cursor onto the navigator's position.
func (s *StudyScreen) syncCursor() {
	id := s.sess.ActiveID()
	for i, n := range s.nodes() {
		if n.ID == id {
			s.cursor = i
			return
		}
	}
}

func sendErrorText(err error) string {
	switch {
	case errors.Is(err, chat.ErrSendInFlight):
		return "Wait for the current reply to finish"
	case errors.Is(err, chat.ErrEmptyMessage):
		return "Type a question first"
	default:
		return err.Error()
	}
}

func (s *StudyScreen) View(width, height int) string {
	treeW, restW := layout.SplitWidth(width)
	statusH := 1
	bodyH := max(height-statusH, 6)
	detailH := bodyH * 2 / 5
	chatH := bodyH - detailH

	treePane := s.paneStyle(s.focus == paneTree).
		Width(treeW).Height(bodyH).
		Render(s.renderTree(treeW-4, bodyH-2))
	detailPane := theme.Pane.
		Width(restW).Height(detailH).
		Render(s.renderDetail(restW-4, detailH-2))
	chatPane := s.paneStyle(s.focus == paneChat).
		Width(restW).Height(chatH).
		Render(s.renderChat(restW-4, chatH-2))

	body := lipgloss.JoinHorizontal(lipgloss.Top, treePane, lipgloss.JoinVertical(lipgloss.Left, detailPane, chatPane))
	return body + "\n" + s.renderStatus(width)
}

func (s *StudyScreen) paneStyle(focused bool) lipgloss.Style {
	if focused {
		return theme.PaneFocused
	}
	return theme.Pane
}

func (s *StudyScreen) renderStatus(width int) string {
	if s.status == "" {
		done, total := s.sess.Progress()
		bar := components.NewTaskBar("Progress", done, total, min(width-2, 50))
		return " " + bar.View()
	}
	style := theme.Hint
	if s.statusErr {
		style = theme.ErrorMessage
	}
	return style.Render(" " + truncate(s.status, width-2))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
