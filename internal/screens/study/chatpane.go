package study

import (
	"strings"

	"github.com/abhisek/intellistudy/internal/chat"
	"github.com/abhisek/intellistudy/internal/ui/theme"
)

// renderChat draws the transcript above the input line.
func (s *StudyScreen) renderChat(width, height int) string {
	c := s.sess.Chat()
	if c == nil {
		return theme.Hint.Render("Chat is not configured. Set a backend URL to ask questions.")
	}

	s.input.SetWidth(width)
	s.input.Disabled = c.Busy()
	inputLine := s.input.View()
	if c.Busy() {
		inputLine = s.spinner.View() + " " + theme.Streaming.Render("Assistant is replying...")
	}

	s.vp.SetWidth(width)
	s.vp.SetHeight(max(height-2, 1))
	s.vp.SetContent(renderTranscript(c.Transcript(), width))
	if s.follow {
		s.vp.GotoBottom()
	}

	return s.vp.View() + "\n\n" + inputLine
}

func renderTranscript(msgs []chat.Message, width int) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, renderMessage(m, width))
	}
	return strings.Join(parts, "\n\n")
}

func renderMessage(m chat.Message, width int) string {
	stamp := m.Timestamp.Format("15:04")
	if m.Sender == chat.SenderUser {
		return theme.UserMessage.Render("You · "+stamp) + "\n" + wrap(m.Text, width)
	}

	head := theme.Heading.Render("Tutor · " + stamp)
	body := wrap(m.Text, width)
	switch {
	case m.IsError:
		body = theme.ErrorMessage.Render(body)
	case m.IsStreaming:
		body = theme.Streaming.Render(body)
	}
	return head + "\n" + body
}
