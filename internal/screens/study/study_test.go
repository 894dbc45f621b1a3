package study

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intellistudy/internal/chat"
	"github.com/abhisek/intellistudy/internal/plan"
	"github.com/abhisek/intellistudy/internal/planstore"
	"github.com/abhisek/intellistudy/internal/router"
	"github.com/abhisek/intellistudy/internal/screen"
	"github.com/abhisek/intellistudy/internal/session"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "formulas" }
func (s *stubScreen) Title() string                           { return "Formulas" }

type jsonTransport struct {
	reply string
	got   []chat.Request
}

func (t *jsonTransport) Do(_ context.Context, req chat.Request) (*chat.Response, error) {
	t.got = append(t.got, req)
	return &chat.Response{
		ContentType: "application/json",
		Body:        io.NopCloser(strings.NewReader(`{"ai_response":"` + t.reply + `"}`)),
	}, nil
}

func testPlan() *plan.StudyPlan {
	return &plan.StudyPlan{
		OverallGoal:    "Learn thermodynamics",
		TotalStudyDays: 2,
		DailyBreakdown: []plan.DailySchedule{
			{
				Day:        1,
				FocusArea:  "Heat",
				DaySummary: "Heat transfer basics",
				Items: []plan.StudyItem{
					{Topic: "Conduction", Details: "Fourier's law", Priority: plan.PriorityHigh},
					{Topic: "Convection", Details: "Newton's law of cooling"},
				},
			},
			{
				Day:       2,
				FocusArea: "Laws",
				Items:     []plan.StudyItem{{Topic: "First law", Details: "Energy conservation"}},
			},
		},
	}
}

func newTestScreen(t *testing.T) (*StudyScreen, *jsonTransport) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	plans := planstore.New(ctx, nil, logger)
	plans.Set(ctx, testPlan())

	tr := &jsonTransport{reply: "Heat flows from hot to cold."}
	c := chat.New(tr, chat.WithLogger(logger))
	sess, err := session.New(ctx, session.Deps{Plans: plans, Chat: c, Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	return New(sess, Screens{Formulas: func() screen.Screen { return &stubScreen{} }}), tr
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func press(s *StudyScreen, msgs ...tea.KeyPressMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = s.Update(m)
	}
	return cmd
}

// run executes cmd, expanding batches, and feeds results back into s.
func run(s *StudyScreen, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			run(s, c)
		}
	case sendDoneMsg:
		s.Update(msg)
	}
}

func TestDayAndTopicKeys(t *testing.T) {
	s, _ := newTestScreen(t)
	nav := s.sess.Navigator()

	press(s, key(']'))
	if nav.DayIndex() != 1 {
		t.Fatalf("DayIndex = %d after ], want 1", nav.DayIndex())
	}
	if n, _ := s.cursorNode(); n.ID != "day-2-topic-1" {
		t.Errorf("cursor on %q, want day-2-topic-1", n.ID)
	}

	press(s, key('['), key('.'), key('.'))
	if nav.DayIndex() != 0 || nav.TopicIndex() != 1 {
		t.Fatalf("position = (%d,%d), want (0,1)", nav.DayIndex(), nav.TopicIndex())
	}
	if n, _ := s.cursorNode(); n.ID != "day-1-topic-2" {
		t.Errorf("cursor on %q, want day-1-topic-2", n.ID)
	}

	press(s, key(','))
	if nav.TopicIndex() != 0 {
		t.Errorf("TopicIndex = %d after ',', want 0", nav.TopicIndex())
	}
}

func TestSelectSummary(t *testing.T) {
	s, _ := newTestScreen(t)

	press(s, specialKey(tea.KeyDown), specialKey(tea.KeyDown), specialKey(tea.KeyEnter))
	if !s.sess.Navigator().OnSummary() {
		t.Fatal("enter on the summary row did not select it")
	}
	if !strings.Contains(s.View(120, 30), "Heat transfer basics") {
		t.Error("summary text not shown")
	}
}

func TestCursorAndSelect(t *testing.T) {
	s, _ := newTestScreen(t)

	// Cursor starts on the active topic; move to the second day's topic.
	press(s, specialKey(tea.KeyDown), specialKey(tea.KeyDown), specialKey(tea.KeyDown), specialKey(tea.KeyDown))
	n, _ := s.cursorNode()
	if n.ID != "day-2-topic-1" {
		t.Fatalf("cursor on %q", n.ID)
	}

	press(s, specialKey(tea.KeyEnter))
	if got := s.sess.ActiveID(); got != "day-2-topic-1" {
		t.Errorf("ActiveID = %q after enter", got)
	}

	press(s, specialKey(tea.KeyUp), specialKey(tea.KeyUp), specialKey(tea.KeyUp), specialKey(tea.KeyUp), specialKey(tea.KeyUp), specialKey(tea.KeyUp))
	if s.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", s.cursor)
	}
}

func TestSpaceTogglesLeaf(t *testing.T) {
	s, _ := newTestScreen(t)

	press(s, specialKey(tea.KeySpace))
	if done, total := s.sess.Progress(); done != 1 || total != 4 {
		t.Fatalf("Progress = %d/%d, want 1/4", done, total)
	}

	press(s, specialKey(tea.KeySpace))
	if done, _ := s.sess.Progress(); done != 0 {
		t.Errorf("second toggle left done = %d", done)
	}

	// Day rows are not toggleable.
	s.cursor = 0
	press(s, specialKey(tea.KeySpace))
	if done, _ := s.sess.Progress(); done != 0 {
		t.Errorf("toggling a day changed progress: %d", done)
	}
}

func TestFormulasKeyPushesScreen(t *testing.T) {
	s, _ := newTestScreen(t)

	cmd := press(s, key('f'))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Fatal("expected PushScreenMsg")
	}
}

func TestProgressKeyWithoutFactory(t *testing.T) {
	s, _ := newTestScreen(t)
	if cmd := press(s, key('p')); cmd != nil {
		t.Error("expected no command without a progress screen")
	}
}

func TestChatSend(t *testing.T) {
	s, tr := newTestScreen(t)

	press(s, specialKey(tea.KeyTab))
	if s.focus != paneChat {
		t.Fatal("tab did not focus chat")
	}
	for _, r := range "why?" {
		press(s, key(r))
	}
	// Letters go to the input, not the tree.
	if s.sess.Navigator().DayIndex() != 0 {
		t.Fatal("typed text moved the navigator")
	}

	run(s, press(s, specialKey(tea.KeyEnter)))

	if len(tr.got) != 1 || tr.got[0].UserQuery != "why?" {
		t.Fatalf("requests = %+v", tr.got)
	}
	if tr.got[0].StudyMaterialsContext != "Conduction: Fourier's law" {
		t.Errorf("materials = %q", tr.got[0].StudyMaterialsContext)
	}
	msgs := s.sess.Chat().Transcript()
	if last := msgs[len(msgs)-1]; last.Text != "Heat flows from hot to cold." {
		t.Errorf("reply = %q", last.Text)
	}
	if s.input.Value() != "" {
		t.Error("input not cleared after send")
	}
}

func TestSpinnerTicksUntilSendReturns(t *testing.T) {
	s, _ := newTestScreen(t)
	press(s, specialKey(tea.KeyTab), key('h'), key('i'))

	// The send command has not run, so the chat is not busy yet.
	if cmd := press(s, specialKey(tea.KeyEnter)); cmd == nil {
		t.Fatal("expected send command")
	}
	if s.sess.Chat().Busy() {
		t.Fatal("chat busy before the send ran")
	}
	if _, cmd := s.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("spinner stopped before the send returned")
	}

	s.Update(sendDoneMsg{})
	if _, cmd := s.Update(spinner.TickMsg{}); cmd != nil {
		t.Error("spinner kept ticking after the send returned")
	}
}

func TestEmptySendIsIgnored(t *testing.T) {
	s, tr := newTestScreen(t)
	press(s, specialKey(tea.KeyTab))

	if cmd := press(s, specialKey(tea.KeyEnter)); cmd != nil {
		t.Error("empty input produced a command")
	}
	if len(tr.got) != 0 {
		t.Error("empty input was sent")
	}
}

func TestNewChat(t *testing.T) {
	s, _ := newTestScreen(t)
	press(s, specialKey(tea.KeyTab))
	for _, r := range "hi" {
		press(s, key(r))
	}
	run(s, press(s, specialKey(tea.KeyEnter)))
	id := s.sess.Chat().ID()

	press(s, tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})

	c := s.sess.Chat()
	if len(c.Transcript()) != 1 || c.Transcript()[0].Text != chat.WelcomeText {
		t.Errorf("transcript after ctrl+n = %+v", c.Transcript())
	}
	if c.ID() == id {
		t.Error("session id not rotated")
	}
}

func TestViewShowsActiveTopic(t *testing.T) {
	s, _ := newTestScreen(t)

	view := s.View(120, 30)
	for _, want := range []string{"Day 1: Heat", "Conduction", "Fourier's law", "high", "Welcome to your study session"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if s.Title() != "Learn thermodynamics" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"longer text", 6, "longe…"},
		{"x", 0, ""},
		{"ab", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
