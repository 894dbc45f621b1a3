package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intellistudy/internal/assistant"
	"github.com/abhisek/intellistudy/internal/chat"
	"github.com/abhisek/intellistudy/internal/llm"
	"github.com/abhisek/intellistudy/internal/store"
)

const uploadedPlan = `{"frontend_plan":{
	"overallGoal":"Calculus basics","totalStudyDays":2,"hoursPerDay":2,
	"keyConcepts":[{"concept":"Limit","explanation":"Value a function approaches"}],
	"keyFormulas":[{"formula_name":"Power rule","formula":"d/dx x^n = n x^(n-1)"}],
	"dailyBreakdown":[
		{"day":1,"focusArea":"Derivatives","daySummary":"Rules of differentiation",
		 "items":[{"topic":"Power rule","details":"Differentiate polynomials","priority":"high"},
		          {"topic":"Chain rule","details":"Composite functions"}]},
		{"day":2,"focusArea":"Integrals","items":[{"topic":"Antiderivatives","details":"Reverse of differentiation"}]}
	]}}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newBackend serves the plan service upload route and the assistant chat
// routes, with replies recorded as LLM events in st.
func newBackend(t *testing.T, st *store.Store, replies ...string) *httptest.Server {
	t.Helper()

	mock := llm.NewMockProvider()
	for _, r := range replies {
		content, _ := json.Marshal(map[string]string{"answer": r})
		mock.AddResponse(llm.MockResponse{Content: content, Usage: llm.Usage{InputTokens: 40, OutputTokens: 8}})
	}
	provider := llm.WithLogging(mock, "mock", st.EventRepo(), quietLogger())
	chatRouter := assistant.NewRouter(assistant.NewHandler(assistant.NewService(provider), quietLogger()))

	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, `{"detail":"bad form"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, uploadedPlan)
	})
	mux.Handle("/chat/", chatRouter)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, dbPath, backend string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--db", dbPath, "--backend-url", backend))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsEndToEnd(t *testing.T) {
	t.Setenv("INTELLISTUDY_LOG_LEVEL", "error")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "study.db")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := newBackend(t, st, "Apply the chain rule to the outer function first.")
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("derivatives and integrals"), 0o644))

	out, err := execute(t, dbPath, srv.URL, "show", "--json=false", "--formulas=false")
	require.NoError(t, err)
	assert.Contains(t, out, "No study plan yet.")

	out, err = execute(t, dbPath, srv.URL, "generate", "--days", "2", "--hours", "2", "--notes", notes, "--direct")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved plan: Calculus basics")
	assert.Contains(t, out, "2 day(s), 1 formula(s), 1 key concept(s)")

	out, err = execute(t, dbPath, srv.URL, "show", "--json=false", "--formulas=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress: 0/4 tasks (0%)")
	assert.Contains(t, out, "Day 1: Derivatives  (0/3)")
	assert.Contains(t, out, "[ ] day-1-topic-1")
	assert.Contains(t, out, "[high]")
	assert.Contains(t, out, "day-1-summary")

	out, err = execute(t, dbPath, srv.URL, "show", "--json=false", "--formulas=true")
	require.NoError(t, err)
	assert.Contains(t, out, "d/dx x^n = n x^(n-1)")
	assert.Contains(t, out, "Limit")

	out, err = execute(t, dbPath, srv.URL, "show", "--json=true", "--formulas=false")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Calculus basics", decoded["overallGoal"])

	out, err = execute(t, dbPath, srv.URL, "goto", "day-1-topic-2")
	require.NoError(t, err)
	assert.Contains(t, out, "Day 1: Derivatives")
	assert.Contains(t, out, "Topic: Chain rule (day-1-topic-2)")

	_, err = execute(t, dbPath, srv.URL, "goto", "week-1")
	assert.Error(t, err)

	out, err = execute(t, dbPath, srv.URL, "ask", "--task", "day-1-topic-2", "How", "do", "I", "start?")
	require.NoError(t, err)
	assert.Equal(t, "Apply the chain rule to the outer function first.\n", out)

	out, err = execute(t, dbPath, srv.URL, "llm", "list", "--limit", "5", "--purpose", llm.PurposeChat)
	require.NoError(t, err)
	assert.Contains(t, out, "chat")
	assert.Contains(t, out, "session_")

	events, err := st.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].RequestBody, "Chain rule: Composite functions")

	out, err = execute(t, dbPath, srv.URL, "reset", "--all=true")
	require.NoError(t, err)
	assert.Contains(t, out, "Study plan removed.")
	assert.Contains(t, out, "Task completion and LLM events removed.")

	out, err = execute(t, dbPath, srv.URL, "show", "--json=false", "--formulas=false")
	require.NoError(t, err)
	assert.Contains(t, out, "No study plan yet.")
}

func TestStructureWithoutPendingPlan(t *testing.T) {
	t.Setenv("INTELLISTUDY_LOG_LEVEL", "error")
	dbPath := filepath.Join(t.TempDir(), "study.db")

	_, err := execute(t, dbPath, "http://127.0.0.1:1", "structure")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pending plan text")
}

func TestInvalidBackendURL(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "study.db")
	_, err := execute(t, dbPath, "ftp://example.com", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an http(s) URL")
}

func TestReplyPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := &replyPrinter{out: &buf}
	p.start(1)

	base := []chat.Message{
		{Sender: chat.SenderAI, Text: chat.WelcomeText},
		{Sender: chat.SenderUser, Text: "why?"},
	}
	reply := func(text string, streaming, isErr bool) []chat.Message {
		return append(base[:2:2], chat.Message{Sender: chat.SenderAI, Text: text, IsStreaming: streaming, IsError: isErr})
	}

	p.update(base)
	p.update(reply(chat.ThinkingText, true, false))
	assert.Empty(t, buf.String())

	p.update(reply("Because ", true, false))
	p.update(reply("Because energy ", true, false))
	p.update(reply("Because energy ", true, false))
	assert.Equal(t, "Because energy ", buf.String())

	p.update(reply(chat.IncompleteText, false, true))
	p.finish()
	assert.Equal(t, "Because energy \n"+chat.IncompleteText+"\n", buf.String())
}

func TestNewLoggerUsesJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelInfo).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	newLogger(&buf, slog.LevelWarn).Info("dropped")
	assert.Empty(t, buf.String())
}
