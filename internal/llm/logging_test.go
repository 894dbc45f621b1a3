package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/intellistudy/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWithLogging_RecordsEvent(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"answer":"ok"}`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: errors.New("boom")},
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := WithLogging(mock, ProviderMock, st.EventRepo(), logger)

	ctx := WithSession(WithPurpose(context.Background(), PurposeChat), "session_1_abcd")
	req := Request{
		System:   "You are a study tutor.",
		Messages: []Message{{Role: RoleUser, Content: "What is a derivative?"}},
	}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected second Generate to fail")
	}

	events, err := st.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	// Newest first.
	failed, ok := events[0], events[1]
	if failed.Success || failed.ErrorMessage != "boom" {
		t.Errorf("failed event = %+v", failed.LLMRequestEventData)
	}
	if !ok.Success || ok.InputTokens != 12 || ok.OutputTokens != 3 {
		t.Errorf("ok event = %+v", ok.LLMRequestEventData)
	}
	if ok.Purpose != PurposeChat || ok.SessionID != "session_1_abcd" || ok.Provider != ProviderMock {
		t.Errorf("ok event labels = %+v", ok.LLMRequestEventData)
	}
	if !strings.Contains(ok.RequestBody, "What is a derivative?") {
		t.Errorf("request body missing user message: %q", ok.RequestBody)
	}
	if ok.ResponseBody != `{"answer":"ok"}` {
		t.Errorf("response body = %q", ok.ResponseBody)
	}
}

func TestWithLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, ProviderMock, nil, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}
