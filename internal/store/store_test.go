package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestKVPutGetDelete(t *testing.T) {
	s := openTestStore(t)
	kv := s.KVRepo()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
	}

	if err := kv.Put(ctx, "k", "v1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := kv.Put(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = ok %v, err %v", ok, err)
	}
	if got != "v2" {
		t.Errorf("Get(k) = %q, want %q", got, "v2")
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Error("key still present after delete")
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestKVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.KVRepo().Put(ctx, "plan", `{"overallGoal":"G"}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, ok, err := s.KVRepo().Get(ctx, "plan")
	if err != nil || !ok || got != `{"overallGoal":"G"}` {
		t.Errorf("after reopen Get = (%q, %v, %v)", got, ok, err)
	}
}

func TestCompletionRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.CompletionRepo()
	ctx := context.Background()

	if err := repo.Set(ctx, "plan-a", "day-1-topic-1", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, "plan-a", "day-1-summary", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, "plan-a", "day-1-summary", false); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.Set(ctx, "plan-b", "day-1-topic-1", true); err != nil {
		t.Fatalf("set other plan: %v", err)
	}

	got, err := repo.Load(ctx, "plan-a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got["day-1-topic-1"] {
		t.Error("day-1-topic-1 should be completed")
	}
	if got["day-1-summary"] {
		t.Error("day-1-summary should be cleared")
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = repo.Load(ctx, "plan-b")
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len after clear = %d, want 0", len(got))
	}
}

func TestEventRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"chat", "chat", "other"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock",
			Purpose:      purpose,
			InputTokens:  10,
			OutputTokens: 5,
			LatencyMs:    42,
			Success:      true,
			RequestBody:  "[user]\nhi",
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID < all[1].ID {
		t.Error("events should be newest first")
	}

	chats, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "chat", Limit: 1})
	if err != nil {
		t.Fatalf("query chat: %v", err)
	}
	if len(chats) != 1 || chats[0].Purpose != "chat" {
		t.Errorf("chat query = %+v", chats)
	}

	e, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.LatencyMs != 42 || e.RequestBody != "[user]\nhi" || e.Timestamp.IsZero() {
		t.Errorf("get = %+v", e)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("get missing = (%v, %v), want (nil, nil)", missing, err)
	}

	if err := repo.ClearLLMEvents(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	all, _ = repo.QueryLLMEvents(ctx, QueryOpts{})
	if len(all) != 0 {
		t.Errorf("len after clear = %d, want 0", len(all))
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("INTELLISTUDY_DB", filepath.Join(dir, "custom", "x.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "custom", "x.db") {
		t.Errorf("path = %q", p)
	}

	t.Setenv("INTELLISTUDY_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "intellistudy", "intellistudy.db"); p != want {
		t.Errorf("path = %q, want %q", p, want)
	}
}
