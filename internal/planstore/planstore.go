// Package planstore holds the single active study plan and keeps it in
// sync with durable key-value storage.
package planstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/abhisek/intellistudy/internal/plan"
)

// Persisted keys.
const (
	PlanKey    = "intelliStudy_studyPlan"
	RawPlanKey = "rawStudyPlanResponse"
)

// KV is the durable storage the store writes through to.
// store.KVRepo implements it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store owns the canonical plan. It is the only writer of the plan value
// and is safe for concurrent use.
type Store struct {
	kv     KV
	logger *slog.Logger

	mu      sync.RWMutex
	plan    *plan.StudyPlan
	stored  string // persisted form of plan, as last read or written
	raw     string
	hasRaw  bool
	version uint64
}

// New creates a Store and loads any previously persisted plan before
// returning. Load or parse failures are logged and leave the store empty.
func New(ctx context.Context, kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	if s.kv == nil {
		return
	}

	data, ok, err := s.kv.Get(ctx, PlanKey)
	switch {
	case err != nil:
		s.logger.Warn("load persisted plan", "error", err)
	case ok:
		p, err := plan.Decode([]byte(data))
		if err != nil {
			s.logger.Warn("parse persisted plan", "error", err)
			break
		}
		s.plan, s.stored = p, data
	}

	raw, ok, err := s.kv.Get(ctx, RawPlanKey)
	if err != nil {
		s.logger.Warn("load raw plan", "error", err)
		return
	}
	s.raw, s.hasRaw = raw, ok
}

// Get returns the current plan, or nil when none is loaded. The returned
// value must be treated as read-only.
func (s *Store) Get() *plan.StudyPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// Version increases every time Set is called or Reload finds a change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Set replaces the plan. A nil plan clears it and removes the persisted
// value. A non-nil plan is written immediately and consumes any pending raw
// plan. Storage failures are logged, never returned.
func (s *Store) Set(ctx context.Context, p *plan.StudyPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = p
	s.version++

	s.stored = ""
	if s.kv == nil {
		return
	}

	if p == nil {
		if err := s.kv.Delete(ctx, PlanKey); err != nil {
			s.logger.Warn("remove persisted plan", "error", err)
		}
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		s.logger.Warn("encode plan", "error", err)
		return
	}
	if err := s.kv.Put(ctx, PlanKey, string(data)); err != nil {
		s.logger.Warn("persist plan", "error", err)
	} else {
		s.stored = string(data)
	}

	if s.hasRaw {
		s.raw, s.hasRaw = "", false
		if err := s.kv.Delete(ctx, RawPlanKey); err != nil {
			s.logger.Warn("remove raw plan", "error", err)
		}
	}
}

// Reload re-reads the persisted values, picking up a plan written by
// another process. It reports whether the plan changed; Version increases
// only then. A persisted plan that fails to parse is logged and ignored.
func (s *Store) Reload(ctx context.Context) bool {
	if s.kv == nil {
		return false
	}

	data, ok, err := s.kv.Get(ctx, PlanKey)
	if err != nil {
		s.logger.Warn("reload persisted plan", "error", err)
		return false
	}
	raw, hasRaw, rawErr := s.kv.Get(ctx, RawPlanKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if rawErr == nil {
		s.raw, s.hasRaw = raw, hasRaw
	}
	if !ok {
		data = ""
	}
	if data == s.stored {
		return false
	}

	var p *plan.StudyPlan
	if data != "" {
		if p, err = plan.Decode([]byte(data)); err != nil {
			s.logger.Warn("parse persisted plan", "error", err)
			return false
		}
	}
	s.plan, s.stored = p, data
	s.version++
	return true
}

// RawPlan returns the unstructured plan text waiting to be structured.
func (s *Store) RawPlan() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw, s.hasRaw
}

// SetRawPlan stores unstructured plan text. An empty string removes it.
func (s *Store) SetRawPlan(ctx context.Context, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw, s.hasRaw = raw, raw != ""

	if s.kv == nil {
		return
	}
	var err error
	if raw == "" {
		err = s.kv.Delete(ctx, RawPlanKey)
	} else {
		err = s.kv.Put(ctx, RawPlanKey, raw)
	}
	if err != nil {
		s.logger.Warn("persist raw plan", "error", err)
	}
}
