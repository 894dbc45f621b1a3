// Package session ties the stored plan, navigation cursor, task tree and
// chat together into the state of one study session.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/intellistudy/internal/chat"
	"github.com/abhisek/intellistudy/internal/formulas"
	"github.com/abhisek/intellistudy/internal/navigator"
	"github.com/abhisek/intellistudy/internal/plan"
	"github.com/abhisek/intellistudy/internal/planstore"
	"github.com/abhisek/intellistudy/internal/store"
	"github.com/abhisek/intellistudy/internal/tasktree"
)

// ErrNoPlan is returned by operations that need a loaded plan.
var ErrNoPlan = errors.New("no study plan loaded")

// ErrUnknownTask is returned for a task id that is not in the tree.
var ErrUnknownTask = errors.New("unknown task")

// Deps are the collaborators of a Session. Completions and Chat are optional.
type Deps struct {
	Plans       *planstore.Store
	Completions store.CompletionRepo
	Chat        *chat.Session
	Logger      *slog.Logger
}

// Session is the state behind the study screen. It is not safe for
// concurrent use; the chat session it holds is.
type Session struct {
	plans       *planstore.Store
	completions store.CompletionRepo
	chat        *chat.Session
	logger      *slog.Logger

	version  uint64
	plan     *plan.StudyPlan
	planKey  string
	nav      *navigator.Navigator
	resolver *tasktree.Resolver
	tree     []tasktree.Node
}

// New creates a Session and loads the current plan.
func New(ctx context.Context, deps Deps) (*Session, error) {
	if deps.Plans == nil {
		return nil, errors.New("session: plan store is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Session{
		plans:       deps.Plans,
		completions: deps.Completions,
		chat:        deps.Chat,
		logger:      deps.Logger,
		nav:         navigator.New(nil),
		resolver:    tasktree.NewResolver(nil),
		tree:        []tasktree.Node{},
	}
	s.rebuild(ctx)
	return s, nil
}

// Refresh rebuilds the navigator and tree when the stored plan has changed
// since the last build. It reports whether a rebuild happened.
func (s *Session) Refresh(ctx context.Context) bool {
	if s.plans.Version() == s.version {
		return false
	}
	s.rebuild(ctx)
	return true
}

// Reload re-reads the persisted plan and refreshes. It picks up plans
// written by another process, such as the generate command.
func (s *Session) Reload(ctx context.Context) bool {
	s.plans.Reload(ctx)
	return s.Refresh(ctx)
}

func (s *Session) rebuild(ctx context.Context) {
	s.version = s.plans.Version()
	s.plan = s.plans.Get()
	s.planKey = Fingerprint(s.plan)
	s.nav.Reset(s.plan)
	s.resolver = tasktree.NewResolver(s.plan)
	s.tree = tasktree.Project(s.plan)

	if s.plan == nil || s.completions == nil {
		return
	}
	done, err := s.completions.Load(ctx, s.planKey)
	if err != nil {
		s.logger.Warn("load task completion", "plan", s.planKey, "error", err)
		return
	}
	s.tree = tasktree.ApplyCompletion(s.tree, done)
}

// HasPlan reports whether a plan is loaded. Without one the study view
// has nothing to show and callers route to the entry screen instead.
func (s *Session) HasPlan() bool { return s.plan != nil }

// Plan returns the loaded plan, or nil.
func (s *Session) Plan() *plan.StudyPlan { return s.plan }

// PlanKey returns the fingerprint completion records are stored under.
func (s *Session) PlanKey() string { return s.planKey }

// Navigator returns the navigation cursor.
func (s *Session) Navigator() *navigator.Navigator { return s.nav }

// Tree returns the task tree with persisted completion applied.
func (s *Session) Tree() []tasktree.Node { return s.tree }

// Chat returns the chat session, or nil if none was configured.
func (s *Session) Chat() *chat.Session { return s.chat }

// Formulas returns the plan's formulas and key concepts.
func (s *Session) Formulas() []formulas.Item { return formulas.Project(s.plan) }

// Progress counts completed and total leaves of the tree.
func (s *Session) Progress() (done, total int) { return tasktree.Progress(s.tree) }

// Select moves the navigator to the position named by a task id. It
// reports false for ids that do not resolve.
func (s *Session) Select(id string) bool {
	t, ok := s.resolver.Resolve(id)
	if !ok {
		return false
	}
	s.nav.Select(t.DayIndex, t.TopicIndex)
	return true
}

// Toggle flips the completion of the leaf with the given id and records
// it. The in-memory tree changes even if recording fails.
func (s *Session) Toggle(ctx context.Context, id string) (bool, error) {
	if s.plan == nil {
		return false, ErrNoPlan
	}
	node, ok := tasktree.Find(s.tree, id)
	if !ok || !node.IsLeaf() {
		return false, fmt.Errorf("%w: %q", ErrUnknownTask, id)
	}

	s.tree = tasktree.Toggle(s.tree, id)
	completed := !node.Completed

	if s.completions == nil {
		return completed, nil
	}
	if err := s.completions.Set(ctx, s.planKey, id, completed); err != nil {
		return completed, fmt.Errorf("record completion of %s: %w", id, err)
	}
	return completed, nil
}

// ActiveID returns the id of the tree node the navigator is on, or ""
// without a plan.
func (s *Session) ActiveID() string {
	day, ok := s.nav.CurrentDay()
	if !ok {
		return ""
	}
	label := s.plan.Label(s.nav.DayIndex())
	switch {
	case s.nav.OnSummary():
		return tasktree.SummaryID(label)
	case s.nav.TopicIndex() < len(day.Items):
		return tasktree.TopicID(label, s.nav.TopicIndex()+1)
	default:
		return tasktree.DayID(label)
	}
}

// ChatContext captures the navigator position for a chat request.
func (s *Session) ChatContext() chat.Context {
	c := chat.Context{Plan: s.plan, DayIndex: s.nav.DayIndex()}
	if day, ok := s.nav.CurrentDay(); ok {
		c.Day = day
	}
	if topic, ok := s.nav.CurrentTopic(); ok {
		c.Topic = topic
	}
	return c
}

// Ask sends a question about the current position to the chat session and
// blocks until the reply settles.
func (s *Session) Ask(ctx context.Context, text string) error {
	if s.chat == nil {
		return errors.New("session: chat is not configured")
	}
	return s.chat.Send(ctx, text, s.ChatContext())
}

// Fingerprint identifies a plan's content. It is "" for nil.
func Fingerprint(p *plan.StudyPlan) string {
	if p == nil {
		return ""
	}
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}
