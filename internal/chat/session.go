// Package chat implements the study assistant conversation: an ordered
// transcript bound to a session id, and the protocol that streams an
// assistant reply into a single transcript entry.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/intellistudy/internal/plan"
)

var (
	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight is returned by Send and ClearTranscript while another
	// send has not settled.
	ErrSendInFlight = errors.New("a message is already being sent")
)

// Context is the study position a message is asked about.
type Context struct {
	Plan     *plan.StudyPlan
	Day      *plan.DailySchedule
	DayIndex int
	Topic    *plan.StudyItem
}

// Session owns the transcript and session id. Sends are serialized: a
// send while another is in flight is rejected, not queued. The transcript
// is replaced on every update, never edited in place, so snapshots
// returned by Transcript stay valid.
//
// The transcript grows without bound for the life of the session.
type Session struct {
	transport Transport
	logger    *slog.Logger
	now       func() time.Time
	onChange  func()

	mu         sync.Mutex
	id         string
	transcript []Message
	busy       bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for protocol and transport problems.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithOnChange registers a callback run after every transcript change.
// It is called without the session lock held.
func WithOnChange(fn func()) Option {
	return func(s *Session) { s.onChange = fn }
}

// New creates a session with a fresh id and the welcome message.
func New(transport Transport, opts ...Option) *Session {
	s := &Session{
		transport: transport,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.id = s.newSessionID()
	s.transcript = []Message{s.welcome()}
	return s
}

func (s *Session) newSessionID() string {
	return fmt.Sprintf("session_%d_%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

func (s *Session) welcome() Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    SenderAI,
		Text:      WelcomeText,
		Timestamp: s.now(),
	}
}

// ID returns the current session id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Transcript returns the messages in insertion order.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// Busy reports whether a send is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// ClearTranscript starts a new conversation: a fresh session id and only
// the welcome message.
func (s *Session) ClearTranscript() error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.id = s.newSessionID()
	s.transcript = []Message{s.welcome()}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Send appends text as a user message and the assistant reply to it, and
// blocks until the reply settles. Transport and protocol failures end up
// in the transcript as an error reply and are not returned. Only blank
// input and a concurrent send are reported as errors; in both cases the
// transcript is left unchanged.
func (s *Session) Send(ctx context.Context, text string, c Context) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	now := s.now()
	placeholder := Message{
		ID:          uuid.NewString(),
		Sender:      SenderAI,
		Text:        ThinkingText,
		Timestamp:   now,
		IsStreaming: true,
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.busy = true
	sessionID := s.id
	s.transcript = appendCopy(s.transcript,
		Message{ID: uuid.NewString(), Sender: SenderUser, Text: text, Timestamp: now},
		placeholder,
	)
	s.mu.Unlock()
	s.notify()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		s.notify()
	}()

	req := Request{
		UserQuery:             text,
		SessionID:             sessionID,
		StudyMaterialsContext: MaterialsContext(c.Topic),
		StudyPlanContext:      PlanContext(c, s.logger),
		Stream:                true,
	}

	resp, err := s.transport.Do(ctx, req)
	if err != nil {
		s.logger.Warn("chat request failed", "session_id", sessionID, "error", err)
		s.update(placeholder.ID, func(m Message) Message {
			m.Text = TransportErrorText
			m.IsError = true
			m.IsStreaming = false
			return m
		})
		return nil
	}
	defer resp.Body.Close()

	if resp.Streaming() {
		s.consumeStream(placeholder.ID, resp.Body)
	} else {
		s.consumeJSON(placeholder.ID, resp.Body)
	}
	return nil
}

func (s *Session) consumeStream(id string, body io.Reader) {
	var reply Reply
	for ev, err := range DecodeStream(body, s.logger) {
		if err != nil {
			s.logger.Warn("chat stream interrupted", "error", err)
			reply = reply.Interrupt()
			break
		}
		reply = reply.Apply(ev)
		s.update(id, reply.ApplyTo)
		if reply.Settled {
			break
		}
	}
	reply = reply.Finish()
	s.update(id, reply.ApplyTo)
}

func (s *Session) consumeJSON(id string, body io.Reader) {
	var resp JSONResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		s.logger.Warn("decode chat response", "error", err)
	}

	s.update(id, func(m Message) Message {
		m.IsStreaming = false
		if strings.TrimSpace(resp.AIResponse) == "" {
			m.Text = NoResponseText
			m.IsError = true
			return m
		}
		m.Text = resp.AIResponse
		return m
	})
}

// update replaces the message with the given id by fn's result.
func (s *Session) update(id string, fn func(Message) Message) {
	s.mu.Lock()
	next := make([]Message, len(s.transcript))
	copy(next, s.transcript)
	for i := range next {
		if next[i].ID == id {
			next[i] = fn(next[i])
			break
		}
	}
	s.transcript = next
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

func appendCopy(msgs []Message, more ...Message) []Message {
	next := make([]Message, 0, len(msgs)+len(more))
	next = append(next, msgs...)
	return append(next, more...)
}

// MaterialsContext is the study material text sent with a question:
// "{topic}: {details}", or empty without a topic or details.
func MaterialsContext(topic *plan.StudyItem) string {
	if topic == nil || topic.Details == "" {
		return ""
	}
	return topic.Topic + ": " + topic.Details
}

type planContext struct {
	CurrentDay dayContext `json:"currentDay"`
}

type dayContext struct {
	Day          int             `json:"day"`
	FocusArea    string          `json:"focusArea"`
	CurrentTopic *plan.StudyItem `json:"currentTopic"`
}

// PlanContext serializes the active day and topic. It is empty when no
// plan is loaded.
func PlanContext(c Context, logger *slog.Logger) string {
	if c.Plan == nil {
		return ""
	}
	dc := dayContext{Day: c.DayIndex + 1, CurrentTopic: c.Topic}
	if c.Day != nil {
		dc.FocusArea = c.Day.FocusArea
		if dc.FocusArea == "" {
			dc.FocusArea = c.Day.DaySummary
		}
	}
	data, err := json.Marshal(planContext{CurrentDay: dc})
	if err != nil {
		if logger != nil {
			logger.Warn("encode plan context", "error", err)
		}
		return ""
	}
	return string(data)
}
