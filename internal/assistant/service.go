// Package assistant answers study questions for the chat panel. It turns a
// chat request into a tutoring prompt for an LLM provider and serves the
// reply over HTTP.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/intellistudy/internal/chat"
	"github.com/abhisek/intellistudy/internal/llm"
)

// FallbackText replaces a blank answer from the model.
const FallbackText = "I'm sorry, I couldn't generate a specific response for that. Could you try rephrasing or providing more context?"

// contextPreview is how much of each reference context goes into the prompt.
const contextPreview = 200

const systemPrompt = `You are an AI Study Tutor helping a student work through their study plan.
Your primary goal is to provide a helpful, concise, and accurate response to the student's query.
If the query is a greeting, respond politely. If it's a question, answer it clearly.
If it's a request for explanation, provide one based on the reference material if relevant.`

var answerSchema = &llm.Schema{
	Name:        "tutor-answer",
	Description: "The tutor's reply to the student's query",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "A clear, helpful response that directly addresses the student's query",
			},
		},
		"required":             []any{"answer"},
		"additionalProperties": false,
	},
}

// ErrNoProvider is returned when the service has no LLM configured.
var ErrNoProvider = errors.New("assistant: no LLM provider configured")

// Service produces tutoring replies.
type Service struct {
	provider llm.Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds a single reply. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service. A nil provider yields a service whose
// replies fail with ErrNoProvider.
func NewService(provider llm.Provider, opts ...Option) *Service {
	s := &Service{provider: provider, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether a provider is configured.
func (s *Service) Available() bool {
	return s != nil && s.provider != nil
}

// Reply answers req.UserQuery using the request's reference contexts.
func (s *Service) Reply(ctx context.Context, req chat.Request) (string, error) {
	if !s.Available() {
		return "", ErrNoProvider
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeChat)
	ctx = llm.WithSession(ctx, req.SessionID)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildPrompt(req)}},
		Schema:      answerSchema,
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}

	answer := strings.TrimSpace(out.Answer)
	if answer == "" {
		s.logger.Warn("blank reply from model", "session_id", req.SessionID, "model", resp.Model)
		return FallbackText, nil
	}
	return answer, nil
}

func buildPrompt(req chat.Request) string {
	var refs []string
	if req.StudyMaterialsContext != "" {
		refs = append(refs, "Reference Study Materials (first 200 chars):\n"+preview(req.StudyMaterialsContext)+"...")
	}
	if req.StudyPlanContext != "" {
		refs = append(refs, "Reference Study Plan (first 200 chars):\n"+preview(req.StudyPlanContext)+"...")
	}
	reference := strings.Join(refs, "\n\n")
	if reference == "" {
		reference = "No specific reference material provided beyond the user's query."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "A student has sent the following query: '%s'.\n", req.UserQuery)
	b.WriteString("Use the following reference material to inform your answer. ")
	b.WriteString("If the material is not directly relevant, focus on the user's query directly.\n\n")
	fmt.Fprintf(&b, "Reference Material:\n%s\n", reference)
	return b.String()
}

// preview returns the first contextPreview runes of s.
func preview(s string) string {
	r := []rune(s)
	if len(r) <= contextPreview {
		return s
	}
	return string(r[:contextPreview])
}

// chunkWords splits text into groups of n words. Joining the groups gives
// back text unchanged.
func chunkWords(text string, n int) []string {
	if text == "" {
		return nil
	}
	if n < 1 {
		n = 1
	}
	var words []string
	for _, w := range strings.SplitAfter(text, " ") {
		if w != "" {
			words = append(words, w)
		}
	}
	var chunks []string
	for i := 0; i < len(words); i += n {
		chunks = append(chunks, strings.Join(words[i:min(i+n, len(words))], ""))
	}
	return chunks
}
