package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Request is the body posted to the assistant endpoint.
type Request struct {
	UserQuery             string `json:"user_query"`
	SessionID             string `json:"session_id"`
	StudyMaterialsContext string `json:"study_materials_context"`
	StudyPlanContext      string `json:"study_plan_context"`
	Stream                bool   `json:"stream"`
}

// JSONResponse is the single-shot response shape.
type JSONResponse struct {
	AIResponse string          `json:"ai_response"`
	SessionID  string          `json:"session_id,omitempty"`
	DebugInfo  json.RawMessage `json:"debug_info,omitempty"`
}

// Response is an accepted transport response. The caller closes Body.
type Response struct {
	ContentType string
	Body        io.ReadCloser
}

// Streaming reports whether the body is a newline-delimited event stream.
func (r *Response) Streaming() bool {
	mt, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return strings.Contains(r.ContentType, "text/event-stream")
	}
	return mt == "text/event-stream" || mt == "application/x-ndjson"
}

// Transport delivers a chat request to the assistant.
type Transport interface {
	// Do sends req. A non-nil error means no usable response was received.
	Do(ctx context.Context, req Request) (*Response, error)
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("assistant returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("assistant returned status %d: %s", e.StatusCode, e.Body)
}

// ChatPath is the assistant route relative to the backend base URL.
const ChatPath = "/chat/chat"

// HTTPTransport posts requests to {baseURL}/chat/chat.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport creates an HTTPTransport. A nil client uses an
// http.Client without a timeout so long streams are not cut off.
func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream, application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send chat request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	return &Response{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}
