// Package planclient talks to the external plan service: it uploads study
// materials for a new plan and asks the service to structure raw plan text.
package planclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/intellistudy/internal/plan"
)

// Service routes.
const (
	PreviewPath   = "/preview"
	UploadPath    = "/upload"
	StructurePath = "/plan/structure-plan"
)

var (
	// ErrInvalidRequest is returned when a request fails validation before
	// being sent.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoNotes is returned when a generate request has no notes files.
	ErrNoNotes = errors.New("at least one notes file is required")

	// ErrMissingResult is returned when a 2xx response lacks the expected field.
	ErrMissingResult = errors.New("response is missing the expected result")
)

// HTTPError is a non-2xx response from the plan service.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("plan service returned status %d", e.Status)
	}
	return fmt.Sprintf("plan service returned status %d: %s", e.Status, e.Detail)
}

// GenerateRequest is the input of a plan generation call.
type GenerateRequest struct {
	Days        int
	HoursPerDay int
	Notes       []File
	Questions   []File
}

// Validate checks the request without touching the network.
func (r GenerateRequest) Validate() error {
	if r.Days < 1 || r.Days > 7 {
		return fmt.Errorf("%w: study days must be between 1 and 7, got %d", ErrInvalidRequest, r.Days)
	}
	if r.HoursPerDay < 1 || r.HoursPerDay > 24 {
		return fmt.Errorf("%w: hours per day must be between 1 and 24, got %d", ErrInvalidRequest, r.HoursPerDay)
	}
	if len(r.Notes) == 0 {
		return ErrNoNotes
	}
	if err := ValidateFiles("notes", r.Notes); err != nil {
		return err
	}
	return ValidateFiles("question", r.Questions)
}

// Client calls the plan service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Preview generates a plan and returns it as unstructured text.
func (c *Client) Preview(ctx context.Context, req GenerateRequest) (string, error) {
	var out struct {
		RawPlan string `json:"raw_plan"`
	}
	if err := c.generate(ctx, PreviewPath, req, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.RawPlan) == "" {
		return "", fmt.Errorf("preview: raw_plan: %w", ErrMissingResult)
	}
	return out.RawPlan, nil
}

// Upload generates a plan the service has already structured. The plan
// is checked against the plan schema before it is decoded.
func (c *Client) Upload(ctx context.Context, req GenerateRequest) (*plan.StudyPlan, error) {
	var out struct {
		FrontendPlan json.RawMessage `json:"frontend_plan"`
	}
	if err := c.generate(ctx, UploadPath, req, &out); err != nil {
		return nil, err
	}
	if isMissing(out.FrontendPlan) {
		return nil, fmt.Errorf("upload: frontend_plan: %w", ErrMissingResult)
	}
	if err := plan.ValidateDocument(out.FrontendPlan); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	p, err := plan.Decode(out.FrontendPlan)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	if err := plan.Validate(p); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	return p, nil
}

// Structure converts raw plan text into a StudyPlan. The service may
// answer in the client layout or in its own snake_case layout. A response
// without a goal or a daily breakdown is a failure even on status 200.
func (c *Client) Structure(ctx context.Context, raw string) (*plan.StudyPlan, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: no raw plan to structure", ErrInvalidRequest)
	}

	body, err := json.Marshal(map[string]string{"raw_plan": raw})
	if err != nil {
		return nil, fmt.Errorf("encode structure request: %w", err)
	}

	var out struct {
		StructuredPlan json.RawMessage `json:"structured_plan"`
	}
	if err := c.do(ctx, StructurePath, "application/json", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	if isMissing(out.StructuredPlan) {
		return nil, fmt.Errorf("structure: structured_plan: %w", ErrMissingResult)
	}
	p, err := plan.FromStructured(out.StructuredPlan)
	if err != nil {
		return nil, fmt.Errorf("structure: %w", err)
	}
	if err := plan.Validate(p); err != nil {
		return nil, fmt.Errorf("structure: %w", err)
	}
	return p, nil
}

func isMissing(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func (c *Client) generate(ctx context.Context, path string, req GenerateRequest, out any) error {
	if err := req.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("study_duration_days", strconv.Itoa(req.Days)); err != nil {
		return fmt.Errorf("write form: %w", err)
	}
	if err := mw.WriteField("study_hours_per_day", strconv.Itoa(req.HoursPerDay)); err != nil {
		return fmt.Errorf("write form: %w", err)
	}
	for _, f := range req.Notes {
		if err := writeFile(mw, "notes", f); err != nil {
			return err
		}
	}
	for _, f := range req.Questions {
		if err := writeFile(mw, "questions", f); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	c.logger.Info("requesting plan", "path", path, "days", req.Days,
		"hours_per_day", req.HoursPerDay, "notes", len(req.Notes), "questions", len(req.Questions))
	return c.do(ctx, path, mw.FormDataContentType(), &buf, out)
}

func writeFile(mw *multipart.Writer, field string, f File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	h.Set("Content-Type", f.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", f.Name, err)
	}

	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	c.logger.Debug("plan service response", "path", path, "status", resp.StatusCode,
		"bytes", len(data), "latency", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Status: resp.StatusCode, Detail: errorDetail(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorDetail extracts a message from an error body. FastAPI reports it
// under "detail", other services under "message" or "error".
func errorDetail(data []byte) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			switch v := body[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case nil:
			default:
				if b, err := json.Marshal(v); err == nil {
					return string(b)
				}
			}
		}
	}
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
