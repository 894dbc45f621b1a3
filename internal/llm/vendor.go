package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// completion is a vendor's raw answer before validation.
type completion struct {
	text      string
	model     string
	usage     Usage
	truncated bool
}

// vendor is the SDK-specific half of a provider.
type vendor interface {
	name() string
	model() string
	complete(ctx context.Context, req Request) (completion, error)
}

// vendorProvider adapts a vendor to Provider. It owns the behavior every
// vendor shares: truncation handling and schema validation.
type vendorProvider struct {
	v vendor
}

var _ Provider = (*vendorProvider)(nil)

func newVendorProvider(v vendor) *vendorProvider {
	return &vendorProvider{v: v}
}

func (p *vendorProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	c, err := p.v.complete(ctx, req)
	if err != nil {
		var e *Error
		if errors.As(err, &e) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &Error{Kind: KindUnavailable, Provider: p.v.name(), Err: err}
	}

	content := json.RawMessage(strings.TrimSpace(c.text))
	resp := &Response{
		Content:    content,
		Usage:      c.usage,
		Model:      c.model,
		StopReason: StopEnd,
	}
	if resp.Model == "" {
		resp.Model = p.v.model()
	}
	if resp.Usage.TotalTokens == 0 {
		resp.Usage.TotalTokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	}

	if c.truncated {
		resp.StopReason = StopMaxTokens
		if req.Schema != nil {
			return nil, &Error{Kind: KindTruncated, Provider: p.v.name(), Content: content}
		}
	}

	if err := validateResponse(req.Schema, content); err != nil {
		err.Provider = p.v.name()
		return nil, err
	}
	return resp, nil
}

func (p *vendorProvider) ModelID() string {
	return p.v.model()
}

// resolveModel maps a friendly model name to a vendor model ID. Unknown
// names pass through so full model IDs work too.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
