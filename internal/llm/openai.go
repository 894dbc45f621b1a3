package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openaiModels maps friendly names to OpenAI model IDs.
var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

// openaiVendor talks to OpenAI or any OpenAI-compatible API.
type openaiVendor struct {
	client   *openai.Client
	id       string
	provider string
}

// NewOpenAIProvider creates a Provider backed by the OpenAI chat
// completions API. BaseURL points it at a compatible server.
func NewOpenAIProvider(cfg OpenAIConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return newVendorProvider(newOpenAIVendor(oc, cfg.Model, ProviderOpenAI)), nil
}

func newOpenAIVendor(oc openai.ClientConfig, model, provider string) *openaiVendor {
	return &openaiVendor{
		client:   openai.NewClientWithConfig(oc),
		id:       resolveModel(model, openaiModels),
		provider: provider,
	}
}

func (o *openaiVendor) name() string  { return o.provider }
func (o *openaiVendor) model() string { return o.id }

func (o *openaiVendor) complete(ctx context.Context, req Request) (completion, error) {
	creq := openai.ChatCompletionRequest{
		Model:               o.id,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		creq.Messages = append(creq.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		creq.Messages = append(creq.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return completion{}, fmt.Errorf("marshal schema: %w", err)
		}
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return completion{}, statusError(o.provider, apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return completion{}, statusError(o.provider, reqErr.HTTPStatusCode, err)
		}
		return completion{}, err
	}
	if len(resp.Choices) == 0 {
		return completion{}, &Error{Kind: KindInvalidOutput, Provider: o.provider, Err: errors.New("no choices in response")}
	}

	choice := resp.Choices[0]
	return completion{
		text:  choice.Message.Content,
		model: resp.Model,
		usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		truncated: choice.FinishReason == openai.FinishReasonLength,
	}, nil
}
