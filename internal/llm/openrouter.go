package llm

import (
	"context"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/telemetry"
)

// OpenRouterClient talks to OpenRouter's OpenAI-compatible chat completions
// endpoint. OpenRouter has no node-failover concept of its own; retries are
// the plain per-request retry loop without the Gonka node switch (grounded
// on llm_provider.py's OpenRouter branch, which wraps the same
// ChatOpenAI-style client with base_url pointed at openrouter.ai).
type OpenRouterClient struct {
	sdk            sdk.Client
	retryAttempts  int
	requestTimeout time.Duration
	logger         telemetry.Logger
}

// NewOpenRouterClient builds a client pointed at OpenRouter's API.
func NewOpenRouterClient(apiKey string, retryAttempts int, logger telemetry.Logger) *OpenRouterClient {
	if logger == nil {
		logger = telemetry.NoopLogger{}
	}
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	return &OpenRouterClient{
		sdk: sdk.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL("https://openrouter.ai/api/v1"),
		),
		retryAttempts:  retryAttempts,
		requestTimeout: 60 * time.Second,
		logger:         logger,
	}
}

func (c *OpenRouterClient) Complete(ctx context.Context, messages []model.Message, modelID string) (Response, error) {
	params := sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(modelID),
		Messages:    adaptMessages(messages),
		Temperature: sdk.Float(0),
	}

	promptChars := 0
	for _, m := range messages {
		promptChars += len(m.Text)
	}

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		resp, err := c.callOnce(ctx, params, promptChars)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if classifyError(err) {
			break
		}
		c.logger.Warn(ctx, "openrouter retry", "attempt", attempt, "error", err.Error())
		if attempt < c.retryAttempts-1 {
			wait := time.Duration(2*(attempt+1)) * time.Second
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return Response{}, ctx.Err()
			}
		}
	}
	return Response{}, lastErr
}

func (c *OpenRouterClient) callOnce(ctx context.Context, params sdk.ChatCompletionNewParams, promptChars int) (Response, error) {
	cctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	comp, err := c.sdk.Chat.Completions.New(cctx, params)
	if err != nil {
		return Response{}, err
	}

	content := ""
	if len(comp.Choices) > 0 {
		content = comp.Choices[0].Message.Content
	}

	total := int(comp.Usage.PromptTokens + comp.Usage.CompletionTokens)
	if total == 0 {
		return Response{Content: content, Usage: model.EstimateUsage(promptChars, len(content))}, nil
	}
	return Response{Content: content, Usage: model.UsageSample{
		PromptTokens:     int(comp.Usage.PromptTokens),
		CompletionTokens: int(comp.Usage.CompletionTokens),
		TotalTokens:      total,
	}}, nil
}

func adaptMessages(messages []model.Message) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			out = append(out, sdk.SystemMessage(m.Text))
		case model.RoleUser:
			out = append(out, sdk.UserMessage(m.Text))
		case model.RoleAssistant:
			out = append(out, sdk.AssistantMessage(m.Text))
		}
	}
	return out
}
