package llm

import (
	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

const defaultMaxTokens = 4096

// buildAnthropicRequest translates the turn loop's plain message list into
// an Anthropic Messages request, folding every system message into the
// request's System field since the Messages API takes at most one system
// prompt rather than an interleaved system role (grounded on
// features/model/anthropic/client.go's encodeMessages).
func buildAnthropicRequest(messages []model.Message, modelID string) sdk.MessageNewParams {
	var system []sdk.TextBlockParam
	var conversation []sdk.MessageParam

	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			system = append(system, sdk.TextBlockParam{Text: m.Text})
		case model.RoleUser:
			conversation = append(conversation, sdk.NewUserMessage(sdk.NewTextBlock(m.Text)))
		case model.RoleAssistant:
			conversation = append(conversation, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Text)))
		}
	}

	params := sdk.MessageNewParams{
		MaxTokens:   defaultMaxTokens,
		Messages:    conversation,
		Model:       sdk.Model(modelID),
		Temperature: sdk.Float(0),
	}
	if len(system) > 0 {
		params.System = system
	}
	return params
}

// extractAnthropicText concatenates every text content block in a
// response; the turn loop has no use for tool_use blocks since tool calls
// arrive as plan JSON inside the text, not as Anthropic-native tool_use.
func extractAnthropicText(msg *sdk.Message) string {
	if msg == nil {
		return ""
	}
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}

// usageFromAnthropic reads the provider's reported token counts, falling
// back to the chars/4 heuristic when the provider reports nothing
// (grounded on llm_provider.py's zero-usage estimate fallback).
func usageFromAnthropic(msg *sdk.Message, requestMessages []model.Message, completion string) model.UsageSample {
	if msg != nil {
		u := msg.Usage
		total := int(u.InputTokens + u.OutputTokens)
		if total > 0 {
			return model.UsageSample{
				PromptTokens:     int(u.InputTokens),
				CompletionTokens: int(u.OutputTokens),
				TotalTokens:      total,
			}
		}
	}
	promptChars := 0
	for _, m := range requestMessages {
		promptChars += len(m.Text)
	}
	return model.EstimateUsage(promptChars, len(completion))
}
