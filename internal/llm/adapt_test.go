package llm

import (
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

func TestBuildAnthropicRequest_FoldsSystemMessagesAndKeepsConversation(t *testing.T) {
	t.Parallel()

	messages := []model.Message{
		{Role: model.RoleSystem, Text: "be terse"},
		{Role: model.RoleUser, Text: "hello"},
		{Role: model.RoleAssistant, Text: "hi there"},
	}

	req := buildAnthropicRequest(messages, "claude-test")
	assert.Equal(t, sdk.Model("claude-test"), req.Model)
	require := assert.New(t)
	require.Len(req.System, 1)
	require.Equal("be terse", req.System[0].Text)
	require.Len(req.Messages, 2)
	require.Equal(sdk.Float(0), req.Temperature)
}

func TestBuildAnthropicRequest_NoSystemMessageLeavesSystemEmpty(t *testing.T) {
	t.Parallel()

	req := buildAnthropicRequest([]model.Message{{Role: model.RoleUser, Text: "hi"}}, "m")
	assert.Empty(t, req.System)
}

func TestExtractAnthropicText_NilMessageReturnsEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", extractAnthropicText(nil))
}

func TestExtractAnthropicText_ConcatenatesTextBlocks(t *testing.T) {
	t.Parallel()

	msg := &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "hello "},
			{Type: "text", Text: "world"},
		},
	}
	assert.Equal(t, "hello world", extractAnthropicText(msg))
}

func TestUsageFromAnthropic_FallsBackToCharEstimateWhenProviderReportsZero(t *testing.T) {
	t.Parallel()

	messages := []model.Message{{Role: model.RoleUser, Text: "12345678"}}
	usage := usageFromAnthropic(nil, messages, "1234")
	assert.True(t, usage.Estimated)
	assert.Equal(t, 2, usage.PromptTokens)
	assert.Equal(t, 1, usage.CompletionTokens)
}

func TestUsageFromAnthropic_UsesProviderCountsWhenPresent(t *testing.T) {
	t.Parallel()

	msg := &sdk.Message{Usage: sdk.Usage{InputTokens: 50, OutputTokens: 20}}
	usage := usageFromAnthropic(msg, nil, "")
	assert.False(t, usage.Estimated)
	assert.Equal(t, 50, usage.PromptTokens)
	assert.Equal(t, 20, usage.CompletionTokens)
	assert.Equal(t, 70, usage.TotalTokens)
}
