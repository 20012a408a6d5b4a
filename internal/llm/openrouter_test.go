package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

func TestAdaptMessages_MapsEachRoleToOpenAIShape(t *testing.T) {
	t.Parallel()

	messages := []model.Message{
		{Role: model.RoleSystem, Text: "be terse"},
		{Role: model.RoleUser, Text: "hello"},
		{Role: model.RoleAssistant, Text: "hi"},
	}
	out := adaptMessages(messages)
	assert.Len(t, out, 3)
}

func TestNewOpenRouterClient_DefaultsRetryAttemptsWhenNonPositive(t *testing.T) {
	t.Parallel()

	c := NewOpenRouterClient("key", 0, nil)
	assert.Equal(t, 3, c.retryAttempts)
}
