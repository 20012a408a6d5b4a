package messages

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

func TestBuildInitialMessages_IncludesTaskAndContext(t *testing.T) {
	t.Parallel()

	msgs := BuildInitialMessages("be helpful", "log 3 hours", 10, func() string { return "wiki: policy.md" })
	assert.Len(t, msgs, 2)
	assert.Equal(t, model.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Text, "10 turns")
	assert.Equal(t, model.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Text, "log 3 hours")
	assert.Contains(t, msgs[1].Text, "wiki: policy.md")
}

func TestBuildInitialMessages_NilContextFuncIsSafe(t *testing.T) {
	t.Parallel()

	msgs := BuildInitialMessages("be helpful", "task", 5, nil)
	assert.Contains(t, msgs[1].Text, "Context: ")
}

func TestBuildEmptyActionsMessage_NonCoachingUsesGenericNudge(t *testing.T) {
	t.Parallel()

	msg := BuildEmptyActionsMessage("log hours for alice", 8, 10)
	assert.Contains(t, msg.Text, "DO NOT return empty action_queue")
	assert.NotContains(t, msg.Text, "COACHING")
}

func TestBuildEmptyActionsMessage_CoachingQueryNearBudgetEscalates(t *testing.T) {
	t.Parallel()

	msg := BuildEmptyActionsMessage("who should mentor bob to improve their skills", 8, 10)
	assert.Contains(t, msg.Text, "COACHING QUERY WITH LOW TURN BUDGET")
}

func TestBuildEmptyActionsMessage_CoachingQueryFarFromBudgetDoesNotEscalate(t *testing.T) {
	t.Parallel()

	msg := BuildEmptyActionsMessage("who should coach bob", 0, 10)
	assert.NotContains(t, msg.Text, "COACHING QUERY WITH LOW TURN BUDGET")
}

func TestBuildEmptyActionsMessage_EmptyTaskTextFallsBackToGeneric(t *testing.T) {
	t.Parallel()

	msg := BuildEmptyActionsMessage("", 9, 10)
	assert.Contains(t, msg.Text, "Empty action_queue but is_final=false")
}

func TestBuildMalformedActionsMessage_CallsOutMutationTools(t *testing.T) {
	t.Parallel()

	msg := BuildMalformedActionsMessage(2, []string{"time_log"})
	assert.Contains(t, msg.Text, "2 action(s) were malformed")
	assert.Contains(t, msg.Text, "time_log")
	assert.Contains(t, msg.Text, "CRITICAL")
}

func TestBuildMalformedActionsMessage_NoMutationsOmitsCriticalWarning(t *testing.T) {
	t.Parallel()

	msg := BuildMalformedActionsMessage(1, nil)
	assert.NotContains(t, msg.Text, "CRITICAL")
}

func TestBuildResultsMessage_EmptyFallsBackToNoActions(t *testing.T) {
	t.Parallel()

	msg := BuildResultsMessage(nil, 0, 10)
	assert.Equal(t, BuildNoActionsMessage().Text, msg.Text)
}

func TestBuildResultsMessage_LowBudgetAddsUrgentBanner(t *testing.T) {
	t.Parallel()

	msg := BuildResultsMessage([]string{"who_am_i: ok"}, 8, 10)
	assert.Contains(t, msg.Text, "ONLY 1 TURNS LEFT")
}

func TestBuildResultsMessage_ModerateBudgetAddsWrapUpBanner(t *testing.T) {
	t.Parallel()

	msg := BuildResultsMessage([]string{"who_am_i: ok"}, 5, 10)
	assert.Contains(t, msg.Text, "start wrapping up")
}

func TestBuildResultsMessage_HealthyBudgetHasNoBanner(t *testing.T) {
	t.Parallel()

	msg := BuildResultsMessage([]string{"who_am_i: ok"}, 0, 10)
	assert.False(t, strings.Contains(msg.Text, "turns remaining") || strings.Contains(msg.Text, "TURNS LEFT"))
}

func TestBuildCorruptedJSONMessage_EmbedsErrorText(t *testing.T) {
	t.Parallel()

	msg := BuildCorruptedJSONMessage("unexpected rune")
	assert.Contains(t, msg.Text, "unexpected rune")
}
