package turn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvedikur/erc3-mine-sub001/internal/llm"
	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/pipeline"
	"github.com/medvedikur/erc3-mine-sub001/internal/tools"
)

// scriptedLLM replays a fixed sequence of raw completions, one per call.
type scriptedLLM struct {
	turns []string
	calls int
}

func (s *scriptedLLM) Complete(ctx context.Context, messages []model.Message, modelID string) (llm.Response, error) {
	if s.calls >= len(s.turns) {
		return llm.Response{Content: `{"thoughts":"","plan":[],"action_queue":[],"is_final":true}`}, nil
	}
	raw := s.turns[s.calls]
	s.calls++
	return llm.Response{Content: raw, Usage: model.UsageSample{TotalTokens: 10}}, nil
}

type fakeDispatcher struct{}

func (fakeDispatcher) Execute(ctx context.Context, action tools.TypedAction) model.ActionOutcome {
	switch action.ToolName() {
	case tools.WhoAmI:
		return model.ActionOutcome{
			Results:       []string{"who_am_i: ok"},
			SharedUpdates: map[string]any{"identity": model.Identity{UserID: "E1"}},
		}
	case tools.Respond:
		return model.ActionOutcome{Results: []string{"respond: ok"}, StopExecution: true}
	default:
		return model.ActionOutcome{Results: []string{string(action.ToolName()) + ": ok"}}
	}
}

func noContext() string { return "(no wiki pages cached)" }

func TestRunner_HappyPathCompletesInTwoTurns(t *testing.T) {
	t.Parallel()

	script := &scriptedLLM{turns: []string{
		`{"thoughts":"checking identity","plan":[],"action_queue":[{"tool":"who_am_i","args":{}}],"is_final":false}`,
		`{"thoughts":"answering","plan":[],"action_queue":[{"tool":"respond","args":{"message":"all done","outcome":"ok_answer"}}],"is_final":true}`,
	}}

	proc := &pipeline.Processor{Dispatch: fakeDispatcher{}}
	runner := New(script, proc, "test-model", nil)

	outcome := runner.Run(context.Background(), model.TaskDescriptor{TaskID: "t1", SpecID: "s1", TaskText: "do the thing"}, "system prompt", 10, noContext)

	assert.Equal(t, 2, outcome.TurnsUsed)
	assert.Empty(t, outcome.AbortedWhy)
	assert.Len(t, outcome.Usage, 2)
}

func TestRunner_RecoversFromOneMalformedJSONTurn(t *testing.T) {
	t.Parallel()

	script := &scriptedLLM{turns: []string{
		`not json at all {{{`,
		`{"thoughts":"checking identity","plan":[],"action_queue":[{"tool":"who_am_i","args":{}}],"is_final":false}`,
		`{"thoughts":"answering","plan":[],"action_queue":[{"tool":"respond","args":{"message":"all done","outcome":"ok_answer"}}],"is_final":true}`,
	}}

	proc := &pipeline.Processor{Dispatch: fakeDispatcher{}}
	runner := New(script, proc, "test-model", nil)

	outcome := runner.Run(context.Background(), model.TaskDescriptor{TaskID: "t2", SpecID: "s2", TaskText: "do the thing"}, "system prompt", 10, noContext)

	assert.Equal(t, 3, outcome.TurnsUsed, "a JSON failure should consume a turn but not abort the task")
	assert.Empty(t, outcome.AbortedWhy)
}

func TestRunner_ExhaustsTurnBudgetWithoutRespond(t *testing.T) {
	t.Parallel()

	script := &scriptedLLM{turns: []string{
		`{"thoughts":"still thinking","plan":[],"action_queue":[{"tool":"employees_list","args":{}}],"is_final":false}`,
	}}

	proc := &pipeline.Processor{Dispatch: fakeDispatcher{}}
	runner := New(script, proc, "test-model", nil)

	outcome := runner.Run(context.Background(), model.TaskDescriptor{TaskID: "t3", SpecID: "s3", TaskText: "do the thing"}, "system prompt", 3, noContext)

	assert.Equal(t, 3, outcome.TurnsUsed)
	assert.Empty(t, outcome.Response)
}

type erroringLLM struct{}

func (erroringLLM) Complete(ctx context.Context, messages []model.Message, modelID string) (llm.Response, error) {
	return llm.Response{}, assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "all gonka nodes failed" }

func TestRunner_AbortsOnHardLLMFailure(t *testing.T) {
	t.Parallel()

	proc := &pipeline.Processor{Dispatch: fakeDispatcher{}}
	runner := New(erroringLLM{}, proc, "test-model", nil)

	outcome := runner.Run(context.Background(), model.TaskDescriptor{TaskID: "t4", SpecID: "s4", TaskText: "do the thing"}, "system prompt", 10, noContext)

	require.NotEmpty(t, outcome.AbortedWhy)
	assert.Equal(t, 0, outcome.TurnsUsed)
}
