package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/tools"
	"github.com/medvedikur/erc3-mine-sub001/internal/turnstate"
)

type fakeDispatcher struct {
	outcomes map[tools.Name]model.ActionOutcome
}

func (f *fakeDispatcher) Execute(ctx context.Context, action tools.TypedAction) model.ActionOutcome {
	if out, ok := f.outcomes[action.ToolName()]; ok {
		return out
	}
	return model.ActionOutcome{Results: []string{string(action.ToolName()) + ": ok"}}
}

func newState() *turnstate.TurnState {
	return turnstate.New(10)
}

func TestValidateShape_DropsMalformedKeepsValid(t *testing.T) {
	t.Parallel()

	state := newState()
	raw := []model.ActionRequest{
		{Tool: "who_am_i"},
		{Tool: ""}, // already-malformed representation
	}
	result := ValidateShape(raw, []string{"time_log garbage"}, state)

	require.Len(t, result.Valid, 1)
	assert.Equal(t, "who_am_i", result.Valid[0].Tool)
	assert.Equal(t, 1, result.MalformedCount)
	assert.Contains(t, result.MalformedMutationTools, string(tools.TimeLog))
	assert.True(t, state.PendingMutationTools[string(tools.TimeLog)])
}

func TestProcess_RespondBlockedWithoutWhoAmI(t *testing.T) {
	t.Parallel()

	dispatch := &fakeDispatcher{}
	proc := &Processor{Dispatch: dispatch}
	state := newState()

	queue := []model.ActionRequest{
		{Tool: "respond", Args: map[string]any{"message": "done", "outcome": "ok_answer"}},
	}
	result := proc.Process(context.Background(), queue, state, false)

	require.Len(t, result.Results, 1)
	assert.Contains(t, result.Results[0], "BLOCKED")
	assert.False(t, result.TaskDone)
}

func TestProcess_RespondSucceedsAfterWhoAmI(t *testing.T) {
	t.Parallel()

	dispatch := &fakeDispatcher{
		outcomes: map[tools.Name]model.ActionOutcome{
			tools.WhoAmI: {
				Results: []string{"who_am_i: ok"},
				SharedUpdates: map[string]any{
					"identity": model.Identity{UserID: "E1", Today: "2026-07-30"},
				},
			},
			tools.Respond: {Results: []string{"respond: ok"}, StopExecution: true},
		},
	}
	proc := &Processor{Dispatch: dispatch}
	state := newState()

	queue := []model.ActionRequest{
		{Tool: "who_am_i"},
		{Tool: "respond", Args: map[string]any{"message": "done", "outcome": "ok_answer"}},
	}
	result := proc.Process(context.Background(), queue, state, false)

	assert.True(t, result.TaskDone)
	assert.True(t, result.WhoAmICalled)
	assert.Equal(t, "E1", proc.CurrentUser, "a successful who_am_i dispatch should populate CurrentUser")
	assert.Equal(t, "2026-07-30", state.Today, "who_am_i's simulated date should flow into TurnState")
}

func TestProcess_PendingMutationBlocksOKAnswer(t *testing.T) {
	t.Parallel()

	dispatch := &fakeDispatcher{
		outcomes: map[tools.Name]model.ActionOutcome{
			tools.WhoAmI: {Results: []string{"ok"}},
		},
	}
	proc := &Processor{Dispatch: dispatch}
	state := newState()
	state.PendingMutationTools["time_log"] = true

	queue := []model.ActionRequest{
		{Tool: "who_am_i"},
		{Tool: "respond", Args: map[string]any{"message": "done", "outcome": "ok_answer"}},
	}
	result := proc.Process(context.Background(), queue, state, false)

	require.Len(t, result.Results, 2)
	assert.Contains(t, result.Results[1], "Pending mutations")
	assert.False(t, result.TaskDone)
}

func TestProcess_MutationTracksEntitiesAndClearsPending(t *testing.T) {
	t.Parallel()

	dispatch := &fakeDispatcher{
		outcomes: map[tools.Name]model.ActionOutcome{
			tools.TimeLog: {Results: []string{"time_log: ok"}},
		},
	}
	proc := &Processor{Dispatch: dispatch}
	state := newState()
	state.PendingMutationTools["time_log"] = true

	queue := []model.ActionRequest{
		{Tool: "time_log", Args: map[string]any{
			"employee": "E1", "project": "P1", "date": "2026-07-30", "hours": 2.0, "logged_by": "E1",
		}},
	}
	result := proc.Process(context.Background(), queue, state, false)

	assert.False(t, result.HadErrors)
	assert.True(t, state.HadMutations)
	assert.NotContains(t, state.PendingMutationTools, "time_log")
	assert.NotEmpty(t, state.MutationEntities)
}

func TestProcess_StopsExecutionAfterRespond(t *testing.T) {
	t.Parallel()

	dispatch := &fakeDispatcher{
		outcomes: map[tools.Name]model.ActionOutcome{
			tools.WhoAmI:  {Results: []string{"ok"}},
			tools.Respond: {Results: []string{"respond: ok"}, StopExecution: true},
		},
	}
	proc := &Processor{Dispatch: dispatch}
	state := newState()

	queue := []model.ActionRequest{
		{Tool: "who_am_i"},
		{Tool: "respond", Args: map[string]any{"message": "done", "outcome": "ok_answer"}},
		{Tool: "employees_list"}, // should never execute
	}
	result := proc.Process(context.Background(), queue, state, false)

	assert.Len(t, result.Results, 2)
	assert.True(t, result.TaskDone)
}
