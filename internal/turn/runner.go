// Package turn implements the Turn Runner (C9): the top-level per-task
// loop that drives the model through the parse/validate/dispatch cycle
// until it responds or the turn budget runs out, grounded on runner.py's
// main loop.
package turn

import (
	"context"
	"fmt"

	"github.com/medvedikur/erc3-mine-sub001/internal/llm"
	"github.com/medvedikur/erc3-mine-sub001/internal/loopdetect"
	"github.com/medvedikur/erc3-mine-sub001/internal/messages"
	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/parser"
	"github.com/medvedikur/erc3-mine-sub001/internal/pipeline"
	"github.com/medvedikur/erc3-mine-sub001/internal/telemetry"
	"github.com/medvedikur/erc3-mine-sub001/internal/turnstate"
)

// Outcome is what a completed task reports to its caller.
type Outcome struct {
	Response   string
	TurnsUsed  int
	AbortedWhy string
	Usage      []llm.Usage
}

// Runner drives one task's turn loop end to end.
type Runner struct {
	LLM       llm.Client
	Processor *pipeline.Processor
	Detector  *loopdetect.Detector
	ModelID   string
	Logger    telemetry.Logger
}

// New constructs a Runner. detector is per-task (a task needs its own FIFO
// history), so callers build one per Run call rather than sharing one
// across tasks.
func New(client llm.Client, proc *pipeline.Processor, modelID string, logger telemetry.Logger) *Runner {
	if logger == nil {
		logger = telemetry.NoopLogger{}
	}
	return &Runner{LLM: client, Processor: proc, Detector: loopdetect.New(0), ModelID: modelID, Logger: logger}
}

// Run executes the algorithm in spec §4.9 for one task, returning once the
// model calls respond, the turn budget is exhausted, or a hard abort
// occurs (node failover exhausted, or the context is cancelled).
func (r *Runner) Run(ctx context.Context, task model.TaskDescriptor, systemPrompt string, maxTurns int, contextFn messages.ContextSummary) Outcome {
	state := turnstate.New(maxTurns)
	msgs := messages.BuildInitialMessages(systemPrompt, task.TaskText, maxTurns, contextFn)

	var usages []llm.Usage
	taskDone := false
	whoAmICalled := false
	finalResponse := ""

	for t := 0; t < maxTurns; t++ {
		if taskDone {
			break
		}
		state.CurrentTurn = t
		state.ClearTurnAggregators()

		resp, err := r.LLM.Complete(ctx, msgs, r.ModelID)
		if err != nil {
			r.Logger.Error(ctx, "llm invoke failed, aborting task", "task_id", task.TaskID, "turn", t, "error", err.Error())
			return Outcome{TurnsUsed: t, AbortedWhy: err.Error(), Usage: usages}
		}
		usages = append(usages, resp.Usage)

		result := parser.Parse(resp.Content)
		if !result.Success {
			msgs = append(msgs, model.Message{Role: model.RoleAssistant, Text: resp.Content})
			if result.CorruptionDetected {
				msgs = append(msgs, messages.BuildCorruptedJSONMessage(result.Error))
			} else {
				msgs = append(msgs, messages.BuildJSONErrorMessage())
			}
			continue
		}

		plan := decodePlan(result.Data)
		state.LastThoughts = plan.Thoughts

		validation := pipeline.ValidateShape(plan.ActionQueue, malformedTools(result.Data), state)
		if validation.MalformedCount > 0 {
			msgs = append(msgs, messages.BuildMalformedActionsMessage(validation.MalformedCount, validation.MalformedMutationTools))
			if len(validation.Valid) == 0 {
				continue
			}
		}

		msgs = append(msgs, model.Message{Role: model.RoleAssistant, Text: resp.Content})

		if plan.IsFinal && len(validation.Valid) == 0 {
			msgs = append(msgs, messages.BuildIsFinalErrorMessage())
			continue
		}

		if r.Detector.RecordAndCheck(validation.Valid) {
			msgs = append(msgs, messages.BuildLoopDetectedMessage())
			r.Detector.Clear()
			continue
		}

		procResult := r.Processor.Process(ctx, validation.Valid, state, whoAmICalled)
		whoAmICalled = procResult.WhoAmICalled

		switch {
		case len(procResult.Results) > 0:
			msgs = append(msgs, messages.BuildResultsMessage(procResult.Results, t, maxTurns))
		case !plan.IsFinal && len(validation.Valid) == 0:
			msgs = append(msgs, messages.BuildEmptyActionsMessage(task.TaskText, t, maxTurns))
		default:
			msgs = append(msgs, messages.BuildNoActionsMessage())
		}

		taskDone = procResult.TaskDone
		if taskDone {
			finalResponse = lastResponseLine(procResult.Results)
		}
	}

	return Outcome{Response: finalResponse, TurnsUsed: state.CurrentTurn + 1, Usage: usages}
}

func decodePlan(data map[string]any) model.Plan {
	var plan model.Plan
	if v, ok := data["thoughts"].(string); ok {
		plan.Thoughts = v
	}
	if v, ok := data["is_final"].(bool); ok {
		plan.IsFinal = v
	}
	if steps, ok := data["plan"].([]any); ok {
		for _, s := range steps {
			m, ok := s.(map[string]any)
			if !ok {
				continue
			}
			step, _ := m["step"].(string)
			status, _ := m["status"].(string)
			plan.Steps = append(plan.Steps, model.PlanStep{Step: step, Status: model.PlanStepStatus(status)})
		}
	}
	if queue, ok := data["action_queue"].([]any); ok {
		for _, q := range queue {
			m, ok := q.(map[string]any)
			if !ok {
				continue
			}
			tool, _ := m["tool"].(string)
			args, _ := m["args"].(map[string]any)
			plan.ActionQueue = append(plan.ActionQueue, model.ActionRequest{Tool: tool, Args: args})
		}
	}
	return plan
}

// malformedTools collects a textual description of each action_queue entry
// that didn't even decode to a {tool, args} object, so ValidateShape can
// best-effort guess whether it aimed at a mutation tool.
func malformedTools(data map[string]any) []string {
	queue, ok := data["action_queue"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, q := range queue {
		m, ok := q.(map[string]any)
		if !ok {
			out = append(out, fmt.Sprintf("%v", q))
			continue
		}
		if _, ok := m["tool"].(string); !ok {
			out = append(out, fmt.Sprintf("%v", m))
		}
	}
	return out
}

func lastResponseLine(results []string) string {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i] != "" {
			return results[i]
		}
	}
	return ""
}
