// Package messages builds the fixed catalogue of conversation messages the
// Turn Runner exchanges with the model: the initial task framing, and the
// various recoverable-error nudges fed back after a bad turn (spec §4.7,
// grounded on agent/message_builder.py).
package messages

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

const jsonErrorMsg = `[SYSTEM ERROR]: Invalid JSON. Respond with ONLY valid JSON: ` +
	`{"thoughts": "...", "plan": [...], "action_queue": [...], "is_final": false}`

const isFinalNoRespondMsg = `[SYSTEM ERROR]: You set is_final=true but didn't call 'respond' tool!

Add respond to action_queue:
{
  "action_queue": [{"tool": "respond", "args": {"outcome": "...", "message": "...", "links": [...]}}],
  "is_final": false
}`

const loopDetectedMsg = `[SYSTEM ERROR]: Loop detected - same actions for 3 turns!

This usually means:
1. Feature doesn't exist -> respond 'none_unsupported'
2. Missing info -> respond 'none_clarification_needed'
3. Permissions issue -> respond 'denied_security'

STOP repeating and call 'respond' with appropriate outcome.`

const noActionsMsg = `[SYSTEM ERROR]: NO ACTIONS EXECUTED!

Your action_queue may have had:
- Malformed JSON
- Unknown tool names
- Missing required fields

Please retry with correct syntax.`

const corruptedJSONTemplate = `[SYSTEM ERROR]: YOUR RESPONSE HAD CORRUPTED OR INVALID JSON!

Error: %s

CRITICAL: Your action_queue was NOT executed because the JSON was corrupted.
This can happen when the model hits token limits or generates non-ASCII garbage.

REQUIRED ACTION:
1. Regenerate your ENTIRE response with valid JSON
2. Make sure all brackets and braces are properly closed
3. Do NOT reference "previous data" - your actions did NOT execute

This turn still counts against your budget. Please try again.`

const emptyActionsMsg = `[SYSTEM ERROR]: Empty action_queue but is_final=false!

You returned no actions but claim the task is not done. You MUST either:

1. TAKE ACTION: add tools to action_queue to continue.
2. USE DATA YOU HAVE: analyze what you already collected and respond.
3. RESPOND: if you have the answer, call respond immediately.

DO NOT return empty action_queue again - you will run out of turns!`

var coachingRe = regexp.MustCompile(`(?i)\bcoach(?:es|ing)?\b|\bmentor(?:s|ing)?\b|\bupskill(?:ing)?\b|\bimprove\s+(?:his|her|their)?\s*skills?\b`)

const coachingUrgentTemplate = `CRITICAL: COACHING QUERY WITH LOW TURN BUDGET!

You have only %d turns remaining and returned empty action_queue!

STOP SEARCHING - you likely have enough data to respond.

REQUIRED ACTION NOW: call respond with outcome "ok_answer", including the
coachee's name and id and every candidate coach found with skill level >= 7,
each coach's id in parentheses.

DO NOT return empty action_queue again. DO NOT call employees_search again.`

// ContextSummary is whatever context text should accompany the task framing
// (e.g. the wiki manager's summary of loaded pages).
type ContextSummary func() string

// BuildInitialMessages builds the system + task messages that open a task
// conversation, including the turn-budget efficiency hint.
func BuildInitialMessages(systemPrompt, taskText string, maxTurns int, context ContextSummary) []model.Message {
	hint := fmt.Sprintf(`

## TURN BUDGET & EFFICIENCY
You have %d turns to complete this task. Plan efficiently.

- action_queue accepts MULTIPLE actions - they ALL execute in ONE turn.
- Batch employees_get/projects_get calls instead of looping one at a time.
- time_summary_by_employee(employees=[...]) aggregates many ids in one call.
- Use department=, location=, manager= filters to narrow searches
  instead of paginating through everything.`, maxTurns)

	ctx := ""
	if context != nil {
		ctx = context()
	}

	return []model.Message{
		{Role: model.RoleSystem, Text: systemPrompt + hint},
		{Role: model.RoleUser, Text: "TASK: " + taskText + "\n\nContext: " + ctx},
	}
}

func BuildJSONErrorMessage() model.Message {
	return model.Message{Role: model.RoleUser, Text: jsonErrorMsg}
}

func BuildCorruptedJSONMessage(errText string) model.Message {
	return model.Message{Role: model.RoleUser, Text: fmt.Sprintf(corruptedJSONTemplate, errText)}
}

func BuildIsFinalErrorMessage() model.Message {
	return model.Message{Role: model.RoleUser, Text: isFinalNoRespondMsg}
}

func BuildLoopDetectedMessage() model.Message {
	return model.Message{Role: model.RoleUser, Text: loopDetectedMsg}
}

func BuildNoActionsMessage() model.Message {
	return model.Message{Role: model.RoleUser, Text: noActionsMsg}
}

// BuildEmptyActionsMessage returns the stuck-agent nudge, escalating to an
// urgent coaching-specific variant when the turn budget is nearly spent and
// the task text looks like a coaching/mentoring query.
func BuildEmptyActionsMessage(taskText string, currentTurn, maxTurns int) model.Message {
	if taskText == "" {
		return model.Message{Role: model.RoleUser, Text: emptyActionsMsg}
	}
	remaining := maxTurns - currentTurn - 1
	if remaining <= 3 && coachingRe.MatchString(taskText) {
		return model.Message{Role: model.RoleUser, Text: fmt.Sprintf(coachingUrgentTemplate, remaining)}
	}
	return model.Message{Role: model.RoleUser, Text: emptyActionsMsg}
}

// BuildMalformedActionsMessage reports how many action entries were
// rejected before dispatch, calling out malformed mutations by name since
// those are the costliest to silently drop.
func BuildMalformedActionsMessage(malformedCount int, mutationTools []string) model.Message {
	warning := ""
	if len(mutationTools) > 0 {
		warning = "\n\nCRITICAL: Malformed mutation(s): " + strings.Join(mutationTools, ", ") + ". NOT executed!"
	}
	text := fmt.Sprintf(`[SYSTEM ERROR]: %d action(s) were malformed.

Each action MUST have: {"tool": "tool_name", "args": {...}}%s

The malformed actions were NOT executed. Please retry.`, malformedCount, warning)
	return model.Message{Role: model.RoleUser, Text: text}
}

// BuildResultsMessage assembles the per-turn execution log fed back to the
// model, prepending a turn-budget warning banner once turns are running low.
func BuildResultsMessage(results []string, currentTurn, maxTurns int) model.Message {
	if len(results) == 0 {
		return BuildNoActionsMessage()
	}
	feedback := strings.Join(results, "\n---\n")

	header := ""
	remaining := maxTurns - currentTurn - 1
	switch {
	case remaining <= 3:
		header = fmt.Sprintf("[TURN %d/%d] ONLY %d TURNS LEFT - RESPOND SOON!\n\n", currentTurn+1, maxTurns, remaining)
	case remaining <= 5:
		header = fmt.Sprintf("[TURN %d/%d] %d turns remaining - start wrapping up\n\n", currentTurn+1, maxTurns, remaining)
	}

	return model.Message{Role: model.RoleUser, Text: header + "[EXECUTION LOG]\n" + feedback}
}
