// Package pipeline implements the Action Processor (C8): shape validation,
// parsing via internal/actions, terminal-response pre-checks, dispatch to
// the back-office executor, and mutation/search tracking — grounded on
// agent/action_processor.py.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/medvedikur/erc3-mine-sub001/internal/actions"
	"github.com/medvedikur/erc3-mine-sub001/internal/failurelog"
	"github.com/medvedikur/erc3-mine-sub001/internal/links"
	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/tools"
	"github.com/medvedikur/erc3-mine-sub001/internal/turnstate"
)

// Dispatcher is the back-office boundary the processor hands typed
// actions to; internal/backoffice.Executor implements it.
type Dispatcher interface {
	Execute(ctx context.Context, action tools.TypedAction) model.ActionOutcome
}

// Processor executes one turn's action_queue against TurnState.
type Processor struct {
	Dispatch         Dispatcher
	ValidateEmployee links.EmployeeValidator
	CurrentUser      string
	TaskID           string
	FailureLog       *failurelog.FailureLogger
}

// ValidationResult is what validateShape reports: the actions worth
// parsing, and information about the ones that weren't.
type ValidationResult struct {
	Valid                  []model.ActionRequest
	MalformedCount         int
	MalformedMutationTools []string
}

var mutationToolCanon = buildMutationCanon()

func buildMutationCanon() map[string]tools.Name {
	out := map[string]tools.Name{}
	for name := range tools.MutationToolNames {
		out[strings.ReplaceAll(string(name), "_", "")] = name
	}
	return out
}

// ValidateShape filters out malformed queue entries (spec §4.8 step 1).
// Raw entries whose shape is too broken to have even reached this layer
// as an ActionRequest are represented by an empty Tool; this function
// keeps entries with a non-empty Tool and reports the rest, best-effort
// guessing whether the malformed entry looked like it was aiming at a
// mutation tool so its name can be queued into pending_mutation_tools.
func ValidateShape(raw []model.ActionRequest, rawMalformed []string, state *turnstate.TurnState) ValidationResult {
	var valid []model.ActionRequest
	for _, a := range raw {
		if a.Tool != "" {
			valid = append(valid, a)
		}
	}

	var malformedTools []string
	for _, s := range rawMalformed {
		flat := strings.ReplaceAll(strings.ToLower(s), "_", "")
		for canon, name := range mutationToolCanon {
			if strings.Contains(flat, canon) {
				malformedTools = append(malformedTools, string(name))
				state.PendingMutationTools[string(name)] = true
				break
			}
		}
	}

	return ValidationResult{
		Valid:                  valid,
		MalformedCount:         len(rawMalformed),
		MalformedMutationTools: malformedTools,
	}
}

// Result is what Process reports back to the Turn Runner.
type Result struct {
	Results        []string
	TaskDone       bool
	WhoAmICalled   bool
	HadErrors      bool
}

// Process runs the full per-action pipeline over one turn's valid action
// queue (spec §4.8 steps 2-9).
func (p *Processor) Process(ctx context.Context, actionQueue []model.ActionRequest, state *turnstate.TurnState, whoAmICalled bool) Result {
	var results []string
	hadErrors := false
	taskDone := false
	stopExecution := false

	for idx, req := range actionQueue {
		if stopExecution {
			break
		}

		shared := state.ToSharedDict()
		parsed := actions.Parse(req, actions.Input{
			CurrentUser:      p.CurrentUser,
			Shared:           shared,
			ValidateEmployee: p.ValidateEmployee,
		})

		if parsed.Err != nil {
			results = append(results, fmt.Sprintf("Action %d ERROR: %s", idx+1, parsed.Err.Message))
			hadErrors = true
			trackMissingTool(parsed.Err, state)
			continue
		}
		if parsed.Skipped || parsed.Action == nil {
			results = append(results, fmt.Sprintf("Action %d: SKIPPED (invalid format)", idx+1))
			hadErrors = true
			continue
		}
		action := parsed.Action

		if _, ok := action.(tools.Req_WhoAmI); ok {
			whoAmICalled = true
		}

		if resp, ok := action.(tools.Req_ProvideAgentResponse); ok {
			if blockMsg := checkRespondBlocked(resp, whoAmICalled, hadErrors, state); blockMsg != "" {
				results = append(results, fmt.Sprintf("Action %d BLOCKED: %s", idx+1, blockMsg))
				continue
			}
		}

		outcome := p.Dispatch.Execute(ctx, action)
		results = append(results, outcome.Results...)
		syncOutcome(state, outcome)

		if id, ok := outcome.SharedUpdates["identity"].(model.Identity); ok {
			if id.UserID != "" {
				p.CurrentUser = id.UserID
			}
			if id.Today != "" {
				state.Today = id.Today
			}
		}

		if p.FailureLog != nil && len(outcome.Results) > 0 {
			p.FailureLog.LogContextResults(p.TaskID, req.Tool, outcome.Results)
		}

		actionHadError := anyFailedOrError(outcome.Results)
		if actionHadError {
			hadErrors = true
		} else {
			state.ActionTypesExecuted[req.Tool] = true
		}

		if !actionHadError {
			trackMutation(action, state, outcome)
			trackSearch(action, state)
		}

		if outcome.StopExecution {
			stopExecution = true
		}

		if _, ok := action.(tools.Req_ProvideAgentResponse); ok && outcome.StopExecution && !actionHadError {
			taskDone = true
		}
	}

	return Result{Results: results, TaskDone: taskDone, WhoAmICalled: whoAmICalled, HadErrors: hadErrors}
}

func anyFailedOrError(results []string) bool {
	for _, r := range results {
		if strings.Contains(r, "FAILED") || strings.Contains(r, "ERROR") {
			return true
		}
	}
	return false
}

func trackMissingTool(perr *tools.ParseError, state *turnstate.TurnState) {
	msg := strings.ToLower(perr.Message)
	if strings.Contains(msg, "does not exist") || strings.Contains(msg, "unknown tool") {
		name := perr.Tool
		if name == "" {
			name = "unknown"
		}
		for _, existing := range state.MissingTools {
			if existing == name {
				return
			}
		}
		state.MissingTools = append(state.MissingTools, name)
	}
}

func checkRespondBlocked(resp tools.Req_ProvideAgentResponse, whoAmICalled, hadErrors bool, state *turnstate.TurnState) string {
	if !whoAmICalled {
		return "You MUST call 'who_am_i' first to verify identity."
	}
	if hadErrors && resp.Outcome == tools.OutcomeOKAnswer {
		return "Cannot respond 'ok_answer' when previous actions FAILED."
	}
	if len(state.PendingMutationTools) > 0 && resp.Outcome == tools.OutcomeOKAnswer {
		pending := make([]string, 0, len(state.PendingMutationTools))
		for t := range state.PendingMutationTools {
			pending = append(pending, t)
		}
		return fmt.Sprintf("Pending mutations not executed: [%s]", strings.Join(pending, ", "))
	}
	return ""
}

// syncOutcome folds an ActionOutcome's SharedUpdates into TurnState via
// the permitted Snapshot surface, same pattern as sync_from_context.
func syncOutcome(state *turnstate.TurnState, outcome model.ActionOutcome) {
	if outcome.SharedUpdates == nil {
		return
	}
	snap := turnstate.Snapshot{}
	if v, ok := outcome.SharedUpdates["loaded_wiki_content"].(map[string]string); ok {
		snap.LoadedWikiContent = v
	}
	if f, ok := outcome.SharedUpdates["deleted_wiki_file"].(string); ok {
		snap.DeletedWikiFiles = map[string]bool{f: true}
	}
	if c, ok := outcome.SharedUpdates["customer_contact"].(map[string]any); ok {
		id, _ := c["id"].(string)
		name, _ := c["name"].(string)
		email, _ := c["email"].(string)
		if id != "" {
			snap.CustomerContacts = map[string]turnstate.CustomerContact{id: {Name: name, Email: email}}
		}
	}
	state.Sync(snap)
}

// pendingNamesFor is the mutation-type -> pending-tool-names table (spec §4.8
// step 7 "remove its tool name (and aliases) from pending_mutation_tools").
func pendingNamesFor(action tools.TypedAction) []string {
	switch action.(type) {
	case tools.Req_LogTimeEntry:
		return []string{"time_log"}
	case tools.Req_EmployeesUpdate:
		return []string{"employees_update"}
	case tools.Req_ProjectsStatusUpdate:
		return []string{"projects_status_update", "projects_update"}
	case tools.Req_ProjectsTeamUpdate:
		return []string{"projects_team_update", "projects_update"}
	case tools.Req_UpdateTimeEntry:
		return []string{"time_update"}
	case tools.Req_WikiUpdate:
		return []string{"wiki_update"}
	default:
		return nil
	}
}

func isMutation(action tools.TypedAction) bool {
	return pendingNamesFor(action) != nil
}

func trackMutation(action tools.TypedAction, state *turnstate.TurnState, outcome model.ActionOutcome) {
	if !isMutation(action) {
		return
	}
	state.HadMutations = true
	for _, name := range pendingNamesFor(action) {
		delete(state.PendingMutationTools, name)
	}

	switch a := action.(type) {
	case tools.Req_LogTimeEntry:
		if a.Project != "" {
			state.MutationEntities = append(state.MutationEntities, model.Link{ID: a.Project, Kind: model.LinkProject})
		}
		if a.Employee != "" {
			state.MutationEntities = append(state.MutationEntities, model.Link{ID: a.Employee, Kind: model.LinkEmployee})
		}
		if a.LoggedBy != "" && a.LoggedBy != a.Employee {
			state.MutationEntities = append(state.MutationEntities, model.Link{ID: a.LoggedBy, Kind: model.LinkEmployee})
		}
	case tools.Req_EmployeesUpdate:
		if a.Employee != "" {
			state.MutationEntities = append(state.MutationEntities, model.Link{ID: a.Employee, Kind: model.LinkEmployee})
		}
	case tools.Req_ProjectsStatusUpdate:
		if a.ID != "" {
			state.MutationEntities = append(state.MutationEntities, model.Link{ID: a.ID, Kind: model.LinkProject})
		}
	case tools.Req_ProjectsTeamUpdate:
		if a.ID != "" {
			state.MutationEntities = append(state.MutationEntities, model.Link{ID: a.ID, Kind: model.LinkProject})
		}
		for _, m := range a.Team {
			if m.Employee != "" {
				state.MutationEntities = append(state.MutationEntities, model.Link{ID: m.Employee, Kind: model.LinkEmployee})
			}
		}
	case tools.Req_UpdateTimeEntry:
		if entities, ok := outcome.SharedUpdates["time_update_entities"].([]model.Link); ok {
			state.MutationEntities = append(state.MutationEntities, entities...)
		}
	case tools.Req_WikiUpdate:
		// no entity link kind for wiki pages; tracked via deleted_wiki_files only.
		_ = a
	}
}

func trackSearch(action tools.TypedAction, state *turnstate.TurnState) {
	switch a := action.(type) {
	case tools.Req_SearchTimeEntries:
		if a.Employee != "" {
			state.SearchEntities = append(state.SearchEntities, model.Link{ID: a.Employee, Kind: model.LinkEmployee})
		}
		if a.Project != "" {
			state.SearchEntities = append(state.SearchEntities, model.Link{ID: a.Project, Kind: model.LinkProject})
		}
	case tools.Req_TimeSummaryByEmployee:
		for _, emp := range a.Employees {
			state.SearchEntities = append(state.SearchEntities, model.Link{ID: emp, Kind: model.LinkEmployee})
		}
	case tools.Req_TimeSummaryByProject:
		for _, proj := range a.Projects {
			state.SearchEntities = append(state.SearchEntities, model.Link{ID: proj, Kind: model.LinkProject})
		}
	}
}
