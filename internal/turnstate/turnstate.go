// Package turnstate implements TurnState (C5): the per-task mutable
// accumulator owned exclusively by the Turn Runner goroutine, with an
// explicit snapshot/sync split so the pipeline's reach into this state is
// enumerable rather than ad-hoc.
package turnstate

import "github.com/medvedikur/erc3-mine-sub001/internal/model"

// TurnState accumulates everything that must persist across turns and
// actions within one task. Fields are grouped by who is allowed to write
// them: the Runner writes current_turn/max_turns/last_thoughts directly;
// had_mutations/mutation_entities/search_entities/missing_tools/
// action_types_executed/pending_mutation_tools are updated directly by the
// Action Processor after dispatch (not via Sync, mirroring the original's
// "Note: had_mutations, mutation_entities, search_entities are updated
// directly in the main loop after successful actions"); everything else
// flows back only through Sync, which enumerates exactly the keys the
// pipeline is permitted to mutate.
type TurnState struct {
	CurrentTurn int
	MaxTurns    int

	HadMutations     bool
	MutationEntities []model.Link
	SearchEntities   []model.Link
	FetchedEntities  []model.Link

	MissingTools         []string
	ActionTypesExecuted  map[string]bool
	ActionCounts         map[string]int
	PendingMutationTools map[string]bool

	EmployeesSearchQueries []string
	QuerySubjectIDs        map[string]bool

	DeletedWikiFiles     map[string]bool
	LoadedWikiContent    map[string]string
	LoadedWikiContentAPI map[string]string

	CustomerContacts map[string]CustomerContact

	GlobalSkillLevelTracker map[string]map[string]int
	GlobalWorkloadTracker   map[string][2]float64
	PendingPagination       map[string]PaginationState

	// AccumulatedProjectIDs is order-preserving and deduplicated (spec
	// §3 "accumulated_project_ids").
	AccumulatedProjectIDs []string

	// MemberProjectsBatch is per-turn scratch, cleared by
	// ClearTurnAggregators at the start of every turn.
	MemberProjectsBatch map[string][]string

	LastThoughts string

	WhoAmICalled bool

	// Today is the simulated "today" date (YYYY-MM-DD), captured from
	// Identity.Today the first time who_am_i resolves it.
	Today string
}

// CustomerContact is the contact info surfaced by customers_get, retained
// so a later response can link the customer when its contact is mentioned.
type CustomerContact struct {
	Name  string
	Email string
}

// PaginationState tracks an in-progress paginated call within a turn.
type PaginationState struct {
	NextOffset   int
	CurrentCount int
}

// New constructs a TurnState for a task with the given turn budget.
func New(maxTurns int) *TurnState {
	return &TurnState{
		MaxTurns:                maxTurns,
		ActionTypesExecuted:     map[string]bool{},
		ActionCounts:            map[string]int{},
		PendingMutationTools:    map[string]bool{},
		QuerySubjectIDs:         map[string]bool{},
		DeletedWikiFiles:        map[string]bool{},
		LoadedWikiContent:       map[string]string{},
		LoadedWikiContentAPI:    map[string]string{},
		CustomerContacts:        map[string]CustomerContact{},
		GlobalSkillLevelTracker: map[string]map[string]int{},
		GlobalWorkloadTracker:   map[string][2]float64{},
		PendingPagination:       map[string]PaginationState{},
		MemberProjectsBatch:     map[string][]string{},
	}
}

// ClearTurnAggregators resets per-turn scratch at the start of each turn;
// per-task accumulators are preserved (spec §4.5).
func (s *TurnState) ClearTurnAggregators() {
	for k := range s.MemberProjectsBatch {
		delete(s.MemberProjectsBatch, k)
	}
}

// ToSharedDict produces the immutable snapshot handed to the pipeline for
// one action (spec §4.5 "to_shared_dict").
func (s *TurnState) ToSharedDict() map[string]any {
	return map[string]any{
		"had_mutations":              s.HadMutations,
		"mutation_entities":          s.MutationEntities,
		"search_entities":            s.SearchEntities,
		"fetched_entities":           s.FetchedEntities,
		"missing_tools":              s.MissingTools,
		"action_types_executed":      s.ActionTypesExecuted,
		"action_counts":              s.ActionCounts,
		"employees_search_queries":   s.EmployeesSearchQueries,
		"current_turn":               s.CurrentTurn,
		"max_turns":                  s.MaxTurns,
		"last_thoughts":              s.LastThoughts,
		"member_projects_batch":      s.MemberProjectsBatch,
		"pending_pagination":         s.PendingPagination,
		"query_subject_ids":          s.QuerySubjectIDs,
		"deleted_wiki_files":         s.DeletedWikiFiles,
		"loaded_wiki_content":        s.LoadedWikiContent,
		"loaded_wiki_content_api":    s.LoadedWikiContentAPI,
		"customer_contacts":          s.CustomerContacts,
		"accumulated_project_ids":    s.AccumulatedProjectIDs,
		"today":                      s.Today,
	}
}

// Snapshot is the subset of shared-dict keys the pipeline is permitted to
// mutate and hand back via Sync; everything else in ToSharedDict is
// read-only to the pipeline.
type Snapshot struct {
	PendingPagination    map[string]PaginationState
	QuerySubjectIDs      map[string]bool
	DeletedWikiFiles     map[string]bool
	LoadedWikiContent    map[string]string
	LoadedWikiContentAPI map[string]string
	CustomerContacts     map[string]CustomerContact
	AccumulatedProjectIDs []string
}

// Sync merges back only the keys the pipeline is permitted to mutate,
// leaving had_mutations/mutation_entities/search_entities/
// action_types_executed/pending_mutation_tools alone — those are updated
// directly by the Action Processor after dispatch, not through Sync (spec
// §4.5 "sync_from_context").
func (s *TurnState) Sync(snap Snapshot) {
	if snap.PendingPagination != nil {
		s.PendingPagination = snap.PendingPagination
	}
	for id := range snap.QuerySubjectIDs {
		s.QuerySubjectIDs[id] = true
	}
	for f := range snap.DeletedWikiFiles {
		s.DeletedWikiFiles[f] = true
	}
	for k, v := range snap.LoadedWikiContent {
		s.LoadedWikiContent[k] = v
	}
	for k, v := range snap.LoadedWikiContentAPI {
		s.LoadedWikiContentAPI[k] = v
	}
	for k, v := range snap.CustomerContacts {
		s.CustomerContacts[k] = v
	}
	seen := make(map[string]bool, len(s.AccumulatedProjectIDs))
	for _, id := range s.AccumulatedProjectIDs {
		seen[id] = true
	}
	for _, id := range snap.AccumulatedProjectIDs {
		if !seen[id] {
			s.AccumulatedProjectIDs = append(s.AccumulatedProjectIDs, id)
			seen[id] = true
		}
	}
}
