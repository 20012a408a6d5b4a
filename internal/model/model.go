// Package model holds the plain data types shared across the turn loop:
// tasks, identity, messages, plans, links and usage samples. None of these
// types carry behavior beyond small value-object helpers; the pipeline
// packages own the algorithms that operate on them.
package model

import "fmt"

// TaskDescriptor identifies one unit of work handed to a worker. Immutable
// for the lifetime of the task.
type TaskDescriptor struct {
	TaskID   string
	SpecID   string
	TaskText string
}

// Identity is the current user's back-office identity, captured once per
// task on first use (typically via the who_am_i action).
type Identity struct {
	IsPublic   bool
	UserID     string
	Name       string
	Email      string
	Department string
	Location   string
	Today      string // simulated "today" date, YYYY-MM-DD
	WikiHash   string
}

// Known returns true once an identity action has populated this value.
func (id Identity) Known() bool {
	return id.UserID != "" || id.IsPublic
}

// Role is the tagged variant discriminator for Message.
type Role int

const (
	RoleSystem Role = iota
	RoleUser
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Message is one entry in the ordered, append-only conversation sequence
// fed to the LLM.
type Message struct {
	Role Role
	Text string
}

// PlanStepStatus is the closed set of statuses a PlanStep may carry.
type PlanStepStatus string

const (
	StepPending    PlanStepStatus = "pending"
	StepInProgress PlanStepStatus = "in_progress"
	StepCompleted  PlanStepStatus = "completed"
)

// PlanStep is one line item of the model's stated plan.
type PlanStep struct {
	Step   string         `json:"step"`
	Status PlanStepStatus `json:"status"`
}

// ActionRequest is a raw, untyped `{tool, args}` object as proposed by the
// model. Args may contain nested nested nested maps, slices, numbers,
// strings or bools — whatever the model emitted.
type ActionRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Plan is the structured result of a successful parse of raw LLM text.
type Plan struct {
	Thoughts    string          `json:"thoughts"`
	Steps       []PlanStep      `json:"plan"`
	ActionQueue []ActionRequest `json:"action_queue"`
	IsFinal     bool            `json:"is_final"`
}

// LinkKind is the closed set of entity kinds a Link may reference.
type LinkKind string

const (
	LinkEmployee LinkKind = "employee"
	LinkProject  LinkKind = "project"
	LinkCustomer LinkKind = "customer"
	LinkWiki     LinkKind = "wiki"
	LinkLocation LinkKind = "location"
)

// Valid reports whether k is one of the defined link kinds.
func (k LinkKind) Valid() bool {
	switch k {
	case LinkEmployee, LinkProject, LinkCustomer, LinkWiki, LinkLocation:
		return true
	default:
		return false
	}
}

// Link is an entity reference included in a terminal response. Links form a
// set keyed by (Kind, ID); construction code must dedupe via Key().
type Link struct {
	ID   string   `json:"id"`
	Kind LinkKind `json:"kind"`
}

// Key returns the (kind,id) dedup key for this link.
func (l Link) Key() string {
	return fmt.Sprintf("%s:%s", l.Kind, l.ID)
}

// ActionOutcome is what a dispatched action returns to the pipeline: result
// lines to feed back to the LLM, whether the turn loop should stop, and any
// shared-state updates permitted to flow back into TurnState.
type ActionOutcome struct {
	Results       []string
	StopExecution bool
	SharedUpdates map[string]any
}

// UsageSample is one LLM call's token accounting, possibly estimated when
// the vendor does not report real counts.
type UsageSample struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Estimated        bool
}

// EstimateUsage derives a token estimate from character counts using the
// same ⌊chars/4⌋ heuristic the vendor-agnostic fallback uses when usage
// metadata is absent or zero.
func EstimateUsage(promptChars, completionChars int) UsageSample {
	p := promptChars / 4
	c := completionChars / 4
	return UsageSample{
		PromptTokens:     p,
		CompletionTokens: c,
		TotalTokens:      p + c,
		Estimated:        true,
	}
}
