package tools

import (
	"fmt"
	"sort"

	"github.com/medvedikur/erc3-mine-sub001/internal/links"
)

// ParseContext is the read-only context handed to a per-tool parser: the
// already-normalized args, the original raw args (for parsers that need to
// see what was actually sent), a generic shared-state bag (TurnState's
// to_shared_dict snapshot, spec §4.5), and the current user id if identity
// has already been established this task.
type ParseContext struct {
	Args        map[string]any
	RawArgs     map[string]any
	Shared      map[string]any
	CurrentUser string

	// ValidateEmployee is used only by the respond parser to drop
	// employee links the back-office explicitly reports as not-found.
	ValidateEmployee links.EmployeeValidator
}

// Parser converts normalized args into a TypedAction, or returns a
// *ParseError explaining what the model did wrong.
type Parser func(ctx *ParseContext) (TypedAction, *ParseError)

// ParseError is returned instead of thrown so the Runner can report it back
// to the model as feedback text rather than aborting the turn (spec §4.2).
type ParseError struct {
	Message string
	Tool    string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Tool != "" {
		return fmt.Sprintf("Tool '%s': %s", e.Tool, e.Message)
	}
	return e.Message
}

// registry is the static table keyed by canonical tool name, assembled once
// at package init (spec §9 "Tool registry by name" — replaces
// decorator-based runtime registration with a static table built at
// startup and never mutated thereafter).
var registry = map[Name]Parser{}

// register adds parser under every alias in names, canonicalizing each the
// same way Canonicalize does. Called only from the init function in
// parsers.go, so the table is fully built before any goroutine can read it.
func register(parser Parser, names ...string) {
	for _, n := range names {
		registry[Canonicalize(n)] = parser
	}
}

// GetParser returns the parser registered for a tool name, or nil if none
// matches after canonicalization.
func GetParser(rawToolName string) Parser {
	return registry[Canonicalize(rawToolName)]
}

// ListTools returns every registered canonical tool name, sorted.
func ListTools() []Name {
	out := make([]Name, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
