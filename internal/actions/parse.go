package actions

import (
	"github.com/medvedikur/erc3-mine-sub001/internal/links"
	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/tools"
)

// Input bundles everything Parse needs beyond the raw request: the current
// user (for context injection), a shared-state snapshot (TurnState's
// to_shared_dict, spec §4.5) the per-tool parsers may read, and an optional
// employee-existence check for the respond tool's link validation.
type Input struct {
	CurrentUser      string
	Shared           map[string]any
	ValidateEmployee links.EmployeeValidator
}

// Result is the outcome of parsing one raw action: exactly one of Action,
// Err or Skipped is meaningful.
type Result struct {
	Action  tools.TypedAction
	Err     *tools.ParseError
	Skipped bool
}

// Parse runs the full C2 pipeline against one raw action request: canonical
// name resolution, flattening, alias normalization, context injection,
// placeholder detection, and dispatch to the tool's registered parser.
func Parse(req model.ActionRequest, in Input) Result {
	canonical := Canonicalize(req.Tool)
	parser := tools.GetParser(string(canonical))
	if parser == nil {
		return Result{Err: &tools.ParseError{
			Message: "Tool '" + req.Tool + "' does not exist",
			Tool:    req.Tool,
		}}
	}

	flat := Flatten(req.Tool, map[string]any{"tool": req.Tool, "args": req.Args})
	flat = ApplyAliases(flat)
	flat = InjectContext(flat, in.CurrentUser)

	if msg := DetectPlaceholder(flat); msg != "" {
		return Result{Err: &tools.ParseError{Message: msg, Tool: req.Tool}}
	}

	if err := tools.ValidateArgs(canonical, flat); err != nil {
		return Result{Err: &tools.ParseError{Message: err.Error(), Tool: req.Tool}}
	}

	ctx := &tools.ParseContext{
		Args:             flat,
		RawArgs:          req.Args,
		Shared:           in.Shared,
		CurrentUser:      in.CurrentUser,
		ValidateEmployee: in.ValidateEmployee,
	}

	action, perr := parser(ctx)
	if perr != nil {
		return Result{Err: perr}
	}
	if action == nil {
		return Result{Skipped: true}
	}
	return Result{Action: action}
}
