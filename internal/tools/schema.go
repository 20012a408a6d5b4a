package tools

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaRegistry holds one compiled JSON Schema per mutation tool, checked
// against the model's raw args before the per-tool parser ever runs (same
// compile-once-validate-many shape as the tool-call payload check in the
// registry service this was grounded on).
var schemaRegistry = map[Name]*jsonschema.Schema{}

// registerSchema compiles schemaJSON and stores it under name. Called only
// from this file's init function, so it runs before any goroutine can reach
// ValidateArgs; a malformed literal schema is a programming error and panics
// at init, the same way a bad regexp.MustCompile would.
func registerSchema(name Name, schemaJSON string) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		panic(fmt.Sprintf("tools: invalid schema literal for %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	resource := string(name) + ".json"
	if err := c.AddResource(resource, doc); err != nil {
		panic(fmt.Sprintf("tools: add schema resource for %s: %v", name, err))
	}
	schema, err := c.Compile(resource)
	if err != nil {
		panic(fmt.Sprintf("tools: compile schema for %s: %v", name, err))
	}
	schemaRegistry[name] = schema
}

// ValidateArgs checks raw args against the tool's registered schema, if it
// has one. Tools without a schema (most reads) skip this check entirely;
// only the mutation tools have enough of a fixed shape to be worth encoding
// here instead of leaving the per-tool parser to report the same defect
// field by field.
func ValidateArgs(name Name, args map[string]any) error {
	schema, ok := schemaRegistry[name]
	if !ok {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := schema.Validate(args); err != nil {
		return fmt.Errorf("args for '%s': %w", name, err)
	}
	return nil
}

func init() {
	registerSchema(TimeLog, `{
		"type": "object",
		"required": ["employee", "date", "hours"],
		"properties": {
			"employee": {"type": "string", "minLength": 1},
			"project": {"type": "string", "minLength": 1},
			"date": {"type": "string", "minLength": 1},
			"hours": {"type": "number", "minimum": 0}
		}
	}`)

	registerSchema(TimeUpdate, `{
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "string", "minLength": 1}
		}
	}`)

	registerSchema(EmployeesUpdate, `{
		"type": "object",
		"required": ["employee"],
		"properties": {
			"employee": {"type": "string", "minLength": 1}
		}
	}`)

	registerSchema(ProjectsStatusUpdate, `{
		"type": "object",
		"required": ["id", "status"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"status": {"type": "string", "minLength": 1}
		}
	}`)

	registerSchema(ProjectsTeamUpdate, `{
		"type": "object",
		"required": ["id", "team"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"team": {"type": "array"}
		}
	}`)

	registerSchema(WikiUpdate, `{
		"type": "object",
		"required": ["file"],
		"properties": {
			"file": {"type": "string", "minLength": 1}
		}
	}`)
}
