// Package tools defines the canonical tool surface the back-office exposes
// (spec §6.1): the typed request structs, the name-canonicalization rule,
// and the static parser registry keyed by canonical name (spec §9 "Tool
// registry by name" — a static table assembled once at startup instead of
// decorator-based runtime registration).
package tools

import "strings"

// Name is a strong string type for a canonical (already-normalized) tool
// name, distinguishing it from a raw, possibly-aliased name the model sent.
type Name string

// Canonicalize lowercases and strips `_`, `-`, `/` so that "employees_get",
// "Employees-Get" and "employees/get" all map to the same registry key.
func Canonicalize(raw string) Name {
	s := strings.ToLower(raw)
	s = strings.NewReplacer("_", "", "-", "", "/", "").Replace(s)
	return Name(s)
}

// Known canonical tool names, spec §6.1.
const (
	WhoAmI = Name("whoami")

	EmployeesList   = Name("employeeslist")
	EmployeesSearch = Name("employeessearch")
	EmployeesGet    = Name("employeesget")
	EmployeesUpdate = Name("employeesupdate")

	WikiList   = Name("wikilist")
	WikiLoad   = Name("wikiload")
	WikiSearch = Name("wikisearch")
	WikiUpdate = Name("wikiupdate")

	CustomersList   = Name("customerslist")
	CustomersGet    = Name("customersget")
	CustomersSearch = Name("customerssearch")

	ProjectsList         = Name("projectslist")
	ProjectsGet          = Name("projectsget")
	ProjectsSearch       = Name("projectssearch")
	ProjectsTeamUpdate   = Name("projectsteamupdate")
	ProjectsStatusUpdate = Name("projectsstatusupdate")

	TimeLog              = Name("timelog")
	TimeGet              = Name("timeget")
	TimeSearch           = Name("timesearch")
	TimeUpdate           = Name("timeupdate")
	TimeSummaryByEmp     = Name("timesummarybyemployee")
	TimeSummaryByProject = Name("timesummarybyproject")

	Respond = Name("respond")
)

// MutationToolNames is the set of canonical tool names whose successful
// execution is a mutation (spec GLOSSARY "Mutation").
var MutationToolNames = map[Name]bool{
	ProjectsTeamUpdate:   true,
	ProjectsStatusUpdate: true,
	EmployeesUpdate:      true,
	TimeLog:              true,
	TimeUpdate:           true,
	WikiUpdate:           true,
}
