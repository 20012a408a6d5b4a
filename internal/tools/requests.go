package tools

import "github.com/medvedikur/erc3-mine-sub001/internal/model"

// TypedAction is the discriminated variant over the fixed tool set (spec §3
// "TypedAction", §9 "Discriminated request types"). Every concrete request
// type below implements it; ToolName returns the canonical name so
// mutation/search classification can be a static table lookup instead of an
// isinstance cascade.
type TypedAction interface {
	ToolName() Name
}

// Req_WhoAmI retrieves the current user's identity and simulated date.
type Req_WhoAmI struct{}

func (Req_WhoAmI) ToolName() Name { return WhoAmI }

// Req_EmployeesList is a paginated listing request.
type Req_EmployeesList struct {
	Offset int
	Limit  int
}

func (Req_EmployeesList) ToolName() Name { return EmployeesList }

// Req_EmployeesSearch searches employees by free-text query and filters.
type Req_EmployeesSearch struct {
	Query      string
	Location   string
	Department string
	Manager    string
	Skills     []string
	Wills      []string
	Offset     int
	Limit      int
}

func (Req_EmployeesSearch) ToolName() Name { return EmployeesSearch }

// Req_EmployeesGet fetches one employee by id.
type Req_EmployeesGet struct {
	ID string
}

func (Req_EmployeesGet) ToolName() Name { return EmployeesGet }

// SkillEntry is a {name, level} pair after coercion from any of the
// accepted input shapes (spec §4.2 "Skill/will updates").
type SkillEntry struct {
	Name  string
	Level int
}

// Req_EmployeesUpdate mutates an employee's profile.
type Req_EmployeesUpdate struct {
	Employee   string
	Salary     *float64
	Location   string
	Department string
	Notes      string
	Skills     []SkillEntry
	Wills      []SkillEntry
	ChangedBy  string
}

func (Req_EmployeesUpdate) ToolName() Name { return EmployeesUpdate }

// Req_WikiList lists all wiki pages.
type Req_WikiList struct{}

func (Req_WikiList) ToolName() Name { return WikiList }

// Req_WikiLoad fetches one wiki page's content.
type Req_WikiLoad struct {
	File string
}

func (Req_WikiLoad) ToolName() Name { return WikiLoad }

// Req_WikiSearch searches wiki pages by regex.
type Req_WikiSearch struct {
	QueryRegex string
}

func (Req_WikiSearch) ToolName() Name { return WikiSearch }

// Req_WikiUpdate replaces a wiki page's content. Empty Content marks the
// page deleted (spec §4.8 "wiki update with empty content").
type Req_WikiUpdate struct {
	File      string
	Content   string
	ChangedBy string
}

func (Req_WikiUpdate) ToolName() Name { return WikiUpdate }

// Req_CustomersList lists all customers.
type Req_CustomersList struct{}

func (Req_CustomersList) ToolName() Name { return CustomersList }

// Req_CustomersGet fetches one customer by id.
type Req_CustomersGet struct {
	ID string
}

func (Req_CustomersGet) ToolName() Name { return CustomersGet }

// Req_CustomersSearch searches customers by filters.
type Req_CustomersSearch struct {
	Query           string
	Locations       []string
	DealPhase       []string
	AccountManagers []string
}

func (Req_CustomersSearch) ToolName() Name { return CustomersSearch }

// Req_ProjectsList lists all projects.
type Req_ProjectsList struct{}

func (Req_ProjectsList) ToolName() Name { return ProjectsList }

// Req_ProjectsGet fetches one project by id.
type Req_ProjectsGet struct {
	ID string
}

func (Req_ProjectsGet) ToolName() Name { return ProjectsGet }

// TeamFilter narrows a project search to team membership.
type TeamFilter struct {
	EmployeeID  string
	Role        string
	MinTimeSlice float64
}

// Req_ProjectsSearch searches projects by filters.
type Req_ProjectsSearch struct {
	Query           string
	CustomerID      string
	Status          []string
	Team            *TeamFilter
	IncludeArchived bool
	Offset          int
	Limit           int
}

func (Req_ProjectsSearch) ToolName() Name { return ProjectsSearch }

// TeamMember is one entry of a team-update request, role already normalized
// to the closed set (spec §4.2 "Team updates").
type TeamMember struct {
	Employee  string
	Role      string
	TimeSlice float64
}

// Req_ProjectsTeamUpdate replaces a project's team roster.
type Req_ProjectsTeamUpdate struct {
	ID        string
	Team      []TeamMember
	ChangedBy string
}

func (Req_ProjectsTeamUpdate) ToolName() Name { return ProjectsTeamUpdate }

// Req_ProjectsStatusUpdate changes a project's lifecycle status.
type Req_ProjectsStatusUpdate struct {
	ID        string
	Status    string
	ChangedBy string
}

func (Req_ProjectsStatusUpdate) ToolName() Name { return ProjectsStatusUpdate }

// Req_LogTimeEntry logs a new time entry.
type Req_LogTimeEntry struct {
	Employee     string
	Project      string
	Customer     string
	Date         string
	Hours        float64
	WorkCategory string
	Notes        string
	Billable     bool
	Status       string
	LoggedBy     string
}

func (Req_LogTimeEntry) ToolName() Name { return TimeLog }

// Req_TimeGet fetches one time entry by id.
type Req_TimeGet struct {
	ID string
}

func (Req_TimeGet) ToolName() Name { return TimeGet }

// Req_SearchTimeEntries searches time entries by filters.
type Req_SearchTimeEntries struct {
	Employee string
	Project  string
	DateFrom string
	DateTo   string
	Billable *bool
	Offset   int
	Limit    int
}

func (Req_SearchTimeEntries) ToolName() Name { return TimeSearch }

// Req_UpdateTimeEntry mutates an existing time entry.
type Req_UpdateTimeEntry struct {
	ID           string
	Hours        *float64
	WorkCategory string
	Notes        string
	Status       string
	ChangedBy    string
}

func (Req_UpdateTimeEntry) ToolName() Name { return TimeUpdate }

// Req_TimeSummaryByEmployee summarizes logged time grouped by employee.
type Req_TimeSummaryByEmployee struct {
	DateFrom  string
	DateTo    string
	Employees []string
	Projects  []string
	Customers []string
	Billable  *bool
}

func (Req_TimeSummaryByEmployee) ToolName() Name { return TimeSummaryByEmp }

// Req_TimeSummaryByProject summarizes logged time grouped by project.
type Req_TimeSummaryByProject struct {
	DateFrom  string
	DateTo    string
	Employees []string
	Projects  []string
	Customers []string
	Billable  *bool
}

func (Req_TimeSummaryByProject) ToolName() Name { return TimeSummaryByProject }

// Outcome is the closed set of terminal response outcomes (spec §6.1).
type Outcome string

const (
	OutcomeOKAnswer               Outcome = "ok_answer"
	OutcomeOKNotFound             Outcome = "ok_not_found"
	OutcomeDeniedSecurity         Outcome = "denied_security"
	OutcomeNoneClarification      Outcome = "none_clarification_needed"
	OutcomeNoneUnsupported        Outcome = "none_unsupported"
	OutcomeErrorInternal          Outcome = "error_internal"
)

// Req_ProvideAgentResponse is the terminal "respond" action.
type Req_ProvideAgentResponse struct {
	Message          string
	Outcome          Outcome
	Links            []model.Link
	QuerySpecificity string
	DenialBasis      string
}

func (Req_ProvideAgentResponse) ToolName() Name { return Respond }
