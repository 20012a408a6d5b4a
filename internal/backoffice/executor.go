package backoffice

import (
	"context"
	"fmt"
	"strings"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/tools"
	"github.com/medvedikur/erc3-mine-sub001/internal/wiki"
)

// Executor dispatches a typed action to the back-office and turns its
// response into an ActionOutcome: result lines for the turn's feedback
// message, and shared-state updates the caller may fold back into
// TurnState via Sync (spec §4.8 step 5).
type Executor struct {
	client *Client
	wiki   *wiki.Manager
}

// NewExecutor wraps one worker's Client for dispatch. wikiMgr may be nil,
// in which case wiki_update submits content verbatim with no
// Unicode-equivalence substitution.
func NewExecutor(client *Client, wikiMgr *wiki.Manager) *Executor {
	return &Executor{client: client, wiki: wikiMgr}
}

// Execute runs one typed action and reports its outcome. It never returns
// a Go error for ordinary back-office failures — those become "FAILED"/
// "ERROR" result lines per spec §4.8 step 6, so the caller's error
// detection stays a string scan exactly like the original.
func (e *Executor) Execute(ctx context.Context, action tools.TypedAction) model.ActionOutcome {
	switch a := action.(type) {
	case tools.Req_WhoAmI:
		return e.whoAmI(ctx)
	case tools.Req_EmployeesList:
		return e.employeesList(ctx, a)
	case tools.Req_EmployeesSearch:
		return e.employeesSearch(ctx, a)
	case tools.Req_EmployeesGet:
		return e.employeesGet(ctx, a)
	case tools.Req_EmployeesUpdate:
		return e.employeesUpdate(ctx, a)
	case tools.Req_WikiList:
		return e.wikiList(ctx)
	case tools.Req_WikiLoad:
		return e.wikiLoad(ctx, a)
	case tools.Req_WikiSearch:
		return e.wikiSearch(ctx, a)
	case tools.Req_WikiUpdate:
		return e.wikiUpdate(ctx, a)
	case tools.Req_CustomersList:
		return e.customersList(ctx)
	case tools.Req_CustomersGet:
		return e.customersGet(ctx, a)
	case tools.Req_CustomersSearch:
		return e.customersSearch(ctx, a)
	case tools.Req_ProjectsList:
		return e.projectsList(ctx)
	case tools.Req_ProjectsGet:
		return e.projectsGet(ctx, a)
	case tools.Req_ProjectsSearch:
		return e.projectsSearch(ctx, a)
	case tools.Req_ProjectsTeamUpdate:
		return e.projectsTeamUpdate(ctx, a)
	case tools.Req_ProjectsStatusUpdate:
		return e.projectsStatusUpdate(ctx, a)
	case tools.Req_LogTimeEntry:
		return e.logTimeEntry(ctx, a)
	case tools.Req_TimeGet:
		return e.timeGet(ctx, a)
	case tools.Req_SearchTimeEntries:
		return e.searchTimeEntries(ctx, a)
	case tools.Req_UpdateTimeEntry:
		return e.updateTimeEntry(ctx, a)
	case tools.Req_TimeSummaryByEmployee:
		return e.timeSummaryByEmployee(ctx, a)
	case tools.Req_TimeSummaryByProject:
		return e.timeSummaryByProject(ctx, a)
	case tools.Req_ProvideAgentResponse:
		return e.respond(a)
	default:
		return model.ActionOutcome{Results: []string{fmt.Sprintf("ERROR: unhandled action type %T", action)}}
	}
}

// failLine formats a dispatch failure as a result line. When err is one of
// this package's classified Errors, it is routed through ToToolError first
// so the taxonomy (validation vs not-found vs transport) rides along in the
// feedback the model sees, the same chain parser/LLM failures wrap through.
func failLine(tool string, err error) string {
	if be, ok := err.(*Error); ok {
		te := be.ToToolError()
		return fmt.Sprintf("%s FAILED [%s]: %s", tool, te.Kind, te.Message)
	}
	return fmt.Sprintf("%s FAILED: %s", tool, err.Error())
}

// --- identity -----------------------------------------------------------

type identityResponse struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Today      string `json:"today"`
	WikiHash   string `json:"wiki_hash"`
}

func (e *Executor) whoAmI(ctx context.Context) model.ActionOutcome {
	var resp identityResponse
	if err := e.client.call(ctx, "GET", "/who_am_i", nil, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("who_am_i", err)}}
	}
	if e.wiki != nil && resp.WikiHash != "" {
		e.wiki.Sync(resp.WikiHash, func() (map[string]string, error) {
			return e.fetchWikiPages(ctx)
		})
	}
	return model.ActionOutcome{
		Results: []string{fmt.Sprintf("who_am_i: %s (%s) in %s/%s", resp.Name, resp.UserID, resp.Department, resp.Location)},
		SharedUpdates: map[string]any{
			"identity": model.Identity{
				UserID: resp.UserID, Name: resp.Name, Email: resp.Email,
				Department: resp.Department, Location: resp.Location, Today: resp.Today, WikiHash: resp.WikiHash,
			},
		},
	}
}

// --- employees ------------------------------------------------------------

type employeesListResponse struct {
	Employees  []map[string]any `json:"employees"`
	NextOffset *int             `json:"next_offset"`
}

func (e *Executor) employeesList(ctx context.Context, a tools.Req_EmployeesList) model.ActionOutcome {
	var resp employeesListResponse
	err := e.client.call(ctx, "POST", "/employees_list", map[string]any{"offset": a.Offset, "limit": a.Limit}, &resp)
	if err != nil {
		return model.ActionOutcome{Results: []string{failLine("employees_list", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("employees_list: %d employee(s)", len(resp.Employees))}}
}

func (e *Executor) employeesSearch(ctx context.Context, a tools.Req_EmployeesSearch) model.ActionOutcome {
	var resp employeesListResponse
	body := map[string]any{
		"query": a.Query, "location": a.Location, "department": a.Department, "manager": a.Manager,
		"skills": a.Skills, "wills": a.Wills, "offset": a.Offset, "limit": a.Limit,
	}
	if err := e.client.call(ctx, "POST", "/employees_search", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("employees_search", err)}}
	}
	var ids []string
	for _, emp := range resp.Employees {
		if id, ok := emp["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return model.ActionOutcome{
		Results:       []string{fmt.Sprintf("employees_search: %d match(es)", len(resp.Employees))},
		SharedUpdates: map[string]any{"employees_search_ids": ids},
	}
}

func (e *Executor) employeesGet(ctx context.Context, a tools.Req_EmployeesGet) model.ActionOutcome {
	var resp map[string]any
	if err := e.client.call(ctx, "GET", "/employees_get?id="+a.ID, nil, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("employees_get", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("employees_get(%s): %v", a.ID, resp)}}
}

func (e *Executor) employeesUpdate(ctx context.Context, a tools.Req_EmployeesUpdate) model.ActionOutcome {
	body := map[string]any{
		"employee": a.Employee, "salary": a.Salary, "location": a.Location,
		"department": a.Department, "notes": a.Notes, "changed_by": a.ChangedBy,
	}
	if len(a.Skills) > 0 {
		body["skills"] = a.Skills
	}
	if len(a.Wills) > 0 {
		body["wills"] = a.Wills
	}
	var resp map[string]any
	if err := e.client.call(ctx, "POST", "/employees_update", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("employees_update", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("employees_update(%s): ok", a.Employee)}}
}

// --- wiki -------------------------------------------------------------

type wikiPage struct {
	File    string `json:"file"`
	Content string `json:"content"`
}

func (e *Executor) wikiList(ctx context.Context) model.ActionOutcome {
	var resp struct {
		Pages []string `json:"pages"`
	}
	if err := e.client.call(ctx, "GET", "/wiki_list", nil, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("wiki_list", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("wiki_list: %s", strings.Join(resp.Pages, ", "))}}
}

func (e *Executor) wikiLoad(ctx context.Context, a tools.Req_WikiLoad) model.ActionOutcome {
	var resp wikiPage
	if err := e.client.call(ctx, "GET", "/wiki_load?file="+a.File, nil, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("wiki_load", err)}}
	}
	return model.ActionOutcome{
		Results: []string{fmt.Sprintf("wiki_load(%s): %d bytes", a.File, len(resp.Content))},
		SharedUpdates: map[string]any{
			"loaded_wiki_content": map[string]string{a.File: resp.Content},
		},
	}
}

// fetchWikiPages loads every page for the identity's current wiki version,
// feeding the wiki.Manager's cache on sync (spec §5 "Wiki disk cache" is a
// miss-then-populate cache; this is the populate path).
func (e *Executor) fetchWikiPages(ctx context.Context) (map[string]string, error) {
	var listResp struct {
		Pages []string `json:"pages"`
	}
	if err := e.client.call(ctx, "GET", "/wiki_list", nil, &listResp); err != nil {
		return nil, err
	}
	pages := make(map[string]string, len(listResp.Pages))
	for _, name := range listResp.Pages {
		var page wikiPage
		if err := e.client.call(ctx, "GET", "/wiki_load?file="+name, nil, &page); err != nil {
			return nil, err
		}
		pages[name] = page.Content
	}
	return pages, nil
}

func (e *Executor) wikiSearch(ctx context.Context, a tools.Req_WikiSearch) model.ActionOutcome {
	var resp struct {
		Pages []string `json:"pages"`
	}
	if err := e.client.call(ctx, "POST", "/wiki_search", map[string]any{"query_regex": a.QueryRegex}, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("wiki_search", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("wiki_search: %d page(s) matched", len(resp.Pages))}}
}

func (e *Executor) wikiUpdate(ctx context.Context, a tools.Req_WikiUpdate) model.ActionOutcome {
	content := strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(a.Content)
	if e.wiki != nil {
		content = e.wiki.ResolveUpdateContent(a.File, content)
	}

	var resp map[string]any
	err := e.client.call(ctx, "POST", "/wiki_update",
		map[string]any{"file": a.File, "content": content, "changed_by": a.ChangedBy}, &resp)
	if err != nil {
		return model.ActionOutcome{Results: []string{failLine("wiki_update", err)}}
	}
	updates := map[string]any{}
	if content == "" {
		updates["deleted_wiki_file"] = a.File
	}
	return model.ActionOutcome{
		Results:       []string{fmt.Sprintf("wiki_update(%s): ok", a.File)},
		SharedUpdates: updates,
	}
}

// --- customers ----------------------------------------------------------

func (e *Executor) customersList(ctx context.Context) model.ActionOutcome {
	var resp struct {
		Customers []map[string]any `json:"customers"`
	}
	if err := e.client.call(ctx, "GET", "/customers_list", nil, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("customers_list", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("customers_list: %d customer(s)", len(resp.Customers))}}
}

func (e *Executor) customersGet(ctx context.Context, a tools.Req_CustomersGet) model.ActionOutcome {
	var resp map[string]any
	if err := e.client.call(ctx, "GET", "/customers_get?id="+a.ID, nil, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("customers_get", err)}}
	}
	updates := map[string]any{}
	if name, ok := resp["contact_name"].(string); ok {
		email, _ := resp["contact_email"].(string)
		updates["customer_contact"] = map[string]any{"id": a.ID, "name": name, "email": email}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("customers_get(%s): %v", a.ID, resp)}, SharedUpdates: updates}
}

func (e *Executor) customersSearch(ctx context.Context, a tools.Req_CustomersSearch) model.ActionOutcome {
	var resp struct {
		Customers []map[string]any `json:"customers"`
	}
	body := map[string]any{
		"query": a.Query, "locations": a.Locations, "deal_phase": a.DealPhase, "account_managers": a.AccountManagers,
	}
	if err := e.client.call(ctx, "POST", "/customers_search", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("customers_search", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("customers_search: %d match(es)", len(resp.Customers))}}
}

// --- projects -------------------------------------------------------------

func (e *Executor) projectsList(ctx context.Context) model.ActionOutcome {
	var resp struct {
		Projects []map[string]any `json:"projects"`
	}
	if err := e.client.call(ctx, "GET", "/projects_list", nil, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("projects_list", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("projects_list: %d project(s)", len(resp.Projects))}}
}

func (e *Executor) projectsGet(ctx context.Context, a tools.Req_ProjectsGet) model.ActionOutcome {
	var resp map[string]any
	if err := e.client.call(ctx, "GET", "/projects_get?id="+a.ID, nil, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("projects_get", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("projects_get(%s): %v", a.ID, resp)}}
}

func (e *Executor) projectsSearch(ctx context.Context, a tools.Req_ProjectsSearch) model.ActionOutcome {
	var resp struct {
		Projects []map[string]any `json:"projects"`
	}
	body := map[string]any{
		"query": a.Query, "customer_id": a.CustomerID, "status": a.Status,
		"include_archived": a.IncludeArchived, "offset": a.Offset, "limit": a.Limit,
	}
	if a.Team != nil {
		body["team"] = map[string]any{
			"employee_id": a.Team.EmployeeID, "role": a.Team.Role, "min_time_slice": a.Team.MinTimeSlice,
		}
	}
	if err := e.client.call(ctx, "POST", "/projects_search", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("projects_search", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("projects_search: %d match(es)", len(resp.Projects))}}
}

func (e *Executor) projectsTeamUpdate(ctx context.Context, a tools.Req_ProjectsTeamUpdate) model.ActionOutcome {
	team := make([]map[string]any, 0, len(a.Team))
	for _, m := range a.Team {
		team = append(team, map[string]any{"employee": m.Employee, "role": m.Role, "time_slice": m.TimeSlice})
	}
	var resp map[string]any
	body := map[string]any{"id": a.ID, "team": team, "changed_by": a.ChangedBy}
	if err := e.client.call(ctx, "POST", "/projects_team_update", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("projects_team_update", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("projects_team_update(%s): %d member(s)", a.ID, len(a.Team))}}
}

func (e *Executor) projectsStatusUpdate(ctx context.Context, a tools.Req_ProjectsStatusUpdate) model.ActionOutcome {
	var resp map[string]any
	body := map[string]any{"id": a.ID, "status": a.Status, "changed_by": a.ChangedBy}
	if err := e.client.call(ctx, "POST", "/projects_status_update", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("projects_status_update", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("projects_status_update(%s): %s", a.ID, a.Status)}}
}

// --- time -------------------------------------------------------------

func (e *Executor) logTimeEntry(ctx context.Context, a tools.Req_LogTimeEntry) model.ActionOutcome {
	body := map[string]any{
		"employee": a.Employee, "project": a.Project, "customer": a.Customer, "date": a.Date,
		"hours": a.Hours, "work_category": a.WorkCategory, "notes": a.Notes,
		"billable": a.Billable, "status": a.Status, "logged_by": a.LoggedBy,
	}
	var resp map[string]any
	if err := e.client.call(ctx, "POST", "/time_log", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("time_log", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("time_log: logged %.2fh for %s on %s", a.Hours, a.Employee, a.Project)}}
}

func (e *Executor) timeGet(ctx context.Context, a tools.Req_TimeGet) model.ActionOutcome {
	var resp map[string]any
	if err := e.client.call(ctx, "GET", "/time_get?id="+a.ID, nil, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("time_get", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("time_get(%s): %v", a.ID, resp)}}
}

func (e *Executor) searchTimeEntries(ctx context.Context, a tools.Req_SearchTimeEntries) model.ActionOutcome {
	var resp struct {
		Entries []map[string]any `json:"entries"`
	}
	body := map[string]any{
		"employee": a.Employee, "project": a.Project, "date_from": a.DateFrom, "date_to": a.DateTo,
		"billable": a.Billable, "offset": a.Offset, "limit": a.Limit,
	}
	if err := e.client.call(ctx, "POST", "/time_search", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("time_search", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("time_search: %d entries", len(resp.Entries))}}
}

func (e *Executor) updateTimeEntry(ctx context.Context, a tools.Req_UpdateTimeEntry) model.ActionOutcome {
	body := map[string]any{
		"id": a.ID, "hours": a.Hours, "work_category": a.WorkCategory,
		"notes": a.Notes, "status": a.Status, "changed_by": a.ChangedBy,
	}
	var resp struct {
		Employee string `json:"employee"`
		Project  string `json:"project"`
	}
	if err := e.client.call(ctx, "POST", "/time_update", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("time_update", err)}}
	}
	var entities []model.Link
	if resp.Employee != "" {
		entities = append(entities, model.Link{ID: resp.Employee, Kind: model.LinkEmployee})
	}
	if resp.Project != "" {
		entities = append(entities, model.Link{ID: resp.Project, Kind: model.LinkProject})
	}
	return model.ActionOutcome{
		Results:       []string{fmt.Sprintf("time_update(%s): ok", a.ID)},
		SharedUpdates: map[string]any{"time_update_entities": entities},
	}
}

func (e *Executor) timeSummaryByEmployee(ctx context.Context, a tools.Req_TimeSummaryByEmployee) model.ActionOutcome {
	var resp map[string]any
	body := map[string]any{
		"date_from": a.DateFrom, "date_to": a.DateTo, "employees": a.Employees,
		"projects": a.Projects, "customers": a.Customers, "billable": a.Billable,
	}
	if err := e.client.call(ctx, "POST", "/time_summary_by_employee", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("time_summary_by_employee", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("time_summary_by_employee: %v", resp)}}
}

func (e *Executor) timeSummaryByProject(ctx context.Context, a tools.Req_TimeSummaryByProject) model.ActionOutcome {
	var resp map[string]any
	body := map[string]any{
		"date_from": a.DateFrom, "date_to": a.DateTo, "employees": a.Employees,
		"projects": a.Projects, "customers": a.Customers, "billable": a.Billable,
	}
	if err := e.client.call(ctx, "POST", "/time_summary_by_project", body, &resp); err != nil {
		return model.ActionOutcome{Results: []string{failLine("time_summary_by_project", err)}}
	}
	return model.ActionOutcome{Results: []string{fmt.Sprintf("time_summary_by_project: %v", resp)}}
}

// --- terminal response ---------------------------------------------------

func (e *Executor) respond(a tools.Req_ProvideAgentResponse) model.ActionOutcome {
	return model.ActionOutcome{
		Results:       []string{fmt.Sprintf("respond(%s): %s", a.Outcome, a.Message)},
		StopExecution: true,
		SharedUpdates: map[string]any{"final_response": a},
	}
}
