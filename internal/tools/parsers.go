package tools

import "strings"

func init() {
	register(parseWhoAmI, "whoami", "me", "identity")
	register(parseEmployeesList, "employees_list")
	register(parseEmployeesSearch, "employees_search")
	register(parseEmployeesGet, "employees_get")
	register(parseEmployeesUpdate, "employees_update")

	register(parseWikiList, "wiki_list")
	register(parseWikiLoad, "wiki_load")
	register(parseWikiSearch, "wiki_search")
	register(parseWikiUpdate, "wiki_update")

	register(parseCustomersList, "customers_list")
	register(parseCustomersGet, "customers_get")
	register(parseCustomersSearch, "customers_search")

	register(parseProjectsList, "projects_list")
	register(parseProjectsGet, "projects_get")
	register(parseProjectsSearch, "projects_search")
	register(parseProjectsTeamUpdate, "projects_team_update")
	register(parseProjectsStatusUpdate, "projects_status_update")

	register(parseTimeLog, "time_log")
	register(parseTimeGetOrSearch, "time_get")
	register(parseTimeSearch, "time_search")
	register(parseTimeUpdate, "time_update")
	register(parseTimeSummaryByEmployee, "time_summary_by_employee")
	register(parseTimeSummaryByProject, "time_summary_by_project")

	register(parseRespond, "respond", "answer", "reply")
}

const defaultLimit = 20

func parseWhoAmI(ctx *ParseContext) (TypedAction, *ParseError) {
	return Req_WhoAmI{}, nil
}

func parseEmployeesList(ctx *ParseContext) (TypedAction, *ParseError) {
	limit := defaultInt(mustInt(ctx.Args, "limit"), defaultLimit)
	return Req_EmployeesList{Offset: resolveOffset(ctx.Args, limit), Limit: limit}, nil
}

func mustInt(args map[string]any, key string) int {
	v, _ := getInt(args, key)
	return v
}

func parseEmployeesSearch(ctx *ParseContext) (TypedAction, *ParseError) {
	limit := defaultInt(mustInt(ctx.Args, "limit"), defaultLimit)
	return Req_EmployeesSearch{
		Query:      getString(ctx.Args, "query", "query_regex"),
		Location:   getString(ctx.Args, "location"),
		Department: getString(ctx.Args, "department"),
		Manager:    getString(ctx.Args, "manager"),
		Skills:     getStringList(ctx.Args, "skills"),
		Wills:      getStringList(ctx.Args, "wills"),
		Offset:     resolveOffset(ctx.Args, limit),
		Limit:      limit,
	}, nil
}

func parseEmployeesGet(ctx *ParseContext) (TypedAction, *ParseError) {
	id := getString(ctx.Args, "id", "employee")
	if id == "" {
		return nil, &ParseError{Message: "employees_get requires 'id'", Tool: "employees_get"}
	}
	return Req_EmployeesGet{ID: id}, nil
}

// coerceSkills accepts a list of strings, a list of {name, level} objects,
// or a map name->level, defaulting level to 3 (spec §4.2 "Skill/will
// updates"). Operator-style values like {"$add": N} are rejected.
func coerceSkills(raw any, field string) ([]SkillEntry, *ParseError) {
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case map[string]any:
		out := make([]SkillEntry, 0, len(v))
		for name, lvl := range v {
			if _, bad := lvl.(map[string]any); bad {
				return nil, &ParseError{Message: "field '" + field + "' must carry absolute levels, not operators like {\"$add\": N}"}
			}
			level := 3
			if f, ok := toFloat(lvl); ok {
				level = int(f)
			}
			out = append(out, SkillEntry{Name: name, Level: level})
		}
		return out, nil
	case []any:
		out := make([]SkillEntry, 0, len(v))
		for _, item := range v {
			switch it := item.(type) {
			case string:
				out = append(out, SkillEntry{Name: it, Level: 3})
			case map[string]any:
				if _, bad := it["$add"]; bad {
					return nil, &ParseError{Message: "field '" + field + "' must carry absolute levels, not operators like {\"$add\": N}"}
				}
				name, _ := it["name"].(string)
				level := 3
				if f, ok := toFloat(it["level"]); ok {
					level = int(f)
				}
				out = append(out, SkillEntry{Name: name, Level: level})
			}
		}
		return out, nil
	}
	return nil, nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

func parseEmployeesUpdate(ctx *ParseContext) (TypedAction, *ParseError) {
	employee := getString(ctx.Args, "employee")
	if employee == "" {
		return nil, &ParseError{Message: "employees_update requires 'employee'", Tool: "employees_update"}
	}
	req := Req_EmployeesUpdate{
		Employee:   employee,
		Location:   getString(ctx.Args, "location"),
		Department: getString(ctx.Args, "department"),
		Notes:      getString(ctx.Args, "notes"),
		ChangedBy:  getString(ctx.Args, "changed_by"),
	}
	if f, ok := getFloat(ctx.Args, "salary"); ok {
		req.Salary = &f
	}
	skills, perr := coerceSkills(ctx.Args["skills"], "skills")
	if perr != nil {
		return nil, perr
	}
	req.Skills = skills
	wills, perr := coerceSkills(ctx.Args["wills"], "wills")
	if perr != nil {
		return nil, perr
	}
	req.Wills = wills
	return req, nil
}

func parseWikiList(ctx *ParseContext) (TypedAction, *ParseError) { return Req_WikiList{}, nil }

func parseWikiLoad(ctx *ParseContext) (TypedAction, *ParseError) {
	file := getString(ctx.Args, "file")
	if file == "" {
		return nil, &ParseError{Message: "wiki_load requires 'file'", Tool: "wiki_load"}
	}
	return Req_WikiLoad{File: file}, nil
}

func parseWikiSearch(ctx *ParseContext) (TypedAction, *ParseError) {
	return Req_WikiSearch{QueryRegex: getString(ctx.Args, "query_regex", "query")}, nil
}

// wikiEquivalenceReplacer collapses the common Unicode variants a model
// introduces when it retypes previously-loaded wiki content: various dash
// forms to "-", curly quotes to straight quotes (spec §4.2 "Wiki update").
var wikiEquivalenceReplacer = strings.NewReplacer(
	"‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-", "−", "-",
	"‘", "'", "’", "'", "“", "\"", "”", "\"",
)

// NormalizeWikiEquivalence applies the Unicode-equivalence folding used to
// detect a resubmission of previously loaded content.
func NormalizeWikiEquivalence(s string) string {
	return wikiEquivalenceReplacer.Replace(s)
}

func parseWikiUpdate(ctx *ParseContext) (TypedAction, *ParseError) {
	file := getString(ctx.Args, "file")
	if file == "" {
		return nil, &ParseError{Message: "wiki_update requires 'file'", Tool: "wiki_update"}
	}
	content := getString(ctx.Args, "content")
	content = strings.ReplaceAll(content, "\\n", "\n")
	content = strings.ReplaceAll(content, "\\t", "\t")

	// Defeat silent Unicode corruption: if this matches previously loaded
	// content after equivalence folding, substitute the stored original.
	if ctx.Shared != nil {
		if cache, ok := ctx.Shared["loaded_wiki_content"].(map[string]string); ok {
			if original, ok := cache[file]; ok {
				if NormalizeWikiEquivalence(original) == NormalizeWikiEquivalence(content) {
					content = original
				}
			}
		}
	}

	return Req_WikiUpdate{
		File:      file,
		Content:   content,
		ChangedBy: getString(ctx.Args, "changed_by"),
	}, nil
}

func parseCustomersList(ctx *ParseContext) (TypedAction, *ParseError) { return Req_CustomersList{}, nil }

func parseCustomersGet(ctx *ParseContext) (TypedAction, *ParseError) {
	id := getString(ctx.Args, "id", "customer")
	if id == "" {
		return nil, &ParseError{Message: "customers_get requires 'id'", Tool: "customers_get"}
	}
	return Req_CustomersGet{ID: id}, nil
}

func parseCustomersSearch(ctx *ParseContext) (TypedAction, *ParseError) {
	return Req_CustomersSearch{
		Query:           getString(ctx.Args, "query", "query_regex"),
		Locations:       getStringList(ctx.Args, "locations", "location"),
		DealPhase:       getStringList(ctx.Args, "deal_phase"),
		AccountManagers: getStringList(ctx.Args, "account_managers"),
	}, nil
}

func parseProjectsList(ctx *ParseContext) (TypedAction, *ParseError) { return Req_ProjectsList{}, nil }

func parseProjectsGet(ctx *ParseContext) (TypedAction, *ParseError) {
	id := getString(ctx.Args, "id", "project")
	if id == "" {
		return nil, &ParseError{Message: "projects_get requires 'id'", Tool: "projects_get"}
	}
	return Req_ProjectsGet{ID: id}, nil
}

func parseProjectsSearch(ctx *ParseContext) (TypedAction, *ParseError) {
	limit := defaultInt(mustInt(ctx.Args, "limit"), defaultLimit)
	req := Req_ProjectsSearch{
		Query:           getString(ctx.Args, "query", "query_regex"),
		CustomerID:      getString(ctx.Args, "customer_id"),
		Status:          getStringList(ctx.Args, "status"),
		IncludeArchived: firstBool(ctx.Args, "include_archived"),
		Offset:          resolveOffset(ctx.Args, limit),
		Limit:           limit,
	}
	if teamRaw, ok := ctx.Args["team"].(map[string]any); ok {
		tf := &TeamFilter{EmployeeID: getString(teamRaw, "employee_id", "employee")}
		tf.Role, _ = teamRaw["role"].(string)
		if f, ok := getFloat(teamRaw, "min_time_slice"); ok {
			tf.MinTimeSlice = f
		}
		req.Team = tf
	}
	return req, nil
}

func firstBool(args map[string]any, key string) bool {
	b, _ := getBool(args, key)
	return b
}

func parseProjectsTeamUpdate(ctx *ParseContext) (TypedAction, *ParseError) {
	id := getString(ctx.Args, "id", "project")
	if id == "" {
		return nil, &ParseError{Message: "projects_team_update requires 'id'", Tool: "projects_team_update"}
	}
	rawTeam, _ := ctx.Args["team"].([]any)
	members := make([]TeamMember, 0, len(rawTeam))
	for _, item := range rawTeam {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		emp := getString(m, "employee")
		if emp == "" {
			continue
		}
		role, _ := m["role"].(string)
		timeSlice, _ := getFloat(m, "time_slice")
		members = append(members, TeamMember{
			Employee:  emp,
			Role:      NormalizeRole(role),
			TimeSlice: timeSlice,
		})
	}
	return Req_ProjectsTeamUpdate{ID: id, Team: members, ChangedBy: getString(ctx.Args, "changed_by")}, nil
}

var validProjectStatuses = map[string]bool{
	"idea": true, "exploring": true, "active": true, "paused": true, "archived": true,
}

func parseProjectsStatusUpdate(ctx *ParseContext) (TypedAction, *ParseError) {
	id := getString(ctx.Args, "id", "project")
	if id == "" {
		return nil, &ParseError{Message: "projects_status_update requires 'id'", Tool: "projects_status_update"}
	}
	status := strings.ToLower(getString(ctx.Args, "status"))
	if !validProjectStatuses[status] {
		return nil, &ParseError{Message: "invalid status '" + status + "', expected one of idea/exploring/active/paused/archived", Tool: "projects_status_update"}
	}
	return Req_ProjectsStatusUpdate{ID: id, Status: status, ChangedBy: getString(ctx.Args, "changed_by")}, nil
}

var validTimeStatuses = map[string]bool{
	"draft": true, "submitted": true, "approved": true, "invoiced": true, "voided": true,
}

func parseTimeLog(ctx *ParseContext) (TypedAction, *ParseError) {
	employee := getString(ctx.Args, "employee")
	if employee == "" {
		return nil, &ParseError{Message: "time_log requires 'employee'", Tool: "time_log"}
	}
	hours, _ := getFloat(ctx.Args, "hours")
	status := strings.ToLower(getString(ctx.Args, "status"))
	if status == "" {
		status = "draft"
	}
	if !validTimeStatuses[status] {
		return nil, &ParseError{Message: "invalid time entry status '" + status + "'", Tool: "time_log"}
	}
	billable, _ := getBool(ctx.Args, "billable")
	return Req_LogTimeEntry{
		Employee:     employee,
		Project:      getString(ctx.Args, "project"),
		Customer:     getString(ctx.Args, "customer"),
		Date:         getString(ctx.Args, "date"),
		Hours:        hours,
		WorkCategory: getString(ctx.Args, "work_category"),
		Notes:        getString(ctx.Args, "notes"),
		Billable:     billable,
		Status:       status,
		LoggedBy:     getString(ctx.Args, "logged_by"),
	}, nil
}

// parseTimeGetOrSearch implements the time_get-with-search-fallback
// contract (spec §6.1): if the args look like a search (no bare "id"),
// dispatch to the search parser instead.
func parseTimeGetOrSearch(ctx *ParseContext) (TypedAction, *ParseError) {
	if id := getString(ctx.Args, "id"); id != "" {
		return Req_TimeGet{ID: id}, nil
	}
	return parseTimeSearch(ctx)
}

func parseTimeSearch(ctx *ParseContext) (TypedAction, *ParseError) {
	limit := defaultInt(mustInt(ctx.Args, "limit"), defaultLimit)
	req := Req_SearchTimeEntries{
		Employee: getString(ctx.Args, "employee"),
		Project:  getString(ctx.Args, "project"),
		DateFrom: getString(ctx.Args, "date_from"),
		DateTo:   getString(ctx.Args, "date_to"),
		Offset:   resolveOffset(ctx.Args, limit),
		Limit:    limit,
	}
	if b, ok := getBool(ctx.Args, "billable"); ok {
		req.Billable = &b
	}
	return req, nil
}

func parseTimeUpdate(ctx *ParseContext) (TypedAction, *ParseError) {
	id := getString(ctx.Args, "id")
	if id == "" {
		return nil, &ParseError{Message: "time_update requires 'id'", Tool: "time_update"}
	}
	req := Req_UpdateTimeEntry{
		ID:           id,
		WorkCategory: getString(ctx.Args, "work_category"),
		Notes:        getString(ctx.Args, "notes"),
		Status:       strings.ToLower(getString(ctx.Args, "status")),
		ChangedBy:    getString(ctx.Args, "changed_by"),
	}
	if h, ok := getFloat(ctx.Args, "hours"); ok {
		req.Hours = &h
	}
	return req, nil
}

// defaultDateRange returns [Jan 1 of today's year, today] using the
// simulated date carried in the shared context (spec §4.2 step 7 "Time
// summaries"), falling back to empty strings when "today" is unknown.
func defaultDateRange(shared map[string]any) (from, to string) {
	today, _ := shared["today"].(string)
	if today == "" || len(today) < 4 {
		return "", ""
	}
	return today[:4] + "-01-01", today
}

func parseTimeSummaryByEmployee(ctx *ParseContext) (TypedAction, *ParseError) {
	from := getString(ctx.Args, "date_from")
	to := getString(ctx.Args, "date_to")
	if from == "" || to == "" {
		df, dt := defaultDateRange(ctx.Shared)
		if from == "" {
			from = df
		}
		if to == "" {
			to = dt
		}
	}
	req := Req_TimeSummaryByEmployee{
		DateFrom:  from,
		DateTo:    to,
		Employees: getStringList(ctx.Args, "employees"),
		Projects:  getStringList(ctx.Args, "projects"),
		Customers: getStringList(ctx.Args, "customers"),
	}
	if b, ok := getBool(ctx.Args, "billable"); ok {
		req.Billable = &b
	}
	return req, nil
}

func parseTimeSummaryByProject(ctx *ParseContext) (TypedAction, *ParseError) {
	from := getString(ctx.Args, "date_from")
	to := getString(ctx.Args, "date_to")
	if from == "" || to == "" {
		df, dt := defaultDateRange(ctx.Shared)
		if from == "" {
			from = df
		}
		if to == "" {
			to = dt
		}
	}
	req := Req_TimeSummaryByProject{
		DateFrom:  from,
		DateTo:    to,
		Employees: getStringList(ctx.Args, "employees"),
		Projects:  getStringList(ctx.Args, "projects"),
		Customers: getStringList(ctx.Args, "customers"),
	}
	if b, ok := getBool(ctx.Args, "billable"); ok {
		req.Billable = &b
	}
	return req, nil
}
