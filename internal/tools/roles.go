package tools

import "strings"

// roleMappings normalizes free-form role labels to the closed TeamRole set
// (spec §4.2 "Team updates").
var roleMappings = map[string]string{
	"tester": "QA", "testing": "QA", "quality": "QA",
	"quality control": "QA", "qc": "QA", "qa": "QA",
	"developer": "Engineer", "dev": "Engineer",
	"devops": "Ops", "operations": "Ops",
	"ui": "Designer", "ux": "Designer",
	"lead": "Lead", "manager": "Lead", "pm": "Lead", "project manager": "Lead",
	"engineer": "Engineer", "designer": "Designer", "ops": "Ops", "other": "Other",
}

var validRoles = map[string]bool{
	"Lead": true, "Engineer": true, "Designer": true, "QA": true, "Ops": true, "Other": true,
}

// NormalizeRole maps a free-form role string to the closed set, defaulting
// to "Other" for anything unrecognized.
func NormalizeRole(role string) string {
	if role == "" {
		return "Other"
	}
	if mapped, ok := roleMappings[strings.ToLower(role)]; ok {
		role = mapped
	}
	if !validRoles[role] {
		return "Other"
	}
	return role
}
