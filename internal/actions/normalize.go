// Package actions implements the Action Normalizer & Parser (C2): mapping a
// raw {tool, args} object to a typed request, resolving aliases, injecting
// current-user fields, rejecting placeholder values, and dispatching to the
// per-tool parsers registered in internal/tools.
package actions

import (
	"strings"

	"github.com/medvedikur/erc3-mine-sub001/internal/tools"
)

// aliasTable maps a commonly-hallucinated key to the correct canonical key.
// Never overwrites an already-set canonical field (spec §4.2 step 3). The
// "project" -> "id" mapping is deliberately absent: it used to exist and was
// removed because it broke the time_get-vs-time_search fallback (original
// source normalizers.py note, preserved here as a negative constraint).
var aliasTable = map[string]string{
	"query_semantic": "query_regex",
	"query":          "query_regex",
	"page_filter":    "page",
	"page_includes":  "page",
	"employee_id":    "employee",
	"user_id":        "employee",
	"username":       "employee",
}

// ApplyAliases rewrites hallucinated keys to their canonical name, never
// clobbering a key that is already present.
func ApplyAliases(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	for bad, good := range aliasTable {
		if v, ok := out[bad]; ok {
			if _, exists := out[good]; !exists {
				out[good] = v
			}
		}
	}
	return out
}

// auditFields always get filled from the current user when absent.
var auditFields = []string{"logged_by", "changed_by"}

// InjectContext fills audit fields with the current user id when the model
// omitted them (spec §4.2 step 4).
func InjectContext(args map[string]any, currentUser string) map[string]any {
	if currentUser == "" {
		return args
	}
	for _, f := range auditFields {
		if v, ok := args[f]; !ok || v == nil || v == "" {
			args[f] = currentUser
		}
	}
	return args
}

var placeholderPatterns = []string{"<<<", ">>>", "FILL_", "{RESULT", "{VALUE"}

// freeTextFields are exempt from placeholder detection since they carry
// arbitrary prose that might legitimately contain these substrings.
var freeTextFields = map[string]bool{
	"message": true, "content": true, "text": true,
	"notes": true, "description": true, "reason": true,
}

// DetectPlaceholder scans non-free-text string fields for placeholder
// markers the model emitted instead of a real, previously-fetched value
// (spec §4.2 step 5). Returns an explanatory message, or "" if clean.
func DetectPlaceholder(args map[string]any) string {
	for key, value := range args {
		s, ok := value.(string)
		if !ok || freeTextFields[strings.ToLower(key)] {
			continue
		}
		upper := strings.ToUpper(s)
		for _, pat := range placeholderPatterns {
			if strings.Contains(upper, pat) {
				return "Argument '" + key + "' contains placeholder value '" + s + "'. " +
					"You cannot use placeholders! Wait for the previous tool results before " +
					"calling dependent tools. Execute tools one at a time when values depend " +
					"on previous results."
			}
		}
	}
	return ""
}

// Flatten merges a nested "args" object (if present) over the outer
// request object, matching the parser's input shape regardless of whether
// the model nested fields under "args" or put them at the top level (spec
// §4.2 step 2).
func Flatten(toolName string, outer map[string]any) map[string]any {
	flat := make(map[string]any, len(outer))
	for k, v := range outer {
		if k == "tool" || k == "args" {
			continue
		}
		flat[k] = v
	}
	if nested, ok := outer["args"].(map[string]any); ok {
		for k, v := range nested {
			flat[k] = v
		}
	}
	return flat
}

// Canonicalize re-exports tools.Canonicalize so callers of this package
// don't need to import internal/tools just for name normalization.
func Canonicalize(raw string) tools.Name { return tools.Canonicalize(raw) }
