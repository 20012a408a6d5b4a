// Package links implements the Link Extractor (C3): deriving entity
// references from prose and from tracked mutation/search entities, with
// normalization, deduplication and back-office validation of employee
// links.
package links

import (
	"regexp"
	"strings"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

// nonEmployeePatterns denylists tokens that look like a bare employee
// username (word_word) but are actually known compound field names or
// skill/category labels.
var nonEmployeePatterns = map[string]bool{
	"cv_engineering": true, "edge_ai": true, "machine_learning": true, "deep_learning": true,
	"data_engineering": true, "cloud_architecture": true, "backend_development": true,
	"frontend_development": true, "mobile_development": true, "devops_engineering": true,
	"security_engineering": true, "project_management": true, "technical_writing": true,
	"time_slice": true, "work_category": true, "deal_phase": true, "account_manager": true,
	"employee_id": true, "project_id": true, "customer_id": true, "next_offset": true,
}

var typeMap = map[string]model.LinkKind{
	"proj": model.LinkProject, "emp": model.LinkEmployee, "cust": model.LinkCustomer,
}

var prefixedIDRe = regexp.MustCompile(`\b((?:proj|emp|cust)_[a-z0-9_]+)\b`)
var bareUsernameRe = regexp.MustCompile(`\b([a-zA-Z0-9]+(?:_[a-zA-Z0-9]+)+)\b`)

// ExtractFromMessage scans prose for entity-id-shaped tokens: IDs carrying
// a known prefix (proj_/emp_/cust_), plus bare name_surname-shaped tokens
// treated as employee ids unless denylisted.
func ExtractFromMessage(message string) []model.Link {
	var out []model.Link

	for _, found := range prefixedIDRe.FindAllString(message, -1) {
		prefix := found
		if idx := strings.Index(found, "_"); idx >= 0 {
			prefix = found[:idx]
		}
		if kind, ok := typeMap[prefix]; ok {
			out = append(out, model.Link{ID: found, Kind: kind})
		}
	}

	for _, pu := range bareUsernameRe.FindAllString(message, -1) {
		hasKnownPrefix := strings.HasPrefix(pu, "proj_") || strings.HasPrefix(pu, "emp_") || strings.HasPrefix(pu, "cust_")
		if !hasKnownPrefix && !nonEmployeePatterns[pu] {
			out = append(out, model.Link{ID: pu, Kind: model.LinkEmployee})
		}
		if strings.HasPrefix(pu, "emp_") {
			out = append(out, model.Link{ID: strings.TrimPrefix(pu, "emp_"), Kind: model.LinkEmployee})
		}
	}

	return out
}

// RawLink is an un-typed incoming link as the model may have emitted it:
// either a bare string id, or an object with varied key casing.
type RawLink = any

// NormalizeLinks accepts a slice of either strings or map[string]any (and
// tolerates the varied key-casing the model may use: kind/Kind/type/Type,
// id/ID/value/Value) and returns the canonical Link slice. An unmapped
// string prefix yields an empty Kind, matching the original fallback.
func NormalizeLinks(raw []any) []model.Link {
	if len(raw) == 0 {
		return nil
	}
	out := make([]model.Link, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			prefix := v
			if idx := strings.Index(v, "_"); idx >= 0 {
				prefix = v[:idx]
			}
			out = append(out, model.Link{ID: v, Kind: typeMap[prefix]})
		case map[string]any:
			kind := firstString(v, "kind", "Kind", "type", "Type")
			id := firstString(v, "id", "ID", "value", "Value")
			out = append(out, model.Link{ID: id, Kind: model.LinkKind(kind)})
		}
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// LinkExists reports whether a link with the given id/kind is already in
// links.
func LinkExists(links []model.Link, id string, kind model.LinkKind) bool {
	for _, l := range links {
		if l.ID == id && l.Kind == kind {
			return true
		}
	}
	return false
}

// AddMutationEntities appends each mutation entity not already present,
// then the current user (as an employee link) if currentUser is non-empty
// and not already linked. Per spec §4.8, the current user is added only
// when they were the mutation's target, not merely its authorizer — pass
// an empty currentUser to skip that blanket inclusion entirely.
func AddMutationEntities(links []model.Link, mutationEntities []model.Link, currentUser string) []model.Link {
	out := append([]model.Link{}, links...)
	for _, e := range mutationEntities {
		if !LinkExists(out, e.ID, e.Kind) {
			out = append(out, e)
		}
	}
	if currentUser != "" && !LinkExists(out, currentUser, model.LinkEmployee) {
		out = append(out, model.Link{ID: currentUser, Kind: model.LinkEmployee})
	}
	return out
}

// AddSearchEntities appends each search entity not already present.
func AddSearchEntities(links []model.Link, searchEntities []model.Link) []model.Link {
	out := append([]model.Link{}, links...)
	for _, e := range searchEntities {
		if !LinkExists(out, e.ID, e.Kind) {
			out = append(out, e)
		}
	}
	return out
}

// Deduplicate removes duplicate (kind,id) entries, preserving the first
// occurrence's order (spec invariant I4).
func Deduplicate(links []model.Link) []model.Link {
	seen := make(map[string]bool, len(links))
	out := make([]model.Link, 0, len(links))
	for _, l := range links {
		k := l.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}
	return out
}

// EmployeeValidator performs a back-office GET for an employee id and
// reports whether the backend explicitly said "not found".
type EmployeeValidator func(id string) (found bool, err error)

// ValidateEmployeeLinks drops an employee link only when the backend
// explicitly reports it doesn't exist (a 404/"not found"); any other
// validation error keeps the link (spec §4.3 "drop only when the backend
// explicitly reports not-found").
func ValidateEmployeeLinks(links []model.Link, validate EmployeeValidator) []model.Link {
	if validate == nil {
		return links
	}
	out := make([]model.Link, 0, len(links))
	for _, l := range links {
		if l.Kind != model.LinkEmployee {
			out = append(out, l)
			continue
		}
		found, err := validate(l.ID)
		if found {
			out = append(out, l)
			continue
		}
		if err == nil {
			// (false, nil) is the validator's explicit not-found report.
			continue
		}
		msg := strings.ToLower(err.Error())
		if !strings.Contains(msg, "not found") && !strings.Contains(msg, "404") {
			out = append(out, l)
		}
	}
	return out
}

var listMarkerRe = regexp.MustCompile(`^\s*([-*•]|\d+\.)`)

// PrimaryAnswerSegment returns the leading sentence of text (up to the
// first `.`/`!`/`?` not preceded by a digit, to avoid cutting decimals like
// "0.00"), or the first line if no sentence boundary is found, or the
// entire text if it starts with a list marker (spec GLOSSARY "Primary-
// answer segment").
func PrimaryAnswerSegment(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return t
	}
	if listMarkerRe.MatchString(t) {
		return t
	}
	runes := []rune(t)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i > 0 && runes[i-1] >= '0' && runes[i-1] <= '9' {
			// preceded by a digit (e.g. "0.00") - not a sentence boundary,
			// matching the negative lookbehind (?<!\d)[.!?] in the original.
			continue
		}
		return string(runes[:i+1])
	}
	if lines := strings.SplitN(t, "\n", 2); len(lines) > 0 {
		return lines[0]
	}
	return t
}
