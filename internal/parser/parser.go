// Package parser implements the Response Parser (C1): extracting a plan
// object out of raw LLM text that may be wrapped in markdown fences,
// truncated mid-object, corrupted with garbage characters, or malformed in
// a handful of well-known ways, grounded on agent/parsing.py.
package parser

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Result is the outcome of parsing one raw LLM response.
type Result struct {
	Success            bool
	Data               map[string]any
	Error              string
	NeedsRetry         bool
	CorruptionDetected bool
}

// Parse extracts and validates a plan object from raw LLM response text,
// returning a Result that tells the turn runner whether to proceed,
// whether to ask the model to retry, and why.
func Parse(raw string) Result {
	if corr := detectCorruption(raw); corr != "" {
		return Result{Success: false, Error: corr, NeedsRetry: true, CorruptionDetected: true}
	}

	data, err := ExtractJSON(raw)
	if err != nil {
		return Result{Success: false, Error: "JSON parse error: " + err.Error(), NeedsRetry: true}
	}

	actionQueue, _ := data["action_queue"].([]any)
	if trunc := detectTruncatedActionQueue(raw, actionQueue); trunc != "" {
		return Result{Success: false, Data: data, Error: trunc, NeedsRetry: true, CorruptionDetected: true}
	}

	return Result{Success: true, Data: data}
}

var messageValueRe = regexp.MustCompile(`("message"\s*:\s*)"((?:[^"\\]|\\.)*)(")`)

// stripMessageValues blanks out "message" field values before corruption
// scanning: message text may legitimately contain non-ASCII prose (a
// Chinese answer to a Chinese question), so only structural JSON outside
// message values is scanned for corruption.
func stripMessageValues(content string) string {
	return messageValueRe.ReplaceAllString(content, `${1}"__MESSAGE_PLACEHOLDER__"`)
}

// detectCorruption flags garbage characters (stray CJK, control chars,
// Cyrillic in key position) inside the action_queue section of the raw
// text, before any JSON parsing is attempted.
func detectCorruption(content string) string {
	aqStart := strings.Index(content, `"action_queue"`)
	if aqStart == -1 {
		return ""
	}
	section := stripMessageValues(content[aqStart:])

	for _, r := range section {
		if (r >= 0x4e00 && r <= 0x9fff) ||
			(r <= 0x0008) || r == 0x000b || r == 0x000c || (r >= 0x000e && r <= 0x001f) {
			pos := strings.IndexRune(section, r)
			return "Corrupted characters in action_queue near: ..." + contextAround(section, pos) + "..."
		}
	}
	if m := cyrillicKeyRe.FindStringIndex(section); m != nil {
		return "Corrupted characters in action_queue near: ..." + contextAround(section, m[0]) + "..."
	}
	return ""
}

var cyrillicKeyRe = regexp.MustCompile(`"[^"]*[\x{0400}-\x{04ff}][^"]*"\s*:`)

func contextAround(s string, pos int) string {
	if pos < 0 {
		return s
	}
	start := pos - 20
	if start < 0 {
		start = 0
	}
	end := pos + 30
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// detectTruncatedActionQueue flags an action_queue that appears in the raw
// text but parsed empty (mid-object truncation), or whose entries are
// shaped wrong.
func detectTruncatedActionQueue(content string, parsedActions []any) string {
	if strings.Contains(content, `"action_queue"`) {
		if m := actionQueueOpenRe.FindStringIndex(content); m != nil {
			remaining := strings.TrimSpace(content[m[1]:])
			if remaining != "" && !strings.HasPrefix(remaining, "]") && len(parsedActions) == 0 {
				if strings.Count(remaining, "{") > strings.Count(remaining, "}") {
					return "action_queue appears truncated - incomplete action object"
				}
			}
		}
	}

	for i, a := range parsedActions {
		obj, ok := a.(map[string]any)
		if !ok {
			return fmtActionTypeError(i, a)
		}
		if _, ok := obj["tool"]; !ok {
			return fmtActionMissingTool(i)
		}
	}
	return ""
}

var actionQueueOpenRe = regexp.MustCompile(`"action_queue"\s*:\s*\[`)

func fmtActionTypeError(i int, v any) string {
	return "Action " + strconv.Itoa(i) + " is not a valid object (got " + goTypeName(v) + ")"
}

func fmtActionMissingTool(i int) string {
	return "Action " + strconv.Itoa(i) + " missing required 'tool' field"
}

func goTypeName(v any) string {
	switch v.(type) {
	case string:
		return "str"
	case float64:
		return "float"
	case bool:
		return "bool"
	case nil:
		return "NoneType"
	case []any:
		return "list"
	default:
		return "unknown"
	}
}

// ExtractJSON recovers a JSON object from raw LLM text: strips markdown
// fences, then tries straight parsing, then a sequence of cheap structural
// repairs, then multi-object scanning, then truncation repair, in that
// order (spec §4.1, grounded on parsing.extract_json).
func ExtractJSON(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	content = stripMarkdownFence(content)

	if !strings.HasPrefix(content, "{") {
		if i := strings.Index(content, "{"); i >= 0 {
			content = content[i:]
		}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err == nil {
		return data, nil
	}

	if repaired := tryFixPlanStepStatus(content); repaired != "" && repaired != content {
		if err := json.Unmarshal([]byte(repaired), &data); err == nil {
			return data, nil
		}
	}

	if repaired := tryFixCustomerIDAsTool(content); repaired != "" && repaired != content {
		if err := json.Unmarshal([]byte(repaired), &data); err == nil {
			return data, nil
		}
	}

	if repaired := tryFixActionQueueBraces(content); repaired != "" && repaired != content {
		if err := json.Unmarshal([]byte(repaired), &data); err == nil {
			return data, nil
		}
	}

	if objs := findAllJSONObjects(content); len(objs) > 0 {
		for _, obj := range objs {
			if hasAnyKey(obj, "thoughts", "action_queue", "plan", "is_final") {
				return obj, nil
			}
		}
		return largestObject(objs), nil
	}

	if fixed := tryFixTruncated(content); fixed != nil {
		return fixed, nil
	}

	var final map[string]any
	err := json.Unmarshal([]byte(content), &final)
	return final, err
}

func stripMarkdownFence(content string) string {
	if strings.Contains(content, "```json") {
		start := strings.Index(content, "```json") + len("```json")
		end := strings.Index(content[start:], "```")
		if end > 0 {
			return strings.TrimSpace(content[start : start+end])
		}
		return content
	}
	if strings.Contains(content, "```") {
		start := strings.Index(content, "```") + 3
		end := strings.Index(content[start:], "```")
		if end > 0 {
			return strings.TrimSpace(content[start : start+end])
		}
		return content
	}
	return content
}

func hasAnyKey(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

func largestObject(objs []map[string]any) map[string]any {
	best := objs[0]
	bestLen := len(mustMarshal(best))
	for _, o := range objs[1:] {
		if n := len(mustMarshal(o)); n > bestLen {
			best, bestLen = o, n
		}
	}
	return best
}

func mustMarshal(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

// tryFixActionQueueBraces inserts missing closing braces for action
// objects inside action_queue, which LLMs occasionally drop when emitting
// very long content (e.g. a multi-KB wiki page body).
func tryFixActionQueueBraces(content string) string {
	if !strings.Contains(content, `"action_queue"`) {
		return ""
	}
	aqStart := strings.Index(content, `"action_queue"`)
	bracketStart := strings.Index(content[aqStart:], "[")
	if bracketStart == -1 {
		return ""
	}
	bracketStart += aqStart

	m := isFinalAfterArrayRe.FindStringIndex(content)
	if m == nil {
		return ""
	}
	bracketEnd := m[0] + 1

	aqContent := content[bracketStart : bracketEnd+1]
	open := strings.Count(aqContent, "{")
	closeC := strings.Count(aqContent, "}")
	if open <= closeC {
		return ""
	}
	missing := open - closeC

	lastClose := strings.LastIndex(aqContent, "}")
	if lastClose == -1 {
		return ""
	}
	fixed := aqContent[:lastClose+1] + "\n    " + strings.Repeat("}", missing) + aqContent[lastClose+1:]
	return content[:bracketStart] + fixed + content[bracketEnd+1:]
}

var isFinalAfterArrayRe = regexp.MustCompile(`\],\s*\n\s*"is_final"`)

// tryFixCustomerIDAsTool repairs {"tool": "cust_xxx"} into a proper
// customers_get call, a shape some models emit instead of a real action.
var custAsToolRe = regexp.MustCompile(`(?i)\{\s*"tool"\s*:\s*"(cust_[a-z0-9_]+)"\s*\}\s*(\})?\s*(,?)`)

func tryFixCustomerIDAsTool(content string) string {
	if !strings.Contains(content, `"action_queue"`) {
		return ""
	}
	if !custAsToolRe.MatchString(content) {
		return ""
	}
	return custAsToolRe.ReplaceAllString(content, `{"tool": "customers_get", "args": {"id": "$1"}}$3`)
}

// tryFixPlanStepStatus repairs a plan array containing bare "step"/"status"
// pairs instead of {"step": ..., "status": ...} objects.
var planStepStatusRe = regexp.MustCompile(`(?ms)\n(\s*)"step"\s*:\s*("(?:[^"\\]|\\.)*")\s*,\s*\n\s*"status"\s*:\s*("(?:[^"\\]|\\.)*")\s*(,?)`)

func tryFixPlanStepStatus(content string) string {
	if !strings.Contains(content, `"plan"`) {
		return ""
	}
	planKeyIdx := strings.Index(content, `"plan"`)
	openIdx := strings.Index(content[planKeyIdx:], "[")
	if openIdx < 0 {
		return ""
	}
	openIdx += planKeyIdx
	closeIdx := findMatchingBracket(content, openIdx, '[', ']')
	if closeIdx < 0 {
		return ""
	}
	body := content[openIdx : closeIdx+1]
	fixed := planStepStatusRe.ReplaceAllString(body, "\n${1}{\"step\": $2, \"status\": $3}$4")
	if fixed == body {
		return ""
	}
	return content[:openIdx] + fixed + content[closeIdx+1:]
}

func findMatchingBracket(text string, startIdx int, openCh, closeCh rune) int {
	depth := 0
	inString := false
	escapeNext := false
	runes := []rune(text)
	for i := startIdx; i < len(runes); i++ {
		c := runes[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		if c == '\\' && inString {
			escapeNext = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return byteIndexOfRune(text, i)
			}
		}
	}
	return -1
}

func byteIndexOfRune(s string, runeIdx int) int {
	count := 0
	for i := range s {
		if count == runeIdx {
			return i
		}
		count++
	}
	return len(s)
}

// findAllJSONObjects scans for every balanced, independently-parseable
// {...} object in concatenated text.
func findAllJSONObjects(text string) []map[string]any {
	var results []map[string]any
	n := len(text)
	i := 0
	for i < n {
		if text[i] != '{' {
			i++
			continue
		}
		depth := 0
		inString := false
		escapeNext := false
		matched := false
		for j := i; j < n; j++ {
			c := text[j]
			if escapeNext {
				escapeNext = false
				continue
			}
			if c == '\\' && inString {
				escapeNext = true
				continue
			}
			if c == '"' {
				inString = !inString
				continue
			}
			if inString {
				continue
			}
			if c == '{' {
				depth++
			} else if c == '}' {
				depth--
				if depth == 0 {
					var obj map[string]any
					if err := json.Unmarshal([]byte(text[i:j+1]), &obj); err == nil {
						results = append(results, obj)
					}
					i = j + 1
					matched = true
					break
				}
			}
		}
		if !matched {
			i++
		}
	}
	return results
}

// tryFixTruncated appends missing closing brackets/braces, or falls back
// to trimming from the end until a prefix parses.
func tryFixTruncated(content string) map[string]any {
	openBraces := strings.Count(content, "{")
	closeBraces := strings.Count(content, "}")
	openBrackets := strings.Count(content, "[")
	closeBrackets := strings.Count(content, "]")

	if openBraces > closeBraces {
		fixed := strings.TrimRight(strings.TrimSpace(content), ",")
		fixed += strings.Repeat("}", openBraces-closeBraces)
		var data map[string]any
		if err := json.Unmarshal([]byte(fixed), &data); err == nil {
			return data
		}
	}

	for i := len(content); i > 0; i-- {
		if content[i-1] == '}' {
			var data map[string]any
			if err := json.Unmarshal([]byte(content[:i]), &data); err == nil {
				return data
			}
		}
	}

	if openBrackets > closeBrackets {
		fixed := strings.TrimRight(strings.TrimSpace(content), ",")
		fixed += strings.Repeat("]", openBrackets-closeBrackets)
		fixed += strings.Repeat("}", openBraces-closeBraces)
		var data map[string]any
		if err := json.Unmarshal([]byte(fixed), &data); err == nil {
			return data
		}
	}

	return nil
}
