package tools

import "strconv"

// getString reads a string field, coercing from a handful of scalar types a
// model sometimes emits instead of a bare string.
func getString(args map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := args[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatFloat(t, 'g', -1, 64)
		case int:
			return strconv.Itoa(t)
		}
	}
	return ""
}

// getFloat reads a numeric field, accepting either a JSON number or a
// numeric string.
func getFloat(args map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := args[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case int:
			return float64(t), true
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func getInt(args map[string]any, keys ...string) (int, bool) {
	f, ok := getFloat(args, keys...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// getBool reads a boolean field, accepting real bools and common string
// spellings ("true"/"yes"/"1").
func getBool(args map[string]any, keys ...string) (bool, bool) {
	for _, k := range keys {
		v, ok := args[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			switch t {
			case "true", "yes", "1":
				return true, true
			case "false", "no", "0":
				return false, true
			}
		}
	}
	return false, false
}

// getStringList accepts either a scalar or a list and always wraps a scalar
// into a singleton list (spec §4.2 step 6 "for list-typed fields accepts
// both a scalar and a list").
func getStringList(args map[string]any, keys ...string) []string {
	for _, k := range keys {
		v, ok := args[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case []any:
			out := make([]string, 0, len(t))
			for _, item := range t {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return t
		case string:
			return []string{t}
		}
	}
	return nil
}

// resolveOffset implements the offset/page reconciliation rule: offset wins
// when both are present; page is 1-based and converted to a 0-based
// offset using limit.
func resolveOffset(args map[string]any, limit int) int {
	if off, ok := getInt(args, "offset"); ok {
		return off
	}
	if page, ok := getInt(args, "page"); ok && page > 0 {
		return (page - 1) * limit
	}
	return 0
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
