// Package loopdetect implements the Loop Detector (C4): a bounded FIFO of
// the last N action patterns, triggering when the FIFO is full, the current
// pattern is non-empty, and every entry is equal.
package loopdetect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

const defaultHistorySize = 3

// Detector tracks the last N action patterns for one task.
type Detector struct {
	historySize int
	history     []string
}

// New constructs a Detector with the given history size (default 3 when n
// <= 0).
func New(n int) *Detector {
	if n <= 0 {
		n = defaultHistorySize
	}
	return &Detector{historySize: n}
}

// Clear empties the action history, used on loop-triggered recovery.
func (d *Detector) Clear() {
	d.history = d.history[:0]
}

// RecordAndCheck records the current turn's action pattern and reports
// whether the last historySize patterns are all identical and non-empty.
func (d *Detector) RecordAndCheck(actionQueue []model.ActionRequest) bool {
	pattern := makePattern(actionQueue)
	d.history = append(d.history, pattern)
	if len(d.history) > d.historySize {
		d.history = d.history[1:]
	}

	if len(d.history) == d.historySize && pattern != "" {
		for _, p := range d.history {
			if p != pattern {
				return false
			}
		}
		return true
	}
	return false
}

// makePattern builds a hashable (here: a deterministically ordered string)
// representation of tool names plus their sorted argument key/value pairs,
// so iterating over different entities with the same tool does not look
// like a loop.
func makePattern(actionQueue []model.ActionRequest) string {
	if len(actionQueue) == 0 {
		return ""
	}
	parts := make([]string, 0, len(actionQueue))
	for _, a := range actionQueue {
		parts = append(parts, a.Tool+"("+makeHashableArgs(a.Args)+")")
	}
	return strings.Join(parts, "|")
}

func makeHashableArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+makeHashable(args[k]))
	}
	return strings.Join(parts, ",")
}

// makeHashable converts an arbitrary decoded-JSON value into a
// deterministic string so equal structures compare equal regardless of map
// key iteration order.
func makeHashable(v any) string {
	switch t := v.(type) {
	case map[string]any:
		return "{" + makeHashableArgs(t) + "}"
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, makeHashable(item))
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}
