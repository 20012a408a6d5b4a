package failurelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ContextResult is one action's result lines, recorded as they're produced
// so a failed task's log can show exactly what happened (grounded on
// action_processor.py's log_context_results call).
type ContextResult struct {
	Action  string
	Results []string
}

// taskLog accumulates everything recorded for one in-flight task.
type taskLog struct {
	taskID        string
	specID        string
	taskText      string
	startedAt     time.Time
	contextResult []ContextResult
}

// FailureLogger is the append-only, mutex-guarded per-task recorder shared
// across every worker in the pool. On a failed or scored task it writes one
// JSON summary and one text summary into dir.
type FailureLogger struct {
	mu   sync.Mutex
	dir  string
	logs map[string]*taskLog
}

// New constructs a FailureLogger writing under dir (created on first use).
func New(dir string) *FailureLogger {
	return &FailureLogger{dir: dir, logs: map[string]*taskLog{}}
}

// StartTask registers a new in-flight task.
func (f *FailureLogger) StartTask(taskID, taskText, specID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[taskID] = &taskLog{taskID: taskID, specID: specID, taskText: taskText, startedAt: time.Now()}
}

// LogContextResults appends one action's result lines to the task's running
// log, so a later failure report shows the full trace of what executed.
func (f *FailureLogger) LogContextResults(taskID, action string, results []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.logs[taskID]
	if !ok {
		return
	}
	cp := make([]string, len(results))
	copy(cp, results)
	t.contextResult = append(t.contextResult, ContextResult{Action: action, Results: cp})
}

// failureSummary is the on-disk JSON shape for one task's failure report.
type failureSummary struct {
	TaskID    string          `json:"task_id"`
	SpecID    string          `json:"spec_id"`
	TaskText  string          `json:"task_text"`
	Score     *float64        `json:"score"`
	EvalLogs  string          `json:"eval_logs,omitempty"`
	Error     string          `json:"error,omitempty"`
	Context   []ContextResult `json:"context_results"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
}

// SaveFailure writes a JSON and a text summary for a scored task. It writes
// whatever score it is given; it does not itself check the score against
// 1.0.
func (f *FailureLogger) SaveFailure(taskID string, score float64, evalLogs string) error {
	return f.write(taskID, &score, evalLogs, "")
}

// SaveError writes a summary for a task that ended in a hard exception
// rather than a scored evaluation.
func (f *FailureLogger) SaveError(taskID string, taskErr string) error {
	return f.write(taskID, nil, "", taskErr)
}

func (f *FailureLogger) write(taskID string, score *float64, evalLogs, taskErr string) error {
	f.mu.Lock()
	t, ok := f.logs[taskID]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("failurelog: unknown task %q", taskID)
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}

	summary := failureSummary{
		TaskID: t.taskID, SpecID: t.specID, TaskText: t.taskText,
		Score: score, EvalLogs: evalLogs, Error: taskErr,
		Context: t.contextResult, StartedAt: t.startedAt, EndedAt: time.Now(),
	}

	jsonPath := filepath.Join(f.dir, t.specID+".json")
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(f.dir, t.specID+".txt"), []byte(renderTextSummary(summary)), 0o644)
}

func renderTextSummary(s failureSummary) string {
	out := fmt.Sprintf("TASK %s (%s)\n", s.SpecID, s.TaskID)
	out += fmt.Sprintf("Question: %s\n", s.TaskText)
	if s.Score != nil {
		out += fmt.Sprintf("Score: %v\n", *s.Score)
	}
	if s.Error != "" {
		out += fmt.Sprintf("Error: %s\n", s.Error)
	}
	if s.EvalLogs != "" {
		out += "\n" + s.EvalLogs + "\n"
	}
	for _, cr := range s.Context {
		out += fmt.Sprintf("\n[%s]\n", cr.Action)
		for _, r := range cr.Results {
			out += "  " + r + "\n"
		}
	}
	return out
}
