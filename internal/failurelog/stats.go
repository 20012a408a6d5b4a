// Package failurelog holds the two shared, mutex-guarded accumulators the
// worker pool writes into across tasks: running session counters and an
// append-only per-task failure log, grounded on stats.py/SessionStats and
// the failure_logger singleton referenced throughout action_processor.py
// and parallel/executor.py.
package failurelog

import (
	"sync"
	"time"
)

// TaskSample is one completed task's accounting, recorded once the task
// finishes (successfully or not).
type TaskSample struct {
	TaskID    string
	SpecID    string
	Score     *float64
	Error     string
	Turns     int
	StartedAt time.Time
	EndedAt   time.Time
}

// SessionStats accumulates counters across every task a worker pool runs,
// safe for concurrent use by multiple workers.
type SessionStats struct {
	mu sync.Mutex

	inFlight         int
	maxConcurrent    int
	samples          []TaskSample
	startedByTask    map[string]time.Time
}

// NewSessionStats constructs an empty accumulator.
func NewSessionStats() *SessionStats {
	return &SessionStats{startedByTask: map[string]time.Time{}}
}

// StartTask records a task beginning, updating the max-concurrency
// high-water mark (spec §4.10 "max-concurrency is tracked for reporting").
func (s *SessionStats) StartTask(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	if s.inFlight > s.maxConcurrent {
		s.maxConcurrent = s.inFlight
	}
	s.startedByTask[taskID] = time.Now()
}

// FinishTask records a task's completion.
func (s *SessionStats) FinishTask(taskID, specID string, score *float64, taskErr string, turns int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	started := s.startedByTask[taskID]
	delete(s.startedByTask, taskID)
	s.samples = append(s.samples, TaskSample{
		TaskID:    taskID,
		SpecID:    specID,
		Score:     score,
		Error:     taskErr,
		Turns:     turns,
		StartedAt: started,
		EndedAt:   time.Now(),
	})
}

// Summary is a point-in-time readout of the session's accumulated state.
type Summary struct {
	Total           int
	Successful      int
	Failed          int
	Perfect         int
	MaxConcurrency  int
}

// Snapshot returns the current summary, matching _print_parallel_summary's
// successful/failed/perfect breakdown.
func (s *SessionStats) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := Summary{MaxConcurrency: s.maxConcurrent}
	for _, sample := range s.samples {
		sum.Total++
		if sample.Error != "" {
			sum.Failed++
			continue
		}
		sum.Successful++
		if sample.Score != nil && *sample.Score == 1.0 {
			sum.Perfect++
		}
	}
	return sum
}

// Samples returns a copy of every recorded task sample.
func (s *SessionStats) Samples() []TaskSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskSample, len(s.samples))
	copy(out, s.samples)
	return out
}
