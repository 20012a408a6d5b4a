// Package pool implements the Worker Pool (C10): a fixed number of
// goroutines, each running one task to completion before taking the next,
// owning its own back-office client and wiki manager while sharing session
// statistics and the failure logger behind mutexes (spec §4.10, grounded
// on parallel/executor.py's run_parallel/run_task_worker).
package pool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medvedikur/erc3-mine-sub001/internal/backoffice"
	"github.com/medvedikur/erc3-mine-sub001/internal/failurelog"
	"github.com/medvedikur/erc3-mine-sub001/internal/links"
	"github.com/medvedikur/erc3-mine-sub001/internal/llm"
	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/pipeline"
	"github.com/medvedikur/erc3-mine-sub001/internal/telemetry"
	"github.com/medvedikur/erc3-mine-sub001/internal/turn"
	"github.com/medvedikur/erc3-mine-sub001/internal/wiki"
)

// TaskResult is what one completed task reports back to the pool's caller.
type TaskResult struct {
	TaskID string
	SpecID string
	Score  *float64
	Error  string
}

// Pool bounds task execution to NumWorkers concurrent goroutines, each
// handling one task to completion before taking the next from the shared
// queue (spec §4.10's "backpressure: ... excess tasks queue").
type Pool struct {
	NumWorkers int
	BaseURL    string
	APIKey     string
	ModelID    string
	SystemPrompt string
	MaxTurns   int

	LLM llm.Client

	WikiStore *wiki.Store
	Stats     *failurelog.SessionStats
	FailureLog *failurelog.FailureLogger
	Logger    telemetry.Logger
	LogsDir   string
}

// Run drains tasks across NumWorkers goroutines and returns once every task
// has completed or ctx is cancelled.
func (p *Pool) Run(ctx context.Context, tasks []model.TaskDescriptor) []TaskResult {
	if p.Logger == nil {
		p.Logger = telemetry.NoopLogger{}
	}
	in := make(chan model.TaskDescriptor)
	out := make(chan TaskResult, len(tasks))

	numWorkers := p.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}

	for w := 0; w < numWorkers; w++ {
		go p.worker(ctx, w, in, out)
	}

	go func() {
		defer close(in)
		for _, t := range tasks {
			select {
			case in <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make([]TaskResult, 0, len(tasks))
	for range tasks {
		select {
		case r := <-out:
			results = append(results, r)
		case <-ctx.Done():
			return results
		}
	}
	return results
}

// worker owns one back-office HTTP client and one wiki manager, which
// persist across the tasks it runs; runTask builds a fresh turn.Runner (and
// with it a fresh loop detector) for every task.
func (p *Pool) worker(ctx context.Context, id int, in <-chan model.TaskDescriptor, out chan<- TaskResult) {
	client := backoffice.NewClient(p.BaseURL, p.APIKey, 30*time.Second)
	wikiMgr := wiki.NewManager(p.WikiStore)
	executor := backoffice.NewExecutor(client, wikiMgr)

	for {
		select {
		case task, ok := <-in:
			if !ok {
				return
			}
			out <- p.runTask(ctx, id, task, executor, client, wikiMgr)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) runTask(ctx context.Context, workerID int, task model.TaskDescriptor, executor *backoffice.Executor, client *backoffice.Client, wikiMgr *wiki.Manager) TaskResult {
	ThreadStatus(workerID, task.SpecID, "Starting...")

	logCapture, err := NewLogCapture(p.LogsDir, task.TaskID, task.SpecID, task.TaskText)
	if err != nil {
		p.Logger.Error(ctx, "failed to open task log", "spec_id", task.SpecID, "error", err.Error())
	}
	defer func() {
		if logCapture != nil {
			logCapture.Close()
		}
	}()

	p.Stats.StartTask(task.TaskID)
	if p.FailureLog != nil {
		p.FailureLog.StartTask(task.TaskID, task.TaskText, task.SpecID)
	}

	maxTurns := p.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 20
	}

	proc := &pipeline.Processor{
		Dispatch:         executor,
		ValidateEmployee: links.EmployeeValidator(client.ValidateEmployee),
		TaskID:           task.TaskID,
		FailureLog:       p.FailureLog,
	}
	runner := turn.New(p.LLM, proc, p.ModelID, p.Logger)

	ThreadStatus(workerID, task.SpecID, "Running agent...")
	outcome := runner.Run(ctx, task, p.SystemPrompt, maxTurns, wikiMgr.ContextSummary)

	var score *float64
	taskErr := outcome.AbortedWhy
	if logCapture != nil {
		if taskErr != "" {
			logCapture.Write(fmt.Sprintf("\nERROR: %s\n", taskErr))
		} else {
			logCapture.Write(fmt.Sprintf("\nFINAL RESPONSE: %s\n", outcome.Response))
		}
	}

	p.Stats.FinishTask(task.TaskID, task.SpecID, score, taskErr, outcome.TurnsUsed)
	if taskErr != "" && p.FailureLog != nil {
		p.FailureLog.SaveError(task.TaskID, taskErr)
	}

	status := "Done"
	if taskErr != "" {
		status = "ERROR: " + taskErr
	}
	ThreadStatus(workerID, task.SpecID, status)

	return TaskResult{TaskID: task.TaskID, SpecID: task.SpecID, Score: score, Error: taskErr}
}

// Summary renders the end-of-run console report (grounded on
// parallel/executor.py's _print_parallel_summary).
func Summary(results []TaskResult, stats *failurelog.SessionStats, logsDir string) string {
	snap := stats.Snapshot()
	out := "\nPARALLEL EXECUTION SUMMARY\n" + strings.Repeat("-", 40) + "\n"
	out += fmt.Sprintf("  Total tasks:     %d\n", snap.Total)
	out += fmt.Sprintf("  Successful:      %d\n", snap.Successful)
	out += fmt.Sprintf("  Failed (error):  %d\n", snap.Failed)
	out += fmt.Sprintf("  Perfect score:   %d\n", snap.Perfect)
	out += fmt.Sprintf("  Max concurrency: %d\n", snap.MaxConcurrency)
	out += fmt.Sprintf("\nDetailed logs: %s/\n", logsDir)
	return out
}
