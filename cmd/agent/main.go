// Command agent runs a batch of tasks against the back-office through the
// turn loop, one worker goroutine per task up to the configured thread
// count (spec §4.10, grounded on main.py/erc3_dev_agent.py's CLI entry and
// parallel/executor.py's run_parallel).
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/medvedikur/erc3-mine-sub001/internal/config"
	"github.com/medvedikur/erc3-mine-sub001/internal/failurelog"
	"github.com/medvedikur/erc3-mine-sub001/internal/llm"
	"github.com/medvedikur/erc3-mine-sub001/internal/model"
	"github.com/medvedikur/erc3-mine-sub001/internal/pool"
	"github.com/medvedikur/erc3-mine-sub001/internal/telemetry"
	"github.com/medvedikur/erc3-mine-sub001/internal/wiki"
)

func main() {
	tasksPath := flag.String("tasks", "", "path to a JSON-lines file of {task_id,spec_id,task_text} tasks (defaults to stdin)")
	threads := flag.Int("threads", 0, "worker count (defaults to DEFAULT_THREADS)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := telemetry.NewClueLogger()

	tasks, err := loadTasks(*tasksPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tasks:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := buildLLMClient(cfg, logger)

	numWorkers := *threads
	if numWorkers <= 0 {
		numWorkers = cfg.DefaultThreads
	}

	stats := failurelog.NewSessionStats()
	flog := failurelog.New(cfg.LogsDir)

	p := &pool.Pool{
		NumWorkers:   numWorkers,
		BaseURL:      cfg.APIBaseURL,
		APIKey:       cfg.APIKey,
		ModelID:      modelFor(cfg),
		SystemPrompt: systemPrompt,
		MaxTurns:     cfg.MaxTurnsPerTask,
		LLM:          client,
		WikiStore:    wiki.NewStore(cfg.WikiDumpDir),
		Stats:        stats,
		FailureLog:   flog,
		Logger:       logger,
		LogsDir:      cfg.LogsDir,
	}

	results := p.Run(ctx, tasks)
	fmt.Println(pool.Summary(results, stats, cfg.LogsDir))
}

func buildLLMClient(cfg *config.Config, logger telemetry.Logger) llm.Client {
	switch cfg.Backend {
	case config.BackendOpenRouter:
		return llm.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.LLMRetryAttempts, logger)
	default:
		var rdb *redis.Client
		if cfg.RedisAddr != "" {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		}
		nodes := llm.NewNodeDirectory(rdb, string(config.BackendGonka))
		return llm.NewGonkaClient(cfg.GonkaPrivateKey, nodes, logger, nil)
	}
}

func modelFor(cfg *config.Config) string {
	if cfg.Backend == config.BackendOpenRouter {
		return cfg.ModelOpenRouter
	}
	return cfg.ModelGonka
}

func loadTasks(path string) ([]model.TaskDescriptor, error) {
	var r *bufio.Scanner
	if path == "" {
		r = bufio.NewScanner(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = bufio.NewScanner(f)
	}
	r.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []model.TaskDescriptor
	for r.Scan() {
		line := r.Text()
		if line == "" {
			continue
		}
		var raw struct {
			TaskID   string `json:"task_id"`
			SpecID   string `json:"spec_id"`
			TaskText string `json:"task_text"`
		}
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("tasks: %w", err)
		}
		if raw.TaskID == "" {
			raw.TaskID = uuid.NewString()
		}
		out = append(out, model.TaskDescriptor{TaskID: raw.TaskID, SpecID: raw.SpecID, TaskText: raw.TaskText})
	}
	return out, r.Err()
}

const systemPrompt = `You are an autonomous corporate assistant with access to the
company's employee, project, customer, time-tracking and wiki systems through
a fixed set of tools. Propose actions as JSON: {"thoughts": "...",
"plan": [{"step": "...", "status": "pending|in_progress|completed"}],
"action_queue": [{"tool": "...", "args": {...}}], "is_final": false}.
Call 'who_am_i' before taking any other action. Finish every task by calling
'respond' with an outcome and any relevant entity links.`
