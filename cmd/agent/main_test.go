package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvedikur/erc3-mine-sub001/internal/config"
	"github.com/medvedikur/erc3-mine-sub001/internal/llm"
)

func TestLoadTasks_ParsesJSONLinesAndSkipsBlankLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.jsonl")
	content := `{"task_id":"t1","spec_id":"s1","task_text":"log hours"}

{"spec_id":"s2","task_text":"update wiki"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tasks, err := loadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].TaskID)
	assert.NotEmpty(t, tasks[1].TaskID, "a missing task_id should be auto-generated")
	assert.NotEqual(t, "t1", tasks[1].TaskID)
}

func TestLoadTasks_MalformedLineReturnsError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0o644))

	_, err := loadTasks(path)
	assert.Error(t, err)
}

func TestLoadTasks_MissingFileReturnsError(t *testing.T) {
	t.Parallel()

	_, err := loadTasks(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestModelFor_SelectsBackendSpecificModel(t *testing.T) {
	t.Parallel()

	gonka := &config.Config{Backend: config.BackendGonka, ModelGonka: "g-model", ModelOpenRouter: "o-model"}
	assert.Equal(t, "g-model", modelFor(gonka))

	openrouter := &config.Config{Backend: config.BackendOpenRouter, ModelGonka: "g-model", ModelOpenRouter: "o-model"}
	assert.Equal(t, "o-model", modelFor(openrouter))
}

func TestBuildLLMClient_SelectsClientTypeByBackend(t *testing.T) {
	t.Parallel()

	openrouter := buildLLMClient(&config.Config{Backend: config.BackendOpenRouter, OpenRouterAPIKey: "k", LLMRetryAttempts: 2}, nil)
	_, isOpenRouter := openrouter.(*llm.OpenRouterClient)
	assert.True(t, isOpenRouter)

	gonka := buildLLMClient(&config.Config{Backend: config.BackendGonka, RedisAddr: ""}, nil)
	_, isGonka := gonka.(*llm.GonkaClient)
	assert.True(t, isGonka)
}
