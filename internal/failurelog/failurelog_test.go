package failurelog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureLogger_SaveFailureWritesJSONAndText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := New(dir)
	f.StartTask("task-1", "how many hours did alice log?", "spec-42")
	f.LogContextResults("task-1", "who_am_i", []string{"who_am_i: ok"})
	f.LogContextResults("task-1", "time_search", []string{"time_search: FAILED no such project"})

	require.NoError(t, f.SaveFailure("task-1", 0.0, "eval says: wrong project"))

	jsonData, err := os.ReadFile(filepath.Join(dir, "spec-42.json"))
	require.NoError(t, err)
	var summary failureSummary
	require.NoError(t, json.Unmarshal(jsonData, &summary))
	assert.Equal(t, "task-1", summary.TaskID)
	assert.Equal(t, "spec-42", summary.SpecID)
	require.NotNil(t, summary.Score)
	assert.Equal(t, 0.0, *summary.Score)
	assert.Len(t, summary.Context, 2)

	textData, err := os.ReadFile(filepath.Join(dir, "spec-42.txt"))
	require.NoError(t, err)
	text := string(textData)
	assert.Contains(t, text, "spec-42")
	assert.Contains(t, text, "time_search")
	assert.Contains(t, text, "FAILED")
}

func TestFailureLogger_SaveErrorUnknownTask(t *testing.T) {
	t.Parallel()

	f := New(t.TempDir())
	err := f.SaveError("never-started", "panic: nil pointer")
	assert.Error(t, err)
}

func TestFailureLogger_SaveErrorWritesSummary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := New(dir)
	f.StartTask("task-2", "do the thing", "spec-7")
	require.NoError(t, f.SaveError("task-2", "gonka node exhausted"))

	data, err := os.ReadFile(filepath.Join(dir, "spec-7.json"))
	require.NoError(t, err)
	var summary failureSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Nil(t, summary.Score)
	assert.Equal(t, "gonka node exhausted", summary.Error)
}

func TestFailureLogger_LogContextResultsIgnoresUnknownTask(t *testing.T) {
	t.Parallel()

	f := New(t.TempDir())
	// Should not panic even though "ghost" was never started.
	f.LogContextResults("ghost", "who_am_i", []string{"ok"})
}
