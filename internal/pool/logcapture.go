package pool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/medvedikur/erc3-mine-sub001/internal/telemetry"
)

// threadColors cycles a fixed palette across worker indices so concurrent
// status lines stay visually distinguishable on a shared console (grounded
// on parallel/output.py's THREAD_COLORS).
var threadColors = []string{
	telemetry.ColorBlue, "\033[95m", telemetry.ColorYellow, telemetry.ColorGreen,
	"\033[96m", telemetry.ColorRed, "\033[92m", "\033[93m",
}

// consoleLock serializes status-line writes across every worker so two
// goroutines never interleave partial lines (grounded on output.py's
// _console_lock).
var consoleLock sync.Mutex

// ThreadStatus prints a short, colorized progress line to the real
// console, bypassing any per-task log capture.
func ThreadStatus(workerID int, specID, message string) {
	color := threadColors[workerID%len(threadColors)]
	label := specID
	if len(label) > 15 {
		label = label[:15]
	}
	prefix := telemetry.Colorize(color, fmt.Sprintf("[W%d:%-15s]", workerID, label))
	consoleLock.Lock()
	defer consoleLock.Unlock()
	fmt.Fprintf(os.Stdout, "%s %s\n", prefix, message)
}

// LogCapture writes one task's detailed trace to <logsDir>/<specID>.log.
// Each worker goroutine owns exactly one LogCapture at a time; it is not
// shared across goroutines the way consoleLock is.
type LogCapture struct {
	file *os.File
}

// NewLogCapture opens (truncating) the per-task log file and writes the
// task-context header (grounded on output.py's ThreadLogCapture).
func NewLogCapture(logsDir, taskID, specID, taskText string) (*LogCapture, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(logsDir, specID+".log"))
	if err != nil {
		return nil, err
	}
	lc := &LogCapture{file: f}
	bar := strings.Repeat("=", 60)
	fmt.Fprintf(f, "%s\nTASK CONTEXT\n%s\n", bar, bar)
	if taskID != "" {
		fmt.Fprintf(f, "Task ID:  %s\n", taskID)
	}
	fmt.Fprintf(f, "Spec ID:  %s\n", specID)
	if taskText != "" {
		fmt.Fprintf(f, "Question: %s\n", taskText)
	}
	fmt.Fprintf(f, "%s\n\n", bar)
	return lc, nil
}

// Write appends a line to the log file, ignoring blank writes.
func (lc *LogCapture) Write(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprint(lc.file, text)
}

// Close flushes and closes the log file.
func (lc *LogCapture) Close() error {
	return lc.file.Close()
}
