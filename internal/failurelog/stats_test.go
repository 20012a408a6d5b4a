package failurelog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestSessionStats_FinishTaskAccumulates(t *testing.T) {
	t.Parallel()

	s := NewSessionStats()
	s.StartTask("t1")
	s.FinishTask("t1", "spec-1", floatPtr(1.0), "", 3)

	s.StartTask("t2")
	s.FinishTask("t2", "spec-2", floatPtr(0.5), "", 5)

	s.StartTask("t3")
	s.FinishTask("t3", "spec-3", nil, "boom", 1)

	snap := s.Snapshot()
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 2, snap.Successful)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.Perfect)
}

func TestSessionStats_MaxConcurrencyHighWaterMark(t *testing.T) {
	t.Parallel()

	s := NewSessionStats()
	s.StartTask("t1")
	s.StartTask("t2")
	s.StartTask("t3")
	s.FinishTask("t1", "s1", floatPtr(1.0), "", 1)
	s.FinishTask("t2", "s2", floatPtr(1.0), "", 1)
	s.StartTask("t4")
	s.FinishTask("t3", "s3", floatPtr(1.0), "", 1)
	s.FinishTask("t4", "s4", floatPtr(1.0), "", 1)

	assert.Equal(t, 3, s.Snapshot().MaxConcurrency)
}

func TestSessionStats_ConcurrentSafe(t *testing.T) {
	t.Parallel()

	s := NewSessionStats()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "t" + string(rune('a'+i))
			s.StartTask(id)
			s.FinishTask(id, id, floatPtr(1.0), "", 1)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, s.Snapshot().Total)
	assert.Len(t, s.Samples(), 20)
}
