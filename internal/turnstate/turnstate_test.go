package turnstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClearTurnAggregators_ResetsPerTurnScratchOnly(t *testing.T) {
	t.Parallel()

	s := New(10)
	s.MemberProjectsBatch["E1"] = []string{"P1", "P2"}
	s.HadMutations = true
	s.CurrentTurn = 3

	s.ClearTurnAggregators()

	assert.Empty(t, s.MemberProjectsBatch)
	assert.True(t, s.HadMutations, "per-task accumulators must survive ClearTurnAggregators")
	assert.Equal(t, 3, s.CurrentTurn)
}

func TestSync_MergesPermittedKeysOnly(t *testing.T) {
	t.Parallel()

	s := New(10)
	s.HadMutations = true // pipeline-owned directly, not via Sync

	s.Sync(Snapshot{
		DeletedWikiFiles:  map[string]bool{"old-page": true},
		LoadedWikiContent: map[string]string{"home": "hi"},
		CustomerContacts:  map[string]CustomerContact{"C1": {Name: "Acme"}},
	})

	assert.True(t, s.DeletedWikiFiles["old-page"])
	assert.Equal(t, "hi", s.LoadedWikiContent["home"])
	assert.Equal(t, "Acme", s.CustomerContacts["C1"].Name)
	assert.True(t, s.HadMutations, "Sync must not clobber fields it doesn't own")
}

func TestSync_AccumulatedProjectIDsDedupesAndPreservesOrder(t *testing.T) {
	t.Parallel()

	s := New(10)
	s.Sync(Snapshot{AccumulatedProjectIDs: []string{"P1", "P2"}})
	s.Sync(Snapshot{AccumulatedProjectIDs: []string{"P2", "P3"}})

	assert.Equal(t, []string{"P1", "P2", "P3"}, s.AccumulatedProjectIDs)
}

func TestSync_LoadedWikiContentMergesAcrossCalls(t *testing.T) {
	t.Parallel()

	s := New(10)
	s.Sync(Snapshot{LoadedWikiContent: map[string]string{"home": "v1"}})
	s.Sync(Snapshot{LoadedWikiContent: map[string]string{"faq": "v2"}})

	assert.Equal(t, "v1", s.LoadedWikiContent["home"])
	assert.Equal(t, "v2", s.LoadedWikiContent["faq"])
}

func TestToSharedDict_ReflectsCurrentState(t *testing.T) {
	t.Parallel()

	s := New(20)
	s.CurrentTurn = 5
	s.LastThoughts = "checking the wiki"

	shared := s.ToSharedDict()
	assert.Equal(t, 5, shared["current_turn"])
	assert.Equal(t, 20, shared["max_turns"])
	assert.Equal(t, "checking the wiki", shared["last_thoughts"])
}

func TestToSharedDict_SurfacesToday(t *testing.T) {
	t.Parallel()

	s := New(20)
	assert.Equal(t, "", s.ToSharedDict()["today"], "unset until who_am_i resolves identity")

	s.Today = "2026-07-30"
	assert.Equal(t, "2026-07-30", s.ToSharedDict()["today"])
}
