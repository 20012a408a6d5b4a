package wiki

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "wiki_dump"))
	pages := map[string]string{"home": "hello", "onboarding": "welcome"}
	hash := HashContent(pages)

	require.NoError(t, store.Save(hash, pages))

	loaded, ok := store.Load(hash)
	require.True(t, ok)
	assert.Equal(t, pages, loaded)
}

func TestStore_LoadMiss(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "wiki_dump"))
	_, ok := store.Load("does-not-exist")
	assert.False(t, ok)
}

func TestHashContent_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := map[string]string{"z": "1", "a": "2"}
	b := map[string]string{"a": "2", "z": "1"}
	assert.Equal(t, HashContent(a), HashContent(b))
}

func TestHashContent_ContentSensitive(t *testing.T) {
	t.Parallel()

	a := map[string]string{"home": "v1"}
	b := map[string]string{"home": "v2"}
	assert.NotEqual(t, HashContent(a), HashContent(b))
}

func TestManager_SyncPopulatesFromAPIOnMiss(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "wiki_dump"))
	mgr := NewManager(store)

	fetchCalls := 0
	fetch := func() (map[string]string, error) {
		fetchCalls++
		return map[string]string{"home": "hi"}, nil
	}

	require.NoError(t, mgr.Sync("h1", fetch))
	assert.Equal(t, 1, fetchCalls)
	content, ok := mgr.Page("home")
	require.True(t, ok)
	assert.Equal(t, "hi", content)

	// Re-syncing the same hash must not hit the fetch again.
	require.NoError(t, mgr.Sync("h1", fetch))
	assert.Equal(t, 1, fetchCalls)
}

func TestManager_SyncPopulatesFromDiskCacheWithoutFetch(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "wiki_dump"))
	pages := map[string]string{"home": "cached"}
	require.NoError(t, store.Save("h2", pages))

	mgr := NewManager(store)
	fetchCalls := 0
	err := mgr.Sync("h2", func() (map[string]string, error) {
		fetchCalls++
		return nil, errors.New("should not be called on a cache hit")
	})
	require.NoError(t, err)
	assert.Equal(t, 0, fetchCalls)
	content, ok := mgr.Page("home")
	require.True(t, ok)
	assert.Equal(t, "cached", content)
}

func TestManager_SyncPropagatesFetchError(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "wiki_dump"))
	mgr := NewManager(store)

	err := mgr.Sync("h3", func() (map[string]string, error) {
		return nil, errors.New("back-office unreachable")
	})
	assert.Error(t, err)
}

func TestNormalizeEquivalence(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"em—dash", "em-dash"},
		{"en–dash", "en-dash"},
		{"‘curly’", "'curly'"},
		{"“quoted”", `"quoted"`},
		{"plain ascii", "plain ascii"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeEquivalence(tc.in))
	}
}

func TestManager_ResolveUpdateContent_PreservesOriginalBytesOnEquivalence(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "wiki_dump"))
	mgr := NewManager(store)
	require.NoError(t, mgr.Sync("h4", func() (map[string]string, error) {
		return map[string]string{"home": "line one - line two"}, nil
	}))

	// Model re-submits the same content but with an em-dash substituted for
	// the hyphen; I10 requires the original ASCII bytes win, not the
	// model's variant.
	submitted := "line one — line two"
	resolved := mgr.ResolveUpdateContent("home", submitted)
	assert.Equal(t, "line one - line two", resolved)
}

func TestManager_ResolveUpdateContent_DistinctContentPassesThrough(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "wiki_dump"))
	mgr := NewManager(store)
	require.NoError(t, mgr.Sync("h5", func() (map[string]string, error) {
		return map[string]string{"home": "original"}, nil
	}))

	resolved := mgr.ResolveUpdateContent("home", "genuinely different content")
	assert.Equal(t, "genuinely different content", resolved)
}

func TestManager_ResolveUpdateContent_UnknownFilePassesThrough(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "wiki_dump"))
	mgr := NewManager(store)
	assert.Equal(t, "anything", mgr.ResolveUpdateContent("never-loaded", "anything"))
}

func TestManager_ContextSummary(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "wiki_dump"))
	mgr := NewManager(store)
	assert.Equal(t, "(no wiki pages cached)", mgr.ContextSummary())

	require.NoError(t, mgr.Sync("h6", func() (map[string]string, error) {
		return map[string]string{"home": "hi", "faq": "q and a"}, nil
	}))
	summary := mgr.ContextSummary()
	assert.Contains(t, summary, "h6")
	assert.Contains(t, summary, "2 cached pages")
	assert.Contains(t, summary, "faq")
	assert.Contains(t, summary, "home")
}
