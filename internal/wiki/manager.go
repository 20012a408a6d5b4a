// Package wiki implements the wiki content-addressed disk cache and the
// per-worker WikiManager: the mutable, per-task view over whichever wiki
// version a task's back-office identity reports (spec §4.7/§5/§6.4,
// grounded on the shape of handlers.wiki referenced from
// agent/action_processor.py, the original source for which wasn't part of
// this checkout, designed directly from the spec's cache/normalization
// requirements).
package wiki

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is the shared, content-addressed on-disk cache: one directory per
// wiki hash, safe for concurrent reads and hash-partitioned writes (spec
// §5 "Wiki disk cache").
type Store struct {
	root string
}

// NewStore wraps a wiki_dump-style root directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) dirFor(hash string) string {
	return filepath.Join(s.root, hash)
}

// Load reads every cached page for a hash, or reports a cache miss.
func (s *Store) Load(hash string) (map[string]string, bool) {
	dir := s.dirFor(hash)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false
	}
	pages := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		pages[e.Name()] = string(data)
	}
	return pages, len(pages) > 0
}

// Save writes every page under hash's directory using a temp-then-rename
// per file, so concurrent writers of the same hash never observe a
// half-written page (spec §5 "writers use temp-then-rename per hash").
func (s *Store) Save(hash string, pages map[string]string) error {
	dir := s.dirFor(hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, content := range pages {
		final := filepath.Join(dir, name)
		tmp := final + ".tmp"
		if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
			return err
		}
		if err := os.Rename(tmp, final); err != nil {
			return err
		}
	}
	return nil
}

// HashContent derives the content-address for a set of pages: the sha1 of
// each page's name and content, sorted for determinism.
func HashContent(pages map[string]string) string {
	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)
	h := sha1.New()
	for _, name := range names {
		fmt.Fprintf(h, "%s\x00%s\x00", name, pages[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Manager is the per-worker, per-task view over one wiki version. It owns
// mutable state (current hash, loaded pages) and must not be shared across
// concurrent tasks, matching resources.py's one-WikiManager-per-thread
// rule: two tasks on different wiki versions must not step on each other's
// sync() state.
type Manager struct {
	store      *Store
	hash       string
	pages      map[string]string
	loadedAPI  map[string]string
}

// NewManager constructs an empty, unsynced manager; Sync must be called
// once the task's identity (and its wiki_hash) is known.
func NewManager(store *Store) *Manager {
	return &Manager{store: store, pages: map[string]string{}, loadedAPI: map[string]string{}}
}

// Sync switches the manager onto the given wiki hash, populating pages
// from disk cache when available and deferring to API-fetched content
// otherwise — fetch is the caller-supplied back-office call, invoked only
// on a cache miss.
func (m *Manager) Sync(hash string, fetch func() (map[string]string, error)) error {
	if hash == m.hash && len(m.pages) > 0 {
		return nil
	}
	if cached, ok := m.store.Load(hash); ok {
		m.hash = hash
		m.pages = cached
		return nil
	}
	pages, err := fetch()
	if err != nil {
		return err
	}
	m.hash = hash
	m.pages = pages
	return m.store.Save(hash, pages)
}

// Page returns a cached page's content and whether it's present.
func (m *Manager) Page(name string) (string, bool) {
	p, ok := m.pages[name]
	return p, ok
}

// Pages lists every cached page name, sorted.
func (m *Manager) Pages() []string {
	out := make([]string, 0, len(m.pages))
	for name := range m.pages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RecordLoadedAPI records content as loaded via the API this task, distinct
// from the disk cache (mirrors loaded_wiki_content_api vs.
// loaded_wiki_content in TurnState).
func (m *Manager) RecordLoadedAPI(name, content string) {
	m.loadedAPI[name] = content
}

// ContextSummary renders the short "here's what's cached" blurb fed into
// the initial task message (spec §4.7 "a wiki-context summary").
func (m *Manager) ContextSummary() string {
	if len(m.pages) == 0 {
		return "(no wiki pages cached)"
	}
	names := m.Pages()
	return fmt.Sprintf("wiki version %s, %d cached pages: %s", m.hash, len(names), strings.Join(names, ", "))
}

// equivalenceTable maps visually-equivalent Unicode runes to their ASCII
// stand-in, used to defeat silent model-induced Unicode corruption on wiki
// updates (spec §4.2 "Wiki update" / I10).
var equivalenceTable = map[rune]rune{
	'‐': '-', '‑': '-', '‒': '-', '–': '-', '—': '-', '―': '-',
	'‘': '\'', '’': '\'', '“': '"', '”': '"',
}

// NormalizeEquivalence applies the dash/quote equivalence table so two
// strings that differ only by these Unicode substitutions compare equal.
func NormalizeEquivalence(s string) string {
	return strings.Map(func(r rune) rune {
		if repl, ok := equivalenceTable[r]; ok {
			return repl
		}
		return r
	}, s)
}

// ResolveUpdateContent implements I10: if content matches a previously
// loaded page after Unicode-equivalence normalization, substitute the
// stored original bytes instead of whatever variant the model produced.
func (m *Manager) ResolveUpdateContent(file, submitted string) string {
	original, ok := m.pages[file]
	if !ok {
		return submitted
	}
	if NormalizeEquivalence(original) == NormalizeEquivalence(submitted) {
		return original
	}
	return submitted
}
