// Package features turns a source sample and its declared language into a
// fixed-schema concurrency feature vector using lexical pattern matching.
package features

import (
	"crypto/sha256"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
)

// PatternTable maps a lowercase language identifier to the ordered pattern
// strings considered indicative of concurrency constructs in that language.
// A PatternTable is immutable once constructed and safe for concurrent use.
type PatternTable struct {
	patterns map[string][]string
}

// NewPatternTable builds a PatternTable from a language → patterns mapping.
// Language keys are lowercased. Duplicate patterns within a language are
// collapsed, keeping first-occurrence order. Keys differing only in case
// are merged in sorted key order. Empty patterns and languages with no
// patterns are rejected: an empty pattern would match everywhere.
func NewPatternTable(m map[string][]string) (*PatternTable, error) {
	t := &PatternTable{patterns: make(map[string][]string, len(m))}
	for _, lang := range slices.Sorted(maps.Keys(m)) {
		pats := m[lang]
		key := strings.ToLower(strings.TrimSpace(lang))
		if key == "" {
			return nil, fmt.Errorf("pattern table: empty language identifier")
		}
		if len(pats) == 0 {
			return nil, fmt.Errorf("pattern table: language %q has no patterns", key)
		}
		seen := make(map[string]bool, len(pats))
		merged := t.patterns[key]
		for _, p := range merged {
			seen[p] = true
		}
		for _, p := range pats {
			if p == "" {
				return nil, fmt.Errorf("pattern table: language %q has an empty pattern", key)
			}
			if seen[p] {
				continue
			}
			seen[p] = true
			merged = append(merged, p)
		}
		t.patterns[key] = merged
	}
	return t, nil
}

// DefaultPatternTable returns the reference pattern table.
func DefaultPatternTable() *PatternTable {
	t, err := NewPatternTable(DefaultPatterns())
	if err != nil {
		panic(fmt.Sprintf("features: default pattern table: %v", err))
	}
	return t
}

// DefaultPatterns returns a fresh copy of the reference language → patterns
// mapping. Callers may modify the result before passing it to NewPatternTable.
func DefaultPatterns() map[string][]string {
	return map[string][]string{
		"java":       {"synchronized", "Thread", "Executor", "Lock", "await", "Future"},
		"go":         {"go ", "chan", "select", "sync.Mutex", "WaitGroup"},
		"python":     {"async def", "await", "threading.", "asyncio."},
		"javascript": {"async ", "await", "Promise"},
		"rust":       {"async ", "await", "tokio::", "Mutex", "Arc"},
		"erlang":     {"spawn", "!", "receive"},
		"scala":      {"Actor", "Future", "ExecutionContext"},
		"cpp":        {"std::thread", "std::mutex", "std::async"},
		"csharp":     {"async ", "await", "Task", "lock"},
	}
}

// Patterns returns the patterns for language (matched case-insensitively),
// or nil when the language is unknown.
func (t *PatternTable) Patterns(language string) []string {
	if t == nil {
		return nil
	}
	pats := t.patterns[strings.ToLower(language)]
	if len(pats) == 0 {
		return nil
	}
	out := make([]string, len(pats))
	copy(out, pats)
	return out
}

// Languages returns the table's language identifiers in sorted order.
func (t *PatternTable) Languages() []string {
	if t == nil {
		return nil
	}
	langs := make([]string, 0, len(t.patterns))
	for l := range t.patterns {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Map returns a copy of the table as a plain mapping.
func (t *PatternTable) Map() map[string][]string {
	if t == nil {
		return map[string][]string{}
	}
	out := make(map[string][]string, len(t.patterns))
	for _, l := range t.Languages() {
		out[l] = t.Patterns(l)
	}
	return out
}

// Has reports whether language has an entry in the table.
func (t *PatternTable) Has(language string) bool {
	if t == nil {
		return false
	}
	_, ok := t.patterns[strings.ToLower(language)]
	return ok
}

// KeywordFamilies is the language-agnostic configuration behind the binary
// indicators, the density aggregation stems and the composite score weights.
type KeywordFamilies struct {
	Threads  []string
	Locks    []string
	Channels []string
	Actors   []string
	Async    []string

	LockStems    []string
	ChannelStems []string
	ActorStems   []string
	AsyncStems   []string

	Weights Weights
}

// Weights are the composite concurrency score weights.
type Weights struct {
	Threads  float64
	Locks    float64
	Channels float64
	Actors   float64
	Async    float64
}

// Sum returns the total of all five weights.
func (w Weights) Sum() float64 {
	return w.Threads + w.Locks + w.Channels + w.Actors + w.Async
}

// DefaultKeywordFamilies returns the reference indicator families, stems and
// weights.
func DefaultKeywordFamilies() KeywordFamilies {
	return KeywordFamilies{
		Threads:  []string{"thread", "spawn", "go ", "task"},
		Locks:    []string{"lock", "mutex", "synchronized"},
		Channels: []string{"chan", "!", "send", "receive"},
		Actors:   []string{"actor", "spawn"},
		Async:    []string{"async", "await", "promise", "future"},

		LockStems:    []string{"lock", "mutex"},
		ChannelStems: []string{"chan"},
		ActorStems:   []string{"spawn", "actor"},
		AsyncStems:   []string{"async", "await"},

		Weights: Weights{
			Threads:  0.20,
			Locks:    0.20,
			Channels: 0.25,
			Actors:   0.20,
			Async:    0.15,
		},
	}
}

// Hash returns a stable SHA-256 hex digest of the table and keyword families.
// Feature rows computed under a different hash are stale.
func Hash(t *PatternTable, kf KeywordFamilies) string {
	h := sha256.New()
	for _, l := range t.Languages() {
		fmt.Fprintf(h, "lang:%s\n", l)
		for _, p := range t.patterns[l] {
			fmt.Fprintf(h, "  pat:%q\n", p)
		}
	}
	for _, fam := range []struct {
		name  string
		words []string
	}{
		{"threads", kf.Threads},
		{"locks", kf.Locks},
		{"channels", kf.Channels},
		{"actors", kf.Actors},
		{"async", kf.Async},
		{"lock_stems", kf.LockStems},
		{"channel_stems", kf.ChannelStems},
		{"actor_stems", kf.ActorStems},
		{"async_stems", kf.AsyncStems},
	} {
		fmt.Fprintf(h, "family:%s:%q\n", fam.name, fam.words)
	}
	w := kf.Weights
	fmt.Fprintf(h, "weights:%g,%g,%g,%g,%g\n", w.Threads, w.Locks, w.Channels, w.Actors, w.Async)
	return fmt.Sprintf("%x", h.Sum(nil))
}
