package features

import (
	"math"
	"strings"
)

// Extractor computes feature vectors. It holds only immutable configuration,
// so a single Extractor may be shared across goroutines.
type Extractor struct {
	table    *PatternTable
	families KeywordFamilies
}

// NewExtractor returns an Extractor over the given pattern table and keyword
// families. A nil table behaves as an empty table.
func NewExtractor(table *PatternTable, families KeywordFamilies) *Extractor {
	if table == nil {
		table = &PatternTable{patterns: map[string][]string{}}
	}
	return &Extractor{table: table, families: families}
}

// NewDefaultExtractor returns an Extractor over the reference configuration.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(DefaultPatternTable(), DefaultKeywordFamilies())
}

// Table returns the Extractor's pattern table.
func (e *Extractor) Table() *PatternTable { return e.table }

// Families returns the Extractor's keyword families.
func (e *Extractor) Families() KeywordFamilies { return e.families }

// Extract returns the feature vector for code declared as language.
//
// Pattern counts are case-insensitive, non-overlapping substring counts with
// no word boundaries, so matches inside identifiers are counted. Unknown
// languages yield zero densities; the binary indicators scan the whole text
// regardless of language.
func (e *Extractor) Extract(code, language string) Vector {
	lower := strings.ToLower(code)
	lines := LineCount(code)

	v := Vector{Language: language}
	for _, p := range e.table.Patterns(language) {
		lp := strings.ToLower(p)
		density := float64(strings.Count(lower, lp)) / float64(lines)
		if density == 0 {
			continue
		}
		if containsAny(lp, e.families.LockStems) {
			v.LockDensity += density
		}
		if containsAny(lp, e.families.ChannelStems) {
			v.ChannelDensity += density
		}
		if containsAny(lp, e.families.ActorStems) {
			v.ActorDensity += density
		}
		if containsAny(lp, e.families.AsyncStems) {
			v.AsyncDensity += density
		}
	}

	v.HasThreads = indicator(lower, e.families.Threads)
	v.HasLocks = indicator(lower, e.families.Locks)
	v.HasChannels = indicator(lower, e.families.Channels)
	v.HasActors = indicator(lower, e.families.Actors)
	v.HasAsync = indicator(lower, e.families.Async)

	w := e.families.Weights
	score := float64(v.HasThreads)*w.Threads +
		float64(v.HasLocks)*w.Locks +
		float64(v.HasChannels)*w.Channels +
		float64(v.HasActors)*w.Actors +
		float64(v.HasAsync)*w.Async
	v.ConcurrencyScore = Round3(score)

	return v
}

// PatternCounts returns the raw per-pattern counts and densities for code
// declared as language, in pattern table order.
func (e *Extractor) PatternCounts(code, language string) []PatternCount {
	lower := strings.ToLower(code)
	lines := float64(LineCount(code))
	pats := e.table.Patterns(language)
	counts := make([]PatternCount, 0, len(pats))
	for _, p := range pats {
		n := strings.Count(lower, strings.ToLower(p))
		counts = append(counts, PatternCount{Pattern: p, Count: n, Density: float64(n) / lines})
	}
	return counts
}

// LineCount returns the number of newline-delimited lines in code, floored
// at 1. A trailing newline does not start a new line.
func LineCount(code string) int {
	n := strings.Count(code, "\n")
	if code != "" && !strings.HasSuffix(code, "\n") {
		n++
	}
	if n < 1 {
		return 1
	}
	return n
}

// Round3 rounds x to 3 decimal digits.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func indicator(lower string, keywords []string) int {
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return 1
		}
	}
	return 0
}

func containsAny(s string, stems []string) bool {
	for _, stem := range stems {
		if stem != "" && strings.Contains(s, strings.ToLower(stem)) {
			return true
		}
	}
	return false
}
