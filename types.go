package paradigm

import (
	"github.com/jward/paradigm/internal/cluster"
	"github.com/jward/paradigm/internal/features"
	"github.com/jward/paradigm/internal/store"
)

// Public type aliases for internal types used in the Engine and QueryBuilder
// APIs. External consumers use these names; no conversion is needed.

type Store = store.Store
type Sample = store.Sample
type FeatureRow = store.FeatureRow
type LanguageCount = store.LanguageCount

type PatternTable = features.PatternTable
type KeywordFamilies = features.KeywordFamilies
type FeatureVector = features.Vector

type InvalidDatasetError = cluster.InvalidDatasetError

// ErrInvalidDataset matches every dataset precondition failure raised by
// Analyze.
var ErrInvalidDataset = cluster.ErrInvalidDataset
