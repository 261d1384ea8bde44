package store

import (
	"time"

	"github.com/jward/paradigm/internal/features"
)

// Sample is one ingested source: a file on disk or a named in-memory source.
// SyntaxErrors is -1 when no grammar was available for the language.
type Sample struct {
	ID           int64
	Path         string
	Language     string
	Hash         string
	LineCount    int
	SyntaxErrors int
	LastIndexed  time.Time
}

// FeatureRow is a persisted feature vector joined with its sample's path.
type FeatureRow struct {
	SampleID int64
	Path     string
	Vector   features.Vector
}

// LanguageCount is the number of feature rows declared with one language.
type LanguageCount struct {
	Language string
	Count    int
}
