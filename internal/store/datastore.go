package store

import "github.com/jward/paradigm/internal/features"

// DataStore is the interface for ingestion-phase writes. Both Store (direct
// SQLite) and BatchedStore (in-memory buffering for parallel extraction)
// implement it.
type DataStore interface {
	// InsertSample returns the assigned sample ID.
	InsertSample(s *Sample) (int64, error)
	// InsertFeatures stores the feature row for a sample ID returned by
	// InsertSample on the same DataStore.
	InsertFeatures(sampleID int64, v features.Vector) error
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
