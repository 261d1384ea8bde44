package store

import (
	"sync"

	"github.com/jward/paradigm/internal/features"
)

// PendingFeatures is a buffered feature row keyed by a (possibly fake)
// sample ID.
type PendingFeatures struct {
	SampleID int64
	Vector   features.Vector
}

// BatchedStore buffers ingestion writes in memory using fake (negative)
// sample IDs. It implements DataStore so the extraction workers can write to
// it without knowing whether they're hitting SQLite or an in-memory buffer.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
type BatchedStore struct {
	mu sync.Mutex

	Samples  []Sample
	Features []PendingFeatures
	// Replaced holds real sample IDs whose rows are superseded by this batch
	// and must be deleted before it is inserted.
	Replaced []int64

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates an empty BatchedStore.
func NewBatchedStore() *BatchedStore {
	return &BatchedStore{nextFakeID: -1}
}

func (b *BatchedStore) InsertSample(s *Sample) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.nextFakeID
	b.nextFakeID--
	s.ID = fakeID
	b.Samples = append(b.Samples, *s)
	return fakeID, nil
}

func (b *BatchedStore) InsertFeatures(sampleID int64, v features.Vector) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Features = append(b.Features, PendingFeatures{SampleID: sampleID, Vector: v})
	return nil
}

// Replace marks an existing sample for deletion when the batch commits.
func (b *BatchedStore) Replace(sampleID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Replaced = append(b.Replaced, sampleID)
}

// Len returns the number of buffered samples.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Samples)
}
