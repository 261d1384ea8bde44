package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/paradigm/internal/features"
)

func TestBatchedStore_FakeIDs(t *testing.T) {
	t.Parallel()
	batch := NewBatchedStore()

	id1, err := batch.InsertSample(&Sample{Path: "/a.go", Language: "go"})
	require.NoError(t, err)
	id2, err := batch.InsertSample(&Sample{Path: "/b.go", Language: "go"})
	require.NoError(t, err)

	assert.Equal(t, int64(-1), id1)
	assert.Equal(t, int64(-2), id2)
	assert.Equal(t, 2, batch.Len())
}

func TestCommitBatch_RemapsFakeIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	batch := NewBatchedStore()

	for _, p := range []string{"/a.go", "/b.rs"} {
		smp := &Sample{Path: p, Language: "go", Hash: "h", LineCount: 3, SyntaxErrors: -1}
		id, err := batch.InsertSample(smp)
		require.NoError(t, err)
		require.NoError(t, batch.InsertFeatures(id, features.Vector{Language: "go", ChannelDensity: 1}))
	}

	require.NoError(t, s.CommitBatch(batch))

	rows, err := s.FeatureRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Positive(t, r.SampleID)
		assert.Equal(t, 1.0, r.Vector.ChannelDensity)
	}
	smp, err := s.SampleByPath("/b.rs")
	require.NoError(t, err)
	assert.Equal(t, -1, smp.SyntaxErrors)
}

func TestCommitBatch_Replaced(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	old := insertTestSample(t, s, "/a.go", "go", features.Vector{ChannelDensity: 1})

	batch := NewBatchedStore()
	batch.Replace(old.ID)
	id, err := batch.InsertSample(&Sample{Path: "/a.go", Language: "go", Hash: "new", LineCount: 1})
	require.NoError(t, err)
	require.NoError(t, batch.InsertFeatures(id, features.Vector{Language: "go", ChannelDensity: 2}))

	require.NoError(t, s.CommitBatch(batch))

	got, err := s.SampleByPath("/a.go")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Hash)

	all, err := s.Samples()
	require.NoError(t, err)
	assert.Len(t, all, 1, "old sample is gone")

	rows, err := s.FeatureRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0].Vector.ChannelDensity)
}

func TestCommitBatch_UnknownFakeIDFails(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	batch := NewBatchedStore()
	require.NoError(t, batch.InsertFeatures(-7, features.Vector{Language: "go"}))

	require.Error(t, s.CommitBatch(batch))

	rows, err := s.FeatureRows()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBatchedStore_ConcurrentInserts(t *testing.T) {
	t.Parallel()
	batch := NewBatchedStore()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				id, err := batch.InsertSample(&Sample{Language: "go"})
				assert.NoError(t, err)
				assert.NoError(t, batch.InsertFeatures(id, features.Vector{}))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, batch.Len())
	seen := make(map[int64]bool)
	for _, smp := range batch.Samples {
		assert.False(t, seen[smp.ID], "duplicate fake id %d", smp.ID)
		seen[smp.ID] = true
	}
}
