package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/paradigm/internal/features"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// insertTestSample inserts a sample and its feature row.
func insertTestSample(t *testing.T, s *Store, path, lang string, v features.Vector) *Sample {
	t.Helper()
	smp := &Sample{
		Path:         path,
		Language:     lang,
		Hash:         "abc123",
		LineCount:    10,
		SyntaxErrors: 0,
		LastIndexed:  time.Now().Truncate(time.Second),
	}
	id, err := s.InsertSample(smp)
	require.NoError(t, err)
	require.Positive(t, id)
	v.Language = lang
	require.NoError(t, s.InsertFeatures(id, v))
	return smp
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"samples", "features", "metadata"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestMigrate_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

// =============================================================================
// Samples
// =============================================================================

func TestSample_InsertAndRetrieve(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := time.Now().Truncate(time.Second)
	smp := &Sample{Path: "/src/Main.java", Language: "java", Hash: "h1", LineCount: 42, SyntaxErrors: 2, LastIndexed: now}
	id, err := s.InsertSample(smp)
	require.NoError(t, err)
	assert.Equal(t, id, smp.ID)

	got, err := s.SampleByPath("/src/Main.java")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "java", got.Language)
	assert.Equal(t, "h1", got.Hash)
	assert.Equal(t, 42, got.LineCount)
	assert.Equal(t, 2, got.SyntaxErrors)
	assert.True(t, now.Equal(got.LastIndexed))

	byID, err := s.SampleByID(id)
	require.NoError(t, err)
	assert.Equal(t, got, byID)
}

func TestSample_ByPathNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	got, err := s.SampleByPath("/missing.go")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSample_DuplicatePathRejected(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestSample(t, s, "/a.go", "go", features.Vector{})
	_, err := s.InsertSample(&Sample{Path: "/a.go", Language: "go", Hash: "x", LineCount: 1})
	require.Error(t, err)
}

func TestSamples_OrderedByPath(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestSample(t, s, "/c.rs", "rust", features.Vector{})
	insertTestSample(t, s, "/a.go", "go", features.Vector{})
	insertTestSample(t, s, "/b.go", "go", features.Vector{})

	all, err := s.Samples()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/a.go", all[0].Path)
	assert.Equal(t, "/b.go", all[1].Path)
	assert.Equal(t, "/c.rs", all[2].Path)
}

func TestUpdateSampleHash(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	smp := insertTestSample(t, s, "/a.go", "go", features.Vector{})
	require.NoError(t, s.UpdateSampleHash(smp.ID, "new", 7))

	got, err := s.SampleByID(smp.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Hash)
	assert.Equal(t, 7, got.LineCount)
}

func TestDeleteSample(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	smp := insertTestSample(t, s, "/a.go", "go", features.Vector{HasChannels: 1, ChannelDensity: 0.5})

	require.NoError(t, s.DeleteSample(smp.ID))

	got, err := s.SampleByPath("/a.go")
	require.NoError(t, err)
	assert.Nil(t, got)
	v, err := s.FeaturesBySample(smp.ID)
	require.NoError(t, err)
	assert.Nil(t, v)
}

// =============================================================================
// Features
// =============================================================================

func TestFeatures_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	want := features.Vector{
		HasThreads: 1, HasLocks: 1, HasAsync: 1,
		LockDensity: 2.0, AsyncDensity: 0.25,
		ConcurrencyScore: 0.55,
	}
	smp := insertTestSample(t, s, "/Main.java", "java", want)
	want.Language = "java"

	got, err := s.FeaturesBySample(smp.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestFeatures_InsertReplaces(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	smp := insertTestSample(t, s, "/a.go", "go", features.Vector{ChannelDensity: 1})
	require.NoError(t, s.InsertFeatures(smp.ID, features.Vector{Language: "go", ChannelDensity: 3}))

	rows, err := s.FeatureRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3.0, rows[0].Vector.ChannelDensity)
}

func TestFeatureRows_FilterAndOrder(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestSample(t, s, "/z.erl", "erlang", features.Vector{HasActors: 1, ActorDensity: 0.2})
	insertTestSample(t, s, "/b.go", "go", features.Vector{HasChannels: 1})
	insertTestSample(t, s, "/a.java", "java", features.Vector{HasLocks: 1})
	insertTestSample(t, s, "/c.go", "Go", features.Vector{HasChannels: 1})

	rows, err := s.FeatureRows()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"/a.java", "/b.go", "/c.go", "/z.erl"},
		[]string{rows[0].Path, rows[1].Path, rows[2].Path, rows[3].Path})
	assert.Equal(t, "Go", rows[2].Vector.Language, "declared language is kept verbatim")
	assert.Equal(t, "erlang", rows[3].Vector.Language)
	assert.Equal(t, 0.2, rows[3].Vector.ActorDensity)

	filtered, err := s.FeatureRows("GO", "erlang")
	require.NoError(t, err)
	require.Len(t, filtered, 3)
	assert.Equal(t, "/b.go", filtered[0].Path)
	assert.Equal(t, "/c.go", filtered[1].Path)
	assert.Equal(t, "/z.erl", filtered[2].Path)
}

func TestLanguageCounts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestSample(t, s, "/a.go", "go", features.Vector{})
	insertTestSample(t, s, "/b.go", "go", features.Vector{})
	insertTestSample(t, s, "/c.rs", "rust", features.Vector{})
	insertTestSample(t, s, "/d.java", "java", features.Vector{})

	counts, err := s.LanguageCounts()
	require.NoError(t, err)
	assert.Equal(t, []LanguageCount{
		{Language: "go", Count: 2},
		{Language: "java", Count: 1},
		{Language: "rust", Count: 1},
	}, counts)
}

// =============================================================================
// Metadata
// =============================================================================

func TestMetadata(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	v, err := s.GetMetadata("patterns_hash")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetMetadata("patterns_hash", "one"))
	require.NoError(t, s.SetMetadata("patterns_hash", "two"))
	v, err = s.GetMetadata("patterns_hash")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestContentHash(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ContentHash(nil))
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
}
