package paradigm

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corpusAnalysisConfig() AnalysisConfig {
	cfg := DefaultAnalysisConfig()
	cfg.Params.EmbedIterations = 300
	return cfg
}

func TestAnalyze_Corpus(t *testing.T) {
	t.Parallel()
	e, root := indexCorpus(t)
	ctx := context.Background()

	report, err := e.Analyze(ctx, corpusAnalysisConfig())
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	require.NoError(t, err)
	assert.False(t, report.CreatedAt.IsZero())

	require.Len(t, report.Diagnostics, 5)
	for i, d := range report.Diagnostics {
		assert.Equal(t, i+2, d.K)
		assert.GreaterOrEqual(t, d.Inertia, 0.0)
	}

	assert.Equal(t, 3, report.Fit.K)
	require.Len(t, report.Fit.Centroids, 3)
	require.False(t, math.IsNaN(report.Fit.Silhouette), "final fit silhouette is defined")
	assert.GreaterOrEqual(t, report.Fit.Silhouette, -1.0)
	assert.LessOrEqual(t, report.Fit.Silhouette, 1.0)
	require.Len(t, report.Assignments, 12)

	byPath := make(map[string]Assignment, len(report.Assignments))
	paths := make([]string, 0, len(report.Assignments))
	for _, a := range report.Assignments {
		assert.GreaterOrEqual(t, a.Cluster, 0)
		assert.Less(t, a.Cluster, 3)
		assert.False(t, math.IsNaN(a.Point.X) || math.IsNaN(a.Point.Y))
		rel, err := filepath.Rel(root, a.Path)
		require.NoError(t, err)
		byPath[filepath.ToSlash(rel)] = a
		paths = append(paths, a.Path)
	}
	assert.True(t, sort.StringsAreSorted(paths), "assignments follow dataset order")

	// Identical feature rows always share a cluster.
	assert.Equal(t, byPath["erlang/counter.erl"].Cluster, byPath["erlang/ping.erl"].Cluster)
	assert.Equal(t, byPath["python/fetch.py"].Cluster, byPath["python/poll.py"].Cluster)

	assert.Equal(t, []string{"erlang", "go", "java", "javascript", "python", "rust"}, report.CrossTab.Languages)
	assert.Equal(t, 12, report.CrossTab.Total())
	assert.Equal(t, []int{2, 2, 2, 2, 2, 2}, report.CrossTab.RowTotals())
	require.Len(t, report.Centroids.Rows, 3)
	sizes := 0
	for _, row := range report.Centroids.Rows {
		sizes += row.Size
	}
	assert.Equal(t, 12, sizes)
}

func TestAnalyze_Deterministic(t *testing.T) {
	t.Parallel()
	e, _ := indexCorpus(t)
	ctx := context.Background()
	cfg := corpusAnalysisConfig()

	first, err := e.Analyze(ctx, cfg)
	require.NoError(t, err)
	second, err := e.Analyze(ctx, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	require.False(t, math.IsNaN(first.Fit.Silhouette))
	assert.Equal(t, first.Fit, second.Fit)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.CrossTab, second.CrossTab)
}

func TestAnalyze_InvalidDataset(t *testing.T) {
	t.Parallel()
	e, _ := indexCorpus(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*AnalysisConfig)
		op     string
	}{
		{"k exceeds rows", func(c *AnalysisConfig) { c.K = 13 }, "validate"},
		{"candidate equals rows", func(c *AnalysisConfig) { c.CandidateK = []int{2, 12} }, "select_k"},
		{"perplexity too large", func(c *AnalysisConfig) {
			c.Languages = []string{"go", "java"}
			c.K = 2
			c.CandidateK = []int{2, 3}
		}, "embed_2d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := corpusAnalysisConfig()
			tt.mutate(&cfg)
			_, err := e.Analyze(ctx, cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDataset))
			var ide *InvalidDatasetError
			require.ErrorAs(t, err, &ide)
			assert.Equal(t, tt.op, ide.Op)
		})
	}
}

func TestAnalyze_EmptyStore(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	_, err := e.Analyze(context.Background(), DefaultAnalysisConfig())
	require.ErrorIs(t, err, ErrInvalidDataset)
}

func TestAnalyze_RejectsParams(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	cfg := DefaultAnalysisConfig()
	cfg.Params.NInit = 0
	_, err := e.Analyze(context.Background(), cfg)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidDataset))
}

func TestDataset_LanguageFilter(t *testing.T) {
	t.Parallel()
	e, _ := indexCorpus(t)

	rows, err := e.Dataset(context.Background(), "go", "rust")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Contains(t, []string{"go", "rust"}, r.Vector.Language)
	}

	mixed, err := e.Dataset(context.Background(), "Go", "RUST")
	require.NoError(t, err)
	assert.Equal(t, rows, mixed)
}
