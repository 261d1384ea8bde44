package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/paradigm"
	"github.com/jward/paradigm/internal/cluster"
)

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	assert.Equal(t, root, findRepoRoot(root))
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	deep := filepath.Join(root, "sub", "deep")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	assert.Equal(t, root, findRepoRoot(deep))
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	assert.Equal(t, dir, findRepoRoot(dir))
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.ErrorContains(t, validateFormat("yaml"), "json or text")
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()
	level, err := parseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = parseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = parseLogLevel("loud")
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"go", "java"}, splitList(" go, ,java,"))
	assert.Nil(t, splitList(""))
}

func TestReportToCLI_NaNSilhouetteEncodes(t *testing.T) {
	t.Parallel()
	report := &paradigm.Report{
		RunID:     "run",
		CreatedAt: time.Unix(0, 0).UTC(),
		Config:    paradigm.DefaultAnalysisConfig(),
		Diagnostics: []cluster.Diagnostic{
			{K: 2, Inertia: 1.5, Silhouette: 0.5},
			{K: 3, Inertia: 0.5, Silhouette: math.NaN()},
		},
		Fit: cluster.FitResult{K: 3, Silhouette: math.NaN()},
		CrossTab: cluster.CrossTab{
			Languages: []string{"go"},
			K:         3,
			Counts:    [][]int{{1, 1, 1}},
		},
	}

	out := reportToCLI(report)
	require.Len(t, out.Diagnostics, 2)
	require.NotNil(t, out.Diagnostics[0].Silhouette)
	assert.InDelta(t, 0.5, *out.Diagnostics[0].Silhouette, 1e-12)
	assert.Nil(t, out.Diagnostics[1].Silhouette)
	assert.Nil(t, out.Silhouette)
	assert.Equal(t, []int{1, 1, 1}, out.CrossTab.ColTotals)
	assert.Equal(t, 3, out.CrossTab.Total)

	data, err := json.Marshal(CLIResult{Command: "analyze", Results: out})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"silhouette":null`)

	var buf bytes.Buffer
	require.NoError(t, outputResultText(&buf, CLIResult{Command: "analyze", Results: out}))
	assert.Contains(t, buf.String(), "n/a")
	assert.Contains(t, buf.String(), "Language x cluster:")
}

func TestOutputResultText_PaginationFooter(t *testing.T) {
	t.Parallel()
	total := 3
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{
		Command:    "samples",
		Results:    []CLISample{{ID: 1, Path: "a.go", Language: "go", SyntaxErrors: -1}},
		TotalCount: &total,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Showing 1 of 3 results")
	assert.Contains(t, buf.String(), "a.go")
}

func TestOutputResultText_UnsupportedType(t *testing.T) {
	t.Parallel()
	err := outputResultText(&bytes.Buffer{}, CLIResult{Results: 42})
	assert.Error(t, err)
}
