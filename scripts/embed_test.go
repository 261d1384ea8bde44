package scripts

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/paradigm/internal/runtime"
)

func TestBundledPatternScriptsLoad(t *testing.T) {
	t.Parallel()
	paths, err := fs.Glob(FS, "patterns/*.risor")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	rt := runtime.NewRuntime("", runtime.WithRuntimeFS(FS))
	for _, p := range paths {
		table, err := rt.LoadPatternTable(context.Background(), p)
		require.NoError(t, err, p)
		assert.NotEmpty(t, table.Languages(), p)
	}
}

func TestExtendedPatterns(t *testing.T) {
	t.Parallel()
	rt := runtime.NewRuntime("", runtime.WithRuntimeFS(FS))
	table, err := rt.LoadPatternTable(context.Background(), PatternScriptPath("extended"))
	require.NoError(t, err)

	for _, lang := range []string{"java", "erlang", "kotlin", "elixir", "swift"} {
		assert.True(t, table.Has(lang), lang)
	}
	assert.Contains(t, table.Patterns("go"), "errgroup")
}
