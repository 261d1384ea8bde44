package paradigm

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/paradigm/internal/features"
)

func TestLoadPatternTable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "table.yaml", "go:\n  - chan\n  - select\nKotlin:\n  - launch\n")
	risorPath := writeFile(t, dir, "table.risor", "p := default_patterns()\np[\"zig\"] = [\"async\"]\np\n")
	ctx := context.Background()

	tests := []struct {
		name string
		ref  string
		has  []string
		pats map[string][]string
	}{
		{"builtin default", "", []string{"java", "erlang"}, map[string][]string{"erlang": {"spawn", "!", "receive"}}},
		{"bundled script", "builtin:extended", []string{"kotlin", "elixir", "swift", "java"}, nil},
		{"yaml", yamlPath, []string{"go", "kotlin"}, map[string][]string{"go": {"chan", "select"}, "kotlin": {"launch"}}},
		{"risor", risorPath, []string{"zig", "go"}, map[string][]string{"zig": {"async"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			table, err := LoadPatternTable(ctx, tt.ref, nil)
			require.NoError(t, err)
			for _, lang := range tt.has {
				assert.True(t, table.Has(lang), lang)
			}
			for lang, want := range tt.pats {
				assert.Equal(t, want, table.Patterns(lang), lang)
			}
		})
	}
}

func TestLoadPatternTable_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()
	emptyYAML := writeFile(t, dir, "empty.yaml", "{}\n")
	badScript := writeFile(t, dir, "bad.risor", "42\n")

	for _, ref := range []string{
		"builtin:nope",
		filepath.Join(dir, "missing.yaml"),
		emptyYAML,
		badScript,
		filepath.Join(dir, "table.json"),
	} {
		_, err := LoadPatternTable(ctx, ref, nil)
		assert.Error(t, err, ref)
	}
}

func TestLoadPatternTable_ScriptLogsToLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := LoadPatternTable(context.Background(), "builtin:extended", logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "level=INFO")
}

func TestWithPatternTable_DrivesExtraction(t *testing.T) {
	t.Parallel()
	table, err := features.NewPatternTable(map[string][]string{"go": {"chan", "make(chan"}})
	require.NoError(t, err)
	e := newTestEngine(t, WithPatternTable(table))

	v := e.Extractor().Extract(goChannels, "go")
	assert.InDelta(t, 2.0/7, v.ChannelDensity, 1e-12)
	assert.NotEqual(t, features.Hash(features.DefaultPatternTable(), features.DefaultKeywordFamilies()), e.patternsHash())
}
