package paradigm

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jward/paradigm/internal/config"
	"github.com/jward/paradigm/internal/features"
	"github.com/jward/paradigm/internal/runtime"
	"github.com/jward/paradigm/scripts"
)

// LoadPatternTable resolves a patterns reference into a PatternTable:
//
//   - ""               the built-in reference table
//   - "builtin:<name>" a bundled Risor script, e.g. "builtin:extended"
//   - "*.yaml", "*.yml" a mapping of language tag to pattern list
//   - "*.risor"        a Risor script evaluating to such a mapping
//
// Script log calls go to logger; nil means slog.Default().
func LoadPatternTable(ctx context.Context, ref string, logger *slog.Logger) (*PatternTable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if ref == "" {
		return features.DefaultPatternTable(), nil
	}

	if name, ok := strings.CutPrefix(ref, config.BuiltinPrefix); ok {
		rt := runtime.NewRuntime("", runtime.WithRuntimeFS(scripts.FS), runtime.WithRuntimeLogger(logger))
		t, err := rt.LoadPatternTable(ctx, scripts.PatternScriptPath(name))
		if err != nil {
			return nil, fmt.Errorf("paradigm: patterns %q: %w", ref, err)
		}
		return t, nil
	}

	switch strings.ToLower(filepath.Ext(ref)) {
	case ".yaml", ".yml":
		m, err := config.LoadPatternsYAML(ref)
		if err != nil {
			return nil, fmt.Errorf("paradigm: %w", err)
		}
		t, err := features.NewPatternTable(m)
		if err != nil {
			return nil, fmt.Errorf("paradigm: patterns %q: %w", ref, err)
		}
		return t, nil
	case ".risor":
		rt := runtime.NewRuntime(filepath.Dir(ref), runtime.WithRuntimeLogger(logger))
		t, err := rt.LoadPatternTable(ctx, filepath.Base(ref))
		if err != nil {
			return nil, fmt.Errorf("paradigm: patterns %q: %w", ref, err)
		}
		return t, nil
	}
	return nil, fmt.Errorf("paradigm: patterns %q: unsupported reference", ref)
}
