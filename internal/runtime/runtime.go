package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/paradigm/internal/features"
)

const (
	scriptExt   = ".risor"
	inlineLabel = "<inline>"
)

// Runtime evaluates pattern-table scripts in a Risor VM. A script sees
// default_patterns(), languages() and a log module, and must evaluate to a
// map from language tag to a list of pattern strings.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS reads scripts, and resolves their imports, from fsys
// rather than the local disk.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) { r.fsys = fsys }
}

// WithRuntimeLogger sends script log calls to logger.
func WithRuntimeLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) { r.logger = logger }
}

// NewRuntime returns a Runtime resolving relative script paths and imports
// against scriptsDir. An empty scriptsDir limits disk loads to absolute
// paths.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{scriptsDir: scriptsDir, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadPatternTable evaluates the script at scriptPath and builds a
// PatternTable from its result.
func (r *Runtime) LoadPatternTable(ctx context.Context, scriptPath string) (*features.PatternTable, error) {
	src, label, err := r.readScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.patternTable(ctx, src, label)
}

// PatternTableFromSource evaluates inline Risor source as a pattern script.
func (r *Runtime) PatternTableFromSource(ctx context.Context, source string) (*features.PatternTable, error) {
	return r.patternTable(ctx, source, inlineLabel)
}

// RunSource evaluates inline source with the standard globals plus extra
// and returns the raw result.
func (r *Runtime) RunSource(ctx context.Context, source string, extra map[string]any) (object.Object, error) {
	return r.eval(ctx, source, inlineLabel, extra)
}

func (r *Runtime) patternTable(ctx context.Context, source, label string) (*features.PatternTable, error) {
	result, err := r.eval(ctx, source, label, nil)
	if err != nil {
		return nil, err
	}
	m, err := toPatternMap(result)
	if err == nil {
		var table *features.PatternTable
		if table, err = features.NewPatternTable(m); err == nil {
			return table, nil
		}
	}
	return nil, fmt.Errorf("runtime: script %s: %w", label, err)
}

func (r *Runtime) eval(ctx context.Context, source, label string, extra map[string]any) (object.Object, error) {
	globals := map[string]any{
		"default_patterns": makeDefaultPatternsFn(),
		"languages":        makeLanguagesFn(),
		"log":              newLogModule(r.logger.With("script", label)),
	}
	maps.Copy(globals, extra)

	names := slices.Sorted(maps.Keys(globals))
	opts := make([]risor.Option, 0, len(names)+1)
	for _, name := range names {
		opts = append(opts, risor.WithGlobal(name, globals[name]))
	}
	if imp := r.importer(names); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return result, nil
}

// importer resolves `import` statements from the same place scripts are
// read from, or returns nil when there is no such place.
func (r *Runtime) importer(globalNames []string) importer.Importer {
	switch {
	case r.fsys != nil:
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{scriptExt},
		})
	case r.scriptsDir != "":
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{scriptExt},
		})
	}
	return nil
}

// readScript returns the source of scriptPath and the label it is logged
// and reported under.
func (r *Runtime) readScript(scriptPath string) (string, string, error) {
	var (
		data  []byte
		label string
		err   error
	)
	if r.fsys != nil {
		label = strings.TrimPrefix(path.Clean(filepath.ToSlash(scriptPath)), "/")
		data, err = fs.ReadFile(r.fsys, label)
	} else {
		label = scriptPath
		if !filepath.IsAbs(label) && r.scriptsDir != "" {
			label = filepath.Join(r.scriptsDir, label)
		}
		data, err = os.ReadFile(label)
	}
	if err != nil {
		return "", "", fmt.Errorf("runtime: reading script %s: %w", label, err)
	}
	return string(data), label, nil
}
