package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/paradigm"
)

var (
	flagForce     bool
	flagLanguages string
	flagInclude   string
	flagExclude   string
	flagPatterns  string
	flagSerial    bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Extract concurrency features from a source tree",
	Long:  "Discovers source files, extracts their feature vectors with the active pattern table, and writes them to the SQLite database. Unchanged files are skipped.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete database and reindex from scratch")
	indexCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. go,java)")
	indexCmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated doublestar globs to include")
	indexCmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated doublestar globs to exclude")
	indexCmd.Flags().StringVar(&flagPatterns, "patterns", "", "pattern table: .yaml/.yml file, .risor script or builtin:<name>")
	indexCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable the parallel extraction pipeline")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := context.Background()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("index", err)
	}
	repoRoot := findRepoRoot(targetDir)
	dbPath := resolveDBPath(repoRoot)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return outputError("index", fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err))
	}
	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return outputError("index", fmt.Errorf("removing database for --force: %w", err))
		}
		logger.Info("cleared database", "path", dbPath)
	}

	opts, err := engineOptions(ctx)
	if err != nil {
		return outputError("index", err)
	}
	engine, err := paradigm.New(dbPath, opts...)
	if err != nil {
		return outputError("index", fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	reextracted := false
	if engine.PatternsChanged() {
		logger.Info("pattern table changed, re-extracting stored samples")
		if err := engine.Reextract(ctx); err != nil {
			return outputError("index", fmt.Errorf("re-extracting: %w", err))
		}
		reextracted = true
	}

	if err := engine.IndexDirectory(ctx, targetDir); err != nil {
		return outputError("index", fmt.Errorf("indexing: %w", err))
	}

	counts, err := engine.Query().LanguageCounts()
	if err != nil {
		return outputError("index", err)
	}
	summary := CLIIndexSummary{
		Root:        targetDir,
		Database:    dbPath,
		Reextracted: reextracted,
		ElapsedMS:   time.Since(start).Milliseconds(),
	}
	for _, c := range counts {
		summary.Samples += c.Count
		summary.Languages = append(summary.Languages, CLILanguageCount{Language: c.Language, Count: c.Count})
	}
	return outputResult(CLIResult{Command: "index", Results: summary})
}

// engineOptions builds Engine options from the loaded config overlaid with
// index flags.
func engineOptions(ctx context.Context) ([]paradigm.Option, error) {
	ex := cfg.Extraction

	languages := ex.Languages
	if flagLanguages != "" {
		languages = splitList(flagLanguages)
	}
	include := ex.Include
	if flagInclude != "" {
		include = splitList(flagInclude)
	}
	exclude := ex.Exclude
	if flagExclude != "" {
		exclude = splitList(flagExclude)
	}
	ref := ex.Patterns
	if flagPatterns != "" {
		ref = flagPatterns
	}

	table, err := paradigm.LoadPatternTable(ctx, ref, logger)
	if err != nil {
		return nil, err
	}

	return []paradigm.Option{
		paradigm.WithLogger(logger),
		paradigm.WithLanguages(languages...),
		paradigm.WithInclude(include...),
		paradigm.WithExclude(exclude...),
		paradigm.WithMaxFileSize(ex.SizeLimit()),
		paradigm.WithParallel(ex.ParallelEnabled() && !flagSerial),
		paradigm.WithPatternTable(table),
	}, nil
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
