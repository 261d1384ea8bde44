package paradigm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jward/paradigm/internal/features"
	"github.com/jward/paradigm/internal/runtime"
	"github.com/jward/paradigm/internal/store"
)

// patternsHashKey is the metadata key holding the hash of the pattern table
// and keyword families the stored feature rows were extracted with.
const patternsHashKey = "patterns_hash"

// Engine orchestrates the paradigm pipeline: corpus discovery, change
// detection, feature extraction, persistence, and analysis.
type Engine struct {
	store     *store.Store
	extractor *features.Extractor
	logger    *slog.Logger

	table    *features.PatternTable
	families features.KeywordFamilies

	languages   map[string]bool // nil means all languages
	include     []string
	exclude     []string
	maxFileSize int64 // 0 means no limit

	// useParallel enables the parallel extraction pipeline.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which languages the Engine will ingest. Tags are
// matched case-insensitively.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		if len(languages) == 0 {
			e.languages = nil
			return
		}
		e.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			e.languages[strings.ToLower(lang)] = true
		}
	}
}

// WithParallel controls parallel extraction. When true (default), ingestion
// uses a worker pool for extraction and syntax checks, with a single writer
// committing batches to SQLite. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithPatternTable replaces the reference pattern table.
func WithPatternTable(t *PatternTable) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithKeywordFamilies replaces the reference indicator keywords, density
// stems and score weights.
func WithKeywordFamilies(kf KeywordFamilies) Option {
	return func(e *Engine) {
		e.families = kf
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxFileSize skips sources larger than n bytes. Zero disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(e *Engine) {
		e.maxFileSize = n
	}
}

// WithInclude restricts directory discovery to paths matching at least one
// doublestar glob, relative to the indexed root.
func WithInclude(globs ...string) Option {
	return func(e *Engine) {
		e.include = globs
	}
}

// WithExclude drops discovered paths matching any doublestar glob, relative
// to the indexed root.
func WithExclude(globs ...string) Option {
	return func(e *Engine) {
		e.exclude = globs
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("paradigm: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("paradigm: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		logger:      slog.Default(),
		table:       features.DefaultPatternTable(),
		families:    features.DefaultKeywordFamilies(),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.extractor = features.NewExtractor(e.table, e.families)
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Extractor returns the feature extractor built from the Engine's pattern
// table and keyword families.
func (e *Engine) Extractor() *features.Extractor {
	return e.extractor
}

// PatternTable returns the active pattern table.
func (e *Engine) PatternTable() *PatternTable {
	return e.table
}

// Query returns a new QueryBuilder wrapping the Store.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

func (e *Engine) patternsHash() string {
	return features.Hash(e.table, e.families)
}

// PatternsChanged reports whether the active pattern table or keyword
// families differ from those the stored feature rows were extracted with.
// Returns false for a database with no samples.
func (e *Engine) PatternsChanged() bool {
	samples, err := e.store.Samples()
	if err != nil || len(samples) == 0 {
		return false
	}
	stored, err := e.store.GetMetadata(patternsHashKey)
	if err != nil || stored == "" {
		return true
	}
	return stored != e.patternsHash()
}

func (e *Engine) storePatternsHash() {
	if err := e.store.SetMetadata(patternsHashKey, e.patternsHash()); err != nil {
		e.logger.Warn("store patterns hash", slog.String("error", err.Error()))
	}
}

// Reextract recomputes the feature row of every stored sample with the
// active pattern table. Samples whose source file can no longer be read,
// including in-memory samples, are deleted so no row is left extracted
// under a stale table.
func (e *Engine) Reextract(ctx context.Context) error {
	samples, err := e.store.Samples()
	if err != nil {
		return fmt.Errorf("paradigm: reextract: %w", err)
	}

	var errs []error
	var updated, dropped int
	for _, smp := range samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		content, err := os.ReadFile(smp.Path)
		if err != nil {
			e.logger.Warn("dropping sample with unreadable source",
				slog.String("path", smp.Path), slog.String("error", err.Error()))
			if err := e.store.DeleteSample(smp.ID); err != nil {
				errs = append(errs, err)
			}
			dropped++
			continue
		}
		code := string(content)
		v := e.extractor.Extract(code, smp.Language)
		if err := e.store.InsertFeatures(smp.ID, v); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := e.store.UpdateSampleHash(smp.ID, store.ContentHash(content), features.LineCount(code)); err != nil {
			errs = append(errs, err)
			continue
		}
		updated++
	}
	if len(errs) > 0 {
		return fmt.Errorf("paradigm: reextract had %d error(s): %w", len(errs), errs[0])
	}

	e.storePatternsHash()
	e.logger.Info("re-extracted samples", slog.Int("updated", updated), slog.Int("dropped", dropped))
	return nil
}

// SampleInput is an in-memory source handed to IndexSamples. Name becomes
// the sample's path and must be unique within the store.
type SampleInput struct {
	Name     string
	Language string
	Source   string
}

// job is one source that passed filtering and change detection.
type job struct {
	path    string
	lang    string
	content []byte
	hash    string
	replace int64 // existing sample ID to supersede, 0 if new
}

// IndexFiles indexes the given file paths. When WithParallel is enabled,
// uses a worker pool for concurrent extraction with batched SQLite writes.
// Otherwise falls back to the serial path.
//
// For each file:
//  1. Detect language from extension
//  2. Skip unsupported or filtered-out languages and oversized files
//  3. Skip unchanged files (same content hash)
//  4. Extract features and count syntax errors
//  5. Replace the stored sample and feature row
//
// Errors on individual files are collected; processing continues.
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	var jobs []job
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		j, skip, err := e.prepareFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("prepare %s: %w", path, err))
			continue
		}
		if !skip {
			jobs = append(jobs, j)
		}
	}
	return e.run(ctx, jobs, len(paths), errs)
}

// IndexSamples ingests in-memory (name, language, source) triples. The
// declared language is recorded verbatim and drives pattern lookup.
func (e *Engine) IndexSamples(ctx context.Context, samples []SampleInput) error {
	var jobs []job
	var errs []error
	for _, in := range samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		if in.Name == "" {
			errs = append(errs, fmt.Errorf("sample with language %q has no name", in.Language))
			continue
		}
		j, skip, err := e.prepare(in.Name, in.Language, []byte(in.Source))
		if err != nil {
			errs = append(errs, fmt.Errorf("prepare %s: %w", in.Name, err))
			continue
		}
		if !skip {
			jobs = append(jobs, j)
		}
	}
	return e.run(ctx, jobs, len(samples), errs)
}

func (e *Engine) run(ctx context.Context, jobs []job, total int, errs []error) error {
	var err error
	if e.useParallel {
		err = e.runParallel(ctx, jobs)
	} else {
		err = e.runSerial(ctx, jobs)
	}
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("paradigm: indexing had %d error(s): %w", len(errs), errs[0])
	}
	e.storePatternsHash()
	e.logger.Info("indexed sources",
		slog.Int("seen", total), slog.Int("extracted", len(jobs)), slog.Bool("parallel", e.useParallel))
	return nil
}

func (e *Engine) runSerial(ctx context.Context, jobs []job) error {
	var errs []error
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if j.replace != 0 {
			if err := e.store.DeleteSample(j.replace); err != nil {
				errs = append(errs, fmt.Errorf("delete old sample %s: %w", j.path, err))
				continue
			}
		}
		if err := e.extract(ctx, e.store, j); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", j.path, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d error(s): %w", len(errs), errs[0])
	}
	return nil
}

// prepareFile detects the language of path, applies the language and size
// filters, and reads the file for change detection. skip=true means the file
// is unsupported, filtered or unchanged.
func (e *Engine) prepareFile(path string) (job, bool, error) {
	lang, ok := runtime.LanguageForFile(path)
	if !ok {
		return job{}, true, nil
	}
	if !e.languageAllowed(lang) {
		return job{}, true, nil
	}
	if e.maxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return job{}, false, fmt.Errorf("stat file: %w", err)
		}
		if info.Size() > e.maxFileSize {
			e.logger.Debug("skipping oversized file", slog.String("path", path), slog.Int64("size", info.Size()))
			return job{}, true, nil
		}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return job{}, false, fmt.Errorf("read file: %w", err)
	}
	return e.prepare(path, lang, content)
}

// prepare applies the shared filters and content-hash change detection.
func (e *Engine) prepare(path, lang string, content []byte) (job, bool, error) {
	if !e.languageAllowed(lang) {
		e.logger.Debug("skipping filtered language", slog.String("path", path), slog.String("language", lang))
		return job{}, true, nil
	}
	if e.maxFileSize > 0 && int64(len(content)) > e.maxFileSize {
		e.logger.Debug("skipping oversized source", slog.String("path", path), slog.Int("size", len(content)))
		return job{}, true, nil
	}

	hash := store.ContentHash(content)
	existing, err := e.store.SampleByPath(path)
	if err != nil {
		return job{}, false, fmt.Errorf("lookup sample: %w", err)
	}
	j := job{path: path, lang: lang, content: content, hash: hash}
	if existing != nil {
		if existing.Hash == hash && existing.Language == lang {
			e.logger.Debug("skipping unchanged source", slog.String("path", path))
			return job{}, true, nil
		}
		j.replace = existing.ID
	}
	return j, false, nil
}

func (e *Engine) languageAllowed(lang string) bool {
	return e.languages == nil || e.languages[strings.ToLower(lang)]
}

// extract computes the feature row and syntax check for one job and writes
// both through ds.
func (e *Engine) extract(ctx context.Context, ds store.DataStore, j job) error {
	code := string(j.content)
	v := e.extractor.Extract(code, j.lang)

	syntaxErrors := -1
	if n, ok := runtime.SyntaxErrors(ctx, j.lang, j.content); ok {
		syntaxErrors = n
	}

	id, err := ds.InsertSample(&store.Sample{
		Path:         j.path,
		Language:     j.lang,
		Hash:         j.hash,
		LineCount:    features.LineCount(code),
		SyntaxErrors: syntaxErrors,
		LastIndexed:  time.Now(),
	})
	if err != nil {
		return err
	}
	return ds.InsertFeatures(id, v)
}
