// Package paradigm clusters source files by the concurrency idioms they use.
// Each sample is reduced to a fixed-width feature vector by counting
// language-specific pattern occurrences, and the vectors are grouped with
// seeded k-means to test whether concurrency style tracks programming
// language.
//
// # Pipeline
//
// Paradigm operates in two phases:
//
//  1. Index: For each source file (or in-memory sample), detect its
//     language, extract the feature vector with the active pattern table,
//     count tree-sitter syntax errors, and write both to SQLite.
//
//  2. Analyze: Load the stored vectors, fit k-means for each candidate
//     cluster count, fit the final model, summarize centroids and the
//     language-by-cluster cross-tabulation, and embed the rows in 2-D with
//     t-SNE for plotting.
//
// # Usage
//
//	e, err := paradigm.New("paradigm.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	err = e.IndexDirectory(ctx, "path/to/corpus")
//	report, err := e.Analyze(ctx, paradigm.DefaultAnalysisConfig())
//
// # Incremental Indexing
//
// [Engine.IndexFiles] detects unchanged files via content hashing and skips
// them. The hash of the pattern table is recorded after each run;
// [Engine.PatternsChanged] reports when stored rows were extracted under a
// different table and [Engine.Reextract] brings them up to date.
//
// # Pattern Tables
//
// The built-in table covers java, go, python, erlang, javascript, rust,
// scala, cpp and csharp. [LoadPatternTable] accepts YAML tables and Risor
// scripts; scripts see default_patterns(), languages() and a log module.
// See the internal/runtime package for details.
package paradigm
