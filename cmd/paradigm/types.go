package main

import (
	"time"

	"github.com/jward/paradigm/internal/features"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIIndexSummary reports the outcome of an index run.
type CLIIndexSummary struct {
	Root        string             `json:"root"`
	Database    string             `json:"database"`
	Samples     int                `json:"samples"`
	Languages   []CLILanguageCount `json:"languages"`
	Reextracted bool               `json:"reextracted,omitempty"`
	ElapsedMS   int64              `json:"elapsed_ms"`
}

// CLILanguageCount is the sample count of one declared language.
type CLILanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// CLISample is a JSON-friendly sample representation.
type CLISample struct {
	ID           int64     `json:"id"`
	Path         string    `json:"path"`
	Language     string    `json:"language"`
	LineCount    int       `json:"line_count"`
	SyntaxErrors int       `json:"syntax_errors"`
	LastIndexed  time.Time `json:"last_indexed"`
}

// CLIExtraction is the result of extracting one source.
type CLIExtraction struct {
	Source    string                  `json:"source"`
	LineCount int                     `json:"line_count"`
	Features  features.Vector         `json:"features"`
	Patterns  []features.PatternCount `json:"patterns,omitempty"`
}

// CLIInit reports the project config written by init.
type CLIInit struct {
	Path    string `json:"path"`
	Created bool   `json:"created"`
}

// CLIPatternSet is one language's entry in the pattern table.
type CLIPatternSet struct {
	Language string   `json:"language"`
	Patterns []string `json:"patterns"`
}

// CLIDiagnostic is one candidate k's inertia and silhouette. Silhouette is
// null when undefined.
type CLIDiagnostic struct {
	K          int      `json:"k"`
	Inertia    float64  `json:"inertia"`
	Silhouette *float64 `json:"silhouette"`
}

// CLICentroid is one row of the centroid table.
type CLICentroid struct {
	Cluster int       `json:"cluster"`
	Size    int       `json:"size"`
	Values  []float64 `json:"values"`
}

// CLICrossTab is the language-by-cluster contingency table with totals.
type CLICrossTab struct {
	Languages []string `json:"languages"`
	Counts    [][]int  `json:"counts"`
	RowTotals []int    `json:"row_totals"`
	ColTotals []int    `json:"col_totals"`
	Total     int      `json:"total"`
}

// CLIAssignment is one sample's cluster and embedded position.
type CLIAssignment struct {
	Path     string  `json:"path"`
	Language string  `json:"language"`
	Cluster  int     `json:"cluster"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// CLIReport is the JSON-friendly analysis report.
type CLIReport struct {
	RunID       string          `json:"run_id"`
	CreatedAt   time.Time       `json:"created_at"`
	K           int             `json:"k"`
	Seed        uint64          `json:"seed"`
	Perplexity  float64         `json:"perplexity"`
	Inertia     float64         `json:"inertia"`
	Silhouette  *float64        `json:"silhouette"`
	Iterations  int             `json:"iterations"`
	Diagnostics []CLIDiagnostic `json:"diagnostics"`
	Features    []string        `json:"features"`
	Centroids   []CLICentroid   `json:"centroids"`
	CrossTab    CLICrossTab     `json:"crosstab"`
	Assignments []CLIAssignment `json:"assignments"`
}
