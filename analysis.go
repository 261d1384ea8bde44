package paradigm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jward/paradigm/internal/cluster"
)

// AnalysisConfig configures one Analyze run.
type AnalysisConfig struct {
	// K is the cluster count of the final fit.
	K int
	// CandidateK lists the cluster counts diagnosed before the final fit.
	// Must be strictly ascending with every k in [2, rows).
	CandidateK []int
	Params     cluster.Params
	// Languages restricts the dataset; empty means every stored sample.
	Languages []string
}

// DefaultAnalysisConfig returns k=3 with candidates 2..6 and the default
// clustering parameters.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		K:          3,
		CandidateK: []int{2, 3, 4, 5, 6},
		Params:     cluster.DefaultParams(),
	}
}

// Assignment pairs one sample with its cluster label and embedded position.
type Assignment struct {
	Path     string        `json:"path"`
	Language string        `json:"language"`
	Cluster  int           `json:"cluster"`
	Point    cluster.Point `json:"point"`
}

// Report is the full output of an Analyze run.
type Report struct {
	RunID       string                `json:"run_id"`
	CreatedAt   time.Time             `json:"created_at"`
	Config      AnalysisConfig        `json:"config"`
	Diagnostics []cluster.Diagnostic  `json:"diagnostics"`
	Fit         cluster.FitResult     `json:"fit"`
	Assignments []Assignment          `json:"assignments"`
	Centroids   cluster.CentroidTable `json:"centroids"`
	CrossTab    cluster.CrossTab      `json:"crosstab"`
}

// Dataset loads the stored feature rows, optionally restricted to languages,
// ordered by sample path.
func (e *Engine) Dataset(ctx context.Context, languages ...string) ([]FeatureRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := e.store.FeatureRows(languages...)
	if err != nil {
		return nil, fmt.Errorf("paradigm: load dataset: %w", err)
	}
	return rows, nil
}

// Analyze runs the clustering pipeline over the stored dataset: diagnostics
// for every candidate k, the final fit at cfg.K, the centroid and language
// summaries, and the 2-D embedding. Dataset preconditions surface as
// errors matching ErrInvalidDataset before any fitting work.
func (e *Engine) Analyze(ctx context.Context, cfg AnalysisConfig) (*Report, error) {
	a, err := cluster.NewAnalyzer(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("paradigm: analyze: %w", err)
	}
	rows, err := e.Dataset(ctx, cfg.Languages...)
	if err != nil {
		return nil, err
	}

	ds := make(cluster.Dataset, len(rows))
	for i, r := range rows {
		ds[i] = r.Vector
	}
	if err := cluster.Validate(ds, cfg.K); err != nil {
		return nil, fmt.Errorf("paradigm: analyze: %w", err)
	}

	start := time.Now()
	diags, err := a.SelectK(ds, cfg.CandidateK)
	if err != nil {
		return nil, fmt.Errorf("paradigm: analyze: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fit, err := a.FitFinal(ds, cfg.K)
	if err != nil {
		return nil, fmt.Errorf("paradigm: analyze: %w", err)
	}
	summary, err := cluster.Summarize(ds, fit)
	if err != nil {
		return nil, fmt.Errorf("paradigm: analyze: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	points, err := a.Embed2D(ds)
	if err != nil {
		return nil, fmt.Errorf("paradigm: analyze: %w", err)
	}

	assignments := make([]Assignment, len(rows))
	for i, r := range rows {
		assignments[i] = Assignment{
			Path:     r.Path,
			Language: r.Vector.Language,
			Cluster:  fit.Labels[i],
			Point:    points[i],
		}
	}

	report := &Report{
		RunID:       uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Config:      cfg,
		Diagnostics: diags,
		Fit:         fit,
		Assignments: assignments,
		Centroids:   summary.Centroids,
		CrossTab:    summary.CrossTab,
	}
	e.logger.Info("analysis complete",
		slog.String("run_id", report.RunID),
		slog.Int("rows", len(ds)),
		slog.Int("k", cfg.K),
		slog.Float64("inertia", fit.Inertia),
		slog.Duration("elapsed", time.Since(start)))
	return report, nil
}
