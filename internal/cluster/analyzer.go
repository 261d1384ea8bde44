package cluster

import (
	"fmt"
	"math"
)

// Params fixes every knob of the clustering pipeline so repeated runs over the
// same dataset produce identical results.
type Params struct {
	Seed            uint64
	NInit           int
	MaxIter         int
	Tolerance       float64
	Perplexity      float64
	EmbedIterations int
}

// DefaultParams returns the reference configuration: seed 42, 10
// re-initializations, perplexity 10.
func DefaultParams() Params {
	return Params{
		Seed:            42,
		NInit:           10,
		MaxIter:         300,
		Tolerance:       1e-4,
		Perplexity:      10,
		EmbedIterations: 1000,
	}
}

// Validate reports parameter values no run could use.
func (p Params) Validate() error {
	switch {
	case p.NInit < 1:
		return fmt.Errorf("cluster: n_init must be at least 1, got %d", p.NInit)
	case p.MaxIter < 1:
		return fmt.Errorf("cluster: max_iter must be at least 1, got %d", p.MaxIter)
	case p.Tolerance < 0:
		return fmt.Errorf("cluster: tolerance must be non-negative, got %g", p.Tolerance)
	case p.Perplexity <= 0:
		return fmt.Errorf("cluster: perplexity must be positive, got %g", p.Perplexity)
	case p.EmbedIterations < 1:
		return fmt.Errorf("cluster: embed_iterations must be at least 1, got %d", p.EmbedIterations)
	}
	return nil
}

// Analyzer runs the clustering pipeline with fixed Params.
type Analyzer struct {
	params Params
}

// NewAnalyzer returns an Analyzer, or an error if p is unusable.
func NewAnalyzer(p Params) (*Analyzer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{params: p}, nil
}

// Params returns the Analyzer's parameters.
func (a *Analyzer) Params() Params { return a.params }

// Diagnostic is one row of the cluster-count sweep. Silhouette is NaN when
// undefined for the candidate partition.
type Diagnostic struct {
	K          int
	Inertia    float64
	Silhouette float64
}

// FitResult is the outcome of fitting the final model.
type FitResult struct {
	K          int
	Labels     []int
	Centroids  [][]float64
	Inertia    float64
	Silhouette float64
	Iterations int
}

// SelectK fits one model per candidate k and reports its inertia and mean
// silhouette. A candidate whose partition has a single-member cluster gets a
// NaN silhouette and the sweep continues. Candidates must be strictly
// ascending and each satisfy 2 <= k < len(ds); violations fail before any
// fitting. SelectK does not choose k.
func (a *Analyzer) SelectK(ds Dataset, candidates []int) ([]Diagnostic, error) {
	const op = "select_k"
	if err := validateRows(op, ds); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, invalid(op, "no candidate cluster counts")
	}
	for i, k := range candidates {
		if k < 2 {
			return nil, invalid(op, "candidate k=%d is below 2", k)
		}
		if k >= len(ds) {
			return nil, invalid(op, "candidate k=%d must be less than the number of rows (%d)", k, len(ds))
		}
		if i > 0 && k <= candidates[i-1] {
			return nil, invalid(op, "candidates must be strictly ascending, got %v", candidates)
		}
	}

	x := ds.Matrix()
	out := make([]Diagnostic, 0, len(candidates))
	for _, k := range candidates {
		m := fitKMeans(x, k, a.params)
		sil := math.NaN()
		if !hasSingleton(m.Labels, k) {
			sil = Silhouette(x, m.Labels, k)
		}
		out = append(out, Diagnostic{K: k, Inertia: m.Inertia, Silhouette: sil})
	}
	return out, nil
}

// FitFinal fits the model at the chosen k and returns per-row labels in
// [0,k), the k centroids, the inertia and the mean silhouette. A row alone in
// its cluster contributes 0 to the silhouette mean.
func (a *Analyzer) FitFinal(ds Dataset, k int) (FitResult, error) {
	if err := validateFit("fit_final", ds, k); err != nil {
		return FitResult{}, err
	}
	x := ds.Matrix()
	m := fitKMeans(x, k, a.params)
	return FitResult{
		K:          k,
		Labels:     m.Labels,
		Centroids:  m.Centroids,
		Inertia:    m.Inertia,
		Silhouette: Silhouette(x, m.Labels, k),
		Iterations: m.Iterations,
	}, nil
}

// IsDefined reports whether a silhouette value is defined.
func IsDefined(silhouette float64) bool { return !math.IsNaN(silhouette) }
