// Package cluster partitions concurrency feature vectors and summarizes the
// result: cluster-count diagnostics, a final k-means fit, centroid and
// language cross-tabulation tables, and a 2-D t-SNE embedding.
//
// Every operation is synchronous, deterministic under a fixed seed, and
// validates its dataset before doing any work.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jward/paradigm/internal/features"
)

// ErrInvalidDataset is matched by every *InvalidDatasetError via errors.Is.
var ErrInvalidDataset = errors.New("invalid dataset")

// InvalidDatasetError reports a dataset precondition violation: too few rows
// for the requested k, an out-of-range k, or non-finite feature values.
type InvalidDatasetError struct {
	Op     string
	Reason string
}

func (e *InvalidDatasetError) Error() string {
	return fmt.Sprintf("cluster: %s: invalid dataset: %s", e.Op, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidDataset) succeed.
func (e *InvalidDatasetError) Unwrap() error { return ErrInvalidDataset }

func invalid(op, format string, args ...any) error {
	return &InvalidDatasetError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// Dataset is an ordered collection of feature rows. Row order is significant:
// labels and embedding points are returned in the same order.
type Dataset []features.Vector

// Matrix returns the rows' clustering features as an n×6 matrix.
func (ds Dataset) Matrix() [][]float64 {
	x := make([][]float64, len(ds))
	for i, v := range ds {
		x[i] = v.Values()
	}
	return x
}

// Languages returns the distinct declared languages in sorted order.
func (ds Dataset) Languages() []string {
	seen := make(map[string]bool)
	var langs []string
	for _, v := range ds {
		if !seen[v.Language] {
			seen[v.Language] = true
			langs = append(langs, v.Language)
		}
	}
	sort.Strings(langs)
	return langs
}

// validateRows checks the shape and values of ds independent of k.
func validateRows(op string, ds Dataset) error {
	if len(ds) < 2 {
		return invalid(op, "need at least 2 rows, got %d", len(ds))
	}
	for i, v := range ds {
		for j, x := range v.Values() {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return invalid(op, "row %d: feature %s is not a finite number", i, features.ClusteringFeatures[j])
			}
		}
	}
	return nil
}

// Validate checks that ds can be partitioned into k clusters: at least two
// rows, all features finite, and 2 <= k <= len(ds).
func Validate(ds Dataset, k int) error {
	return validateFit("validate", ds, k)
}

func validateFit(op string, ds Dataset, k int) error {
	if err := validateRows(op, ds); err != nil {
		return err
	}
	if k < 2 {
		return invalid(op, "k must be at least 2, got %d", k)
	}
	if k > len(ds) {
		return invalid(op, "k=%d exceeds the number of rows (%d)", k, len(ds))
	}
	return nil
}
