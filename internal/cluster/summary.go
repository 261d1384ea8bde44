package cluster

import (
	"fmt"

	"github.com/jward/paradigm/internal/features"
)

// CentroidRow holds one cluster's mean feature values and member count.
type CentroidRow struct {
	Cluster int       `json:"cluster"`
	Size    int       `json:"size"`
	Values  []float64 `json:"values"`
}

// CentroidTable is a k×6 table of centroid coordinates labelled by
// clustering feature name.
type CentroidTable struct {
	Features []string      `json:"features"`
	Rows     []CentroidRow `json:"rows"`
}

// Value returns the centroid coordinate of cluster c for the named feature.
func (t CentroidTable) Value(c int, feature string) (float64, bool) {
	if c < 0 || c >= len(t.Rows) {
		return 0, false
	}
	for j, name := range t.Features {
		if name == feature {
			return t.Rows[c].Values[j], true
		}
	}
	return 0, false
}

// CrossTab counts rows per (language, cluster) pair. Languages are sorted;
// columns are clusters 0..K-1.
type CrossTab struct {
	Languages []string `json:"languages"`
	K         int      `json:"k"`
	Counts    [][]int  `json:"counts"`
}

// RowTotals returns the number of rows per language.
func (x CrossTab) RowTotals() []int {
	out := make([]int, len(x.Counts))
	for i, row := range x.Counts {
		for _, n := range row {
			out[i] += n
		}
	}
	return out
}

// ColTotals returns the number of rows per cluster.
func (x CrossTab) ColTotals() []int {
	out := make([]int, x.K)
	for _, row := range x.Counts {
		for c, n := range row {
			out[c] += n
		}
	}
	return out
}

// Total returns the number of rows counted.
func (x CrossTab) Total() int {
	var n int
	for _, t := range x.RowTotals() {
		n += t
	}
	return n
}

// Summary pairs the centroid table with the language cross-tabulation.
type Summary struct {
	Centroids CentroidTable `json:"centroids"`
	CrossTab  CrossTab      `json:"crosstab"`
}

// Summarize builds the centroid table and language×cluster contingency table
// for a fitted result over ds.
func Summarize(ds Dataset, fit FitResult) (Summary, error) {
	const op = "summarize"
	if len(fit.Labels) != len(ds) {
		return Summary{}, invalid(op, "%d labels for %d rows", len(fit.Labels), len(ds))
	}
	if len(fit.Centroids) != fit.K {
		return Summary{}, fmt.Errorf("cluster: %s: %d centroids for k=%d", op, len(fit.Centroids), fit.K)
	}

	sizes := make([]int, fit.K)
	for _, l := range fit.Labels {
		if l < 0 || l >= fit.K {
			return Summary{}, invalid(op, "label %d outside [0,%d)", l, fit.K)
		}
		sizes[l]++
	}

	table := CentroidTable{
		Features: append([]string(nil), features.ClusteringFeatures...),
		Rows:     make([]CentroidRow, fit.K),
	}
	for c := range fit.K {
		table.Rows[c] = CentroidRow{Cluster: c, Size: sizes[c], Values: clone(fit.Centroids[c])}
	}

	langs := ds.Languages()
	index := make(map[string]int, len(langs))
	for i, l := range langs {
		index[l] = i
	}
	counts := make([][]int, len(langs))
	for i := range counts {
		counts[i] = make([]int, fit.K)
	}
	for i, v := range ds {
		counts[index[v.Language]][fit.Labels[i]]++
	}

	return Summary{
		Centroids: table,
		CrossTab:  CrossTab{Languages: langs, K: fit.K, Counts: counts},
	}, nil
}
