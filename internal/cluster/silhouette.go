package cluster

import "math"

// Silhouette returns the mean silhouette coefficient of labels over x using
// Euclidean distance. A point alone in its cluster scores 0. The result is
// NaN when the coefficient is undefined: fewer than two non-empty clusters,
// or as many clusters as points.
func Silhouette(x [][]float64, labels []int, k int) float64 {
	n := len(x)
	if n == 0 || len(labels) != n {
		return math.NaN()
	}

	counts, ok := clusterSizes(labels, k)
	if !ok {
		return math.NaN()
	}
	nonEmpty := 0
	for _, c := range counts {
		if c > 0 {
			nonEmpty++
		}
	}
	if nonEmpty < 2 || nonEmpty >= n {
		return math.NaN()
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			d := math.Sqrt(sqDist(x[i], x[j]))
			dist[i][j], dist[j][i] = d, d
		}
	}

	var total float64
	sums := make([]float64, k)
	for i := range n {
		own := labels[i]
		if counts[own] == 1 {
			continue
		}
		clear(sums)
		for j := range n {
			if j != i {
				sums[labels[j]] += dist[i][j]
			}
		}
		a := sums[own] / float64(counts[own]-1)
		b := math.Inf(1)
		for c := range k {
			if c == own || counts[c] == 0 {
				continue
			}
			b = math.Min(b, sums[c]/float64(counts[c]))
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}

// hasSingleton reports whether some cluster has exactly one member.
func hasSingleton(labels []int, k int) bool {
	counts, ok := clusterSizes(labels, k)
	if !ok {
		return false
	}
	for _, c := range counts {
		if c == 1 {
			return true
		}
	}
	return false
}

// clusterSizes counts members per cluster; ok is false for a label outside
// [0,k).
func clusterSizes(labels []int, k int) ([]int, bool) {
	counts := make([]int, k)
	for _, l := range labels {
		if l < 0 || l >= k {
			return nil, false
		}
		counts[l]++
	}
	return counts, true
}
