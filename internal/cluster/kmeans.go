package cluster

import (
	"math"
	"math/rand/v2"
)

// Model is a fitted k-means partition. It is ephemeral: built per candidate
// k and never persisted.
type Model struct {
	K          int
	Centroids  [][]float64
	Labels     []int
	Inertia    float64
	Iterations int
	Seed       uint64
	NInit      int
}

// fitKMeans runs NInit seeded k-means++/Lloyd fits over x and keeps the one
// with the lowest inertia. The first run wins ties.
func fitKMeans(x [][]float64, k int, p Params) *Model {
	rng := newRNG(p.Seed)
	tol := p.Tolerance * meanVariance(x)

	var best *Model
	for range p.NInit {
		centers := initPlusPlus(x, k, rng)
		m := lloyd(x, centers, p.MaxIter, tol)
		if best == nil || m.Inertia < best.Inertia {
			best = m
		}
	}
	best.Seed = p.Seed
	best.NInit = p.NInit
	return best
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// initPlusPlus chooses k initial centers with greedy k-means++: each step
// draws 2+ln(k) candidates proportionally to squared distance and keeps the
// one that lowers the potential most.
func initPlusPlus(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(x)
	trials := 2 + int(math.Log(float64(k)))

	centers := make([][]float64, 0, k)
	first := rng.IntN(n)
	centers = append(centers, clone(x[first]))

	closest := make([]float64, n)
	var pot float64
	for i := range x {
		closest[i] = sqDist(x[i], centers[0])
		pot += closest[i]
	}

	for len(centers) < k {
		bestIdx := -1
		bestPot := math.Inf(1)
		var bestClosest []float64

		for range trials {
			cand := sampleWeighted(closest, pot, rng)
			next := make([]float64, n)
			var nextPot float64
			for i := range x {
				next[i] = math.Min(closest[i], sqDist(x[i], x[cand]))
				nextPot += next[i]
			}
			if nextPot < bestPot {
				bestIdx, bestPot, bestClosest = cand, nextPot, next
			}
		}

		centers = append(centers, clone(x[bestIdx]))
		closest, pot = bestClosest, bestPot
	}
	return centers
}

// sampleWeighted draws an index with probability weights[i]/total. When all
// weights are zero (duplicate points) it draws uniformly.
func sampleWeighted(weights []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return rng.IntN(len(weights))
	}
	r := rng.Float64() * total
	var cum float64
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if cum > r {
			return i
		}
	}
	return last
}

// lloyd refines centers until the total squared center shift is at most tol
// or maxIter is reached, then labels every point with its nearest center.
func lloyd(x [][]float64, centers [][]float64, maxIter int, tol float64) *Model {
	k := len(centers)
	labels := make([]int, len(x))

	iter := 0
	for iter < maxIter {
		iter++
		assign(x, centers, labels)
		fillEmpty(x, centers, labels, k)
		next := means(x, labels, k, centers)

		var shift float64
		for c := range centers {
			shift += sqDist(centers[c], next[c])
		}
		centers = next
		if shift <= tol {
			break
		}
	}

	inertia := assign(x, centers, labels)
	return &Model{
		K:          k,
		Centroids:  centers,
		Labels:     labels,
		Inertia:    inertia,
		Iterations: iter,
	}
}

// assign writes each point's nearest center into labels (lowest index on
// ties) and returns the inertia.
func assign(x [][]float64, centers [][]float64, labels []int) float64 {
	var inertia float64
	for i, p := range x {
		best := 0
		bestD := sqDist(p, centers[0])
		for c := 1; c < len(centers); c++ {
			if d := sqDist(p, centers[c]); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i] = best
		inertia += bestD
	}
	return inertia
}

// fillEmpty moves the points farthest from their centers into empty
// clusters. Points are only taken from clusters with more than one member.
func fillEmpty(x [][]float64, centers [][]float64, labels []int, k int) {
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	for c := range k {
		if counts[c] > 0 {
			continue
		}
		far, farD := -1, -1.0
		for i, p := range x {
			if counts[labels[i]] <= 1 {
				continue
			}
			if d := sqDist(p, centers[labels[i]]); d > farD {
				far, farD = i, d
			}
		}
		if far < 0 {
			return
		}
		counts[labels[far]]--
		labels[far] = c
		counts[c]++
	}
}

// means returns the per-cluster mean of x. A cluster with no members keeps
// its previous center.
func means(x [][]float64, labels []int, k int, prev [][]float64) [][]float64 {
	dim := len(x[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, p := range x {
		c := labels[i]
		counts[c]++
		for j, v := range p {
			sums[c][j] += v
		}
	}
	for c := range sums {
		if counts[c] == 0 {
			copy(sums[c], prev[c])
			continue
		}
		for j := range sums[c] {
			sums[c][j] /= float64(counts[c])
		}
	}
	return sums
}

// meanVariance is the mean over features of the per-feature variance.
func meanVariance(x [][]float64) float64 {
	n := float64(len(x))
	dim := len(x[0])
	var total float64
	for j := range dim {
		var mean float64
		for _, p := range x {
			mean += p[j]
		}
		mean /= n
		var v float64
		for _, p := range x {
			d := p[j] - mean
			v += d * d
		}
		total += v / n
	}
	return total / float64(dim)
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
