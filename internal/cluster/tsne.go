package cluster

import (
	"math"
)

// Point is a row's position in the 2-D embedding.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

const (
	exaggeration      = 12.0
	exaggerationIters = 250
	initialMomentum   = 0.5
	finalMomentum     = 0.8
	minGain           = 0.01
	minProbability    = 1e-12
	entropyTolerance  = 1e-5
	precisionTries    = 50
)

// Embed2D computes an exact t-SNE projection of ds into two dimensions, one
// point per row in row order. The embedding is for visualization only and
// never feeds back into clustering. Perplexity must be less than len(ds).
func (a *Analyzer) Embed2D(ds Dataset) ([]Point, error) {
	const op = "embed_2d"
	if err := validateRows(op, ds); err != nil {
		return nil, err
	}
	n := len(ds)
	if a.params.Perplexity >= float64(n) {
		return nil, invalid(op, "perplexity %g must be less than the number of rows (%d)", a.params.Perplexity, n)
	}

	x := ds.Matrix()
	p := jointProbabilities(x, a.params.Perplexity)
	y := optimize(p, n, a.params.EmbedIterations, a.params.Seed)

	out := make([]Point, n)
	for i := range n {
		out[i] = Point{X: y[i][0], Y: y[i][1]}
	}
	return out, nil
}

// jointProbabilities returns the symmetrized affinity matrix
// P = (P_cond + P_condᵀ) / 2n with entries floored at minProbability.
func jointProbabilities(x [][]float64, perplexity float64) [][]float64 {
	n := len(x)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			d := sqDist(x[i], x[j])
			dist[i][j], dist[j][i] = d, d
		}
	}

	cond := make([][]float64, n)
	target := math.Log(perplexity)
	for i := range n {
		cond[i] = conditionalRow(dist[i], i, target)
	}

	p := make([][]float64, n)
	for i := range p {
		p[i] = make([]float64, n)
	}
	denom := 2 * float64(n)
	for i := range n {
		for j := range n {
			if i == j {
				continue
			}
			p[i][j] = math.Max((cond[i][j]+cond[j][i])/denom, minProbability)
		}
	}
	return p
}

// conditionalRow binary-searches the Gaussian precision for row i whose
// conditional distribution has entropy target (in nats).
func conditionalRow(d []float64, i int, target float64) []float64 {
	n := len(d)
	row := make([]float64, n)

	minD := math.Inf(1)
	for j, v := range d {
		if j != i && v < minD {
			minD = v
		}
	}

	beta := 1.0
	lo, hi := math.Inf(-1), math.Inf(1)
	for range precisionTries {
		var sum, weighted float64
		for j, v := range d {
			if j == i {
				row[j] = 0
				continue
			}
			shifted := v - minD
			row[j] = math.Exp(-shifted * beta)
			sum += row[j]
			weighted += shifted * row[j]
		}
		h := math.Log(sum) + beta*weighted/sum
		for j := range row {
			row[j] /= sum
		}

		diff := h - target
		if math.Abs(diff) < entropyTolerance {
			break
		}
		if diff > 0 {
			lo = beta
			if math.IsInf(hi, 1) {
				beta *= 2
			} else {
				beta = (beta + hi) / 2
			}
		} else {
			hi = beta
			if math.IsInf(lo, -1) {
				beta /= 2
			} else {
				beta = (beta + lo) / 2
			}
		}
	}
	return row
}

// optimize runs gradient descent with momentum and per-coordinate gains on
// the Student-t embedding, starting from a small seeded Gaussian cloud.
func optimize(p [][]float64, n, iters int, seed uint64) [][]float64 {
	rng := newRNG(seed)
	y := make([][]float64, n)
	update := make([][]float64, n)
	gains := make([][]float64, n)
	grad := make([][]float64, n)
	for i := range n {
		y[i] = []float64{rng.NormFloat64() * 1e-4, rng.NormFloat64() * 1e-4}
		update[i] = make([]float64, 2)
		gains[i] = []float64{1, 1}
		grad[i] = make([]float64, 2)
	}

	lr := math.Max(float64(n)/exaggeration/4, 50)
	num := make([][]float64, n)
	for i := range num {
		num[i] = make([]float64, n)
	}

	for iter := range iters {
		ex, momentum := 1.0, finalMomentum
		if iter < exaggerationIters {
			ex, momentum = exaggeration, initialMomentum
		}

		var sumQ float64
		for i := range n {
			for j := i + 1; j < n; j++ {
				dx := y[i][0] - y[j][0]
				dy := y[i][1] - y[j][1]
				q := 1 / (1 + dx*dx + dy*dy)
				num[i][j], num[j][i] = q, q
				sumQ += 2 * q
			}
		}

		for i := range n {
			grad[i][0], grad[i][1] = 0, 0
			for j := range n {
				if i == j {
					continue
				}
				q := math.Max(num[i][j]/sumQ, minProbability)
				m := 4 * (ex*p[i][j] - q) * num[i][j]
				grad[i][0] += m * (y[i][0] - y[j][0])
				grad[i][1] += m * (y[i][1] - y[j][1])
			}
		}

		var cx, cy float64
		for i := range n {
			for d := range 2 {
				if update[i][d]*grad[i][d] < 0 {
					gains[i][d] += 0.2
				} else {
					gains[i][d] *= 0.8
				}
				gains[i][d] = math.Max(gains[i][d], minGain)
				update[i][d] = momentum*update[i][d] - lr*gains[i][d]*grad[i][d]
				y[i][d] += update[i][d]
			}
			cx += y[i][0]
			cy += y[i][1]
		}
		cx /= float64(n)
		cy /= float64(n)
		for i := range n {
			y[i][0] -= cx
			y[i][1] -= cy
		}
	}
	return y
}
