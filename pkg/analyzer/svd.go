package analyzer

import (
	"fmt"
	"math"
	"math/rand"
)

// svdIterations bounds the subspace iteration. The spectrum of a TF-IDF
// matrix decays quickly, so the iteration converges well before this count
// for the corpus sizes one analysis batch sees.
const svdIterations = 30

// truncatedSVD computes the top-k right singular vectors of the document
// matrix a (rows = documents) by seeded block subspace iteration on aᵀa,
// without materializing the Gram matrix. The result has k rows, each a unit
// vector over the term space, ordered by decreasing singular value.
//
// No linear-algebra dependency is involved on purpose; k and the matrix
// stay small enough that the O(docs·terms·k) iteration is cheap.
func truncatedSVD(a [][]float64, k int, seed int64) ([][]float64, error) {
	n := len(a)
	if n == 0 {
		return nil, fmt.Errorf("svd: empty matrix")
	}
	m := len(a[0])
	if k <= 0 || k > m {
		return nil, fmt.Errorf("svd: %d components out of range for %d terms", k, m)
	}

	rng := rand.New(rand.NewSource(seed))

	// Random gaussian start, columns as the iteration subspace.
	v := make([][]float64, k)
	for j := range v {
		v[j] = make([]float64, m)
		for i := range v[j] {
			v[j][i] = rng.NormFloat64()
		}
	}
	orthonormalize(v)

	for iter := 0; iter < svdIterations; iter++ {
		for j := range v {
			v[j] = multiplyGram(a, v[j])
		}
		orthonormalize(v)
	}

	// Order by singular value (the norm of A·v).
	sigma := make([]float64, k)
	for j := range v {
		sigma[j] = math.Sqrt(gramQuadratic(a, v[j]))
	}
	for i := 0; i < k; i++ {
		best := i
		for j := i + 1; j < k; j++ {
			if sigma[j] > sigma[best] {
				best = j
			}
		}
		sigma[i], sigma[best] = sigma[best], sigma[i]
		v[i], v[best] = v[best], v[i]
	}

	return v, nil
}

// multiplyGram returns aᵀ·(a·x) without forming aᵀa.
func multiplyGram(a [][]float64, x []float64) []float64 {
	n := len(a)
	m := len(x)

	ax := make([]float64, n)
	for i, row := range a {
		ax[i] = dot(row, x)
	}

	out := make([]float64, m)
	for i, row := range a {
		if ax[i] == 0 {
			continue
		}
		for j, v := range row {
			out[j] += v * ax[i]
		}
	}
	return out
}

// gramQuadratic returns xᵀ·aᵀa·x = ‖a·x‖².
func gramQuadratic(a [][]float64, x []float64) float64 {
	s := 0.0
	for _, row := range a {
		p := dot(row, x)
		s += p * p
	}
	return s
}

// orthonormalize applies modified Gram-Schmidt to the rows of v in place.
// Rank-deficient directions collapse to zero vectors rather than failing;
// their projections contribute nothing.
func orthonormalize(v [][]float64) {
	const eps = 1e-12
	for i := range v {
		for j := 0; j < i; j++ {
			p := dot(v[i], v[j])
			for t := range v[i] {
				v[i][t] -= p * v[j][t]
			}
		}
		norm := math.Sqrt(dot(v[i], v[i]))
		if norm < eps {
			for t := range v[i] {
				v[i][t] = 0
			}
			continue
		}
		for t := range v[i] {
			v[i][t] /= norm
		}
	}
}
