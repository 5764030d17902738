package models

import "math/rand/v2"

// separable draws n points in d dims labelled by the sign of x0+x1.
func separable(n, d int, seed uint64) ([][]float64, []int) {
	rng := rand.New(rand.NewPCG(seed, 1))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = make([]float64, d)
		for j := range X[i] { X[i][j] = rng.NormFloat64() }
		if X[i][0]+X[i][1] > 0 { y[i] = 1 }
	}
	return X, y
}

// rankAUC is the Mann-Whitney estimate, ties counted as one half.
func rankAUC(y []int, p []float64) float64 {
	var num, pairs float64
	for i := range y {
		if y[i] != 1 { continue }
		for j := range y {
			if y[j] != 0 { continue }
			pairs++
			switch {
			case p[i] > p[j]:
				num++
			case p[i] == p[j]:
				num += 0.5
			}
		}
	}
	return num / pairs
}
