package transform

import (
	"math"
	"math/rand/v2"

	"putransform/internal/models"
)

// rankModel scores rows by sign·x0 and ignores its training data.
type rankModel struct{ sign float64 }

func (m rankModel) Fit([][]float64, []int) error { return nil }
func (m rankModel) Name() string                { return "rank" }

func (m rankModel) PredictProba(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i := range X { out[i] = 1 / (1 + math.Exp(-m.sign*X[i][0])) }
	return out, nil
}

func rankFactory(sign float64) models.Factory {
	return func(int64) models.Model { return rankModel{sign: sign} }
}

// ramp is a one-feature dataset whose upper half is labelled 1.
func ramp(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = []float64{float64(i)}
		if i >= n/2 { y[i] = 1 }
	}
	return X, y
}

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
