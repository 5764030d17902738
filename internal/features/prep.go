package features

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler holds per-column z-score parameters fitted over a full matrix.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// PrepFeatures z-score normalizes every column of X using the population
// standard deviation. A constant column keeps a scale of 1 and therefore
// maps to all zeros.
func PrepFeatures(X [][]float64) ([][]float64, *Scaler, error) {
	ss := &Scaler{}
	if err := ss.Fit(X); err != nil {
		return nil, nil, err
	}
	Xz, err := ss.Transform(X)
	if err != nil {
		return nil, nil, err
	}
	return Xz, ss, nil
}

func (s *Scaler) Fit(X [][]float64) error {
	if err := checkMatrix(X); err != nil {
		return err
	}
	n, d := len(X), len(X[0])
	s.Mean = make([]float64, d)
	s.Std = make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		for i := 0; i < n; i++ { col[i] = X[i][j] }
		mean, sd := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		s.Std[j] = scaleOf(sd)
	}
	return nil
}

func (s *Scaler) Transform(X [][]float64) ([][]float64, error) {
	if len(s.Mean) == 0 {
		return nil, errors.New("features: scaler not fitted")
	}
	if err := checkMatrix(X); err != nil {
		return nil, err
	}
	if len(X[0]) != len(s.Mean) {
		return nil, fmt.Errorf("features: scaler fitted on %d columns, got %d", len(s.Mean), len(X[0]))
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		z := make([]float64, len(row))
		for j, v := range row { z[j] = (v - s.Mean[j]) / s.Std[j] }
		out[i] = z
	}
	return out, nil
}

const machineEps = 2.220446049250313e-16

// scaleOf keeps constant columns finite.
func scaleOf(sd float64) float64 {
	if sd < 10*machineEps || math.IsNaN(sd) { return 1 }
	return sd
}

func checkMatrix(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("features: empty feature matrix")
	}
	d := len(X[0])
	if d == 0 {
		return errors.New("features: feature matrix has no columns")
	}
	for i := range X {
		if len(X[i]) != d {
			return fmt.Errorf("features: row %d has %d columns, want %d", i, len(X[i]), d)
		}
	}
	return nil
}
