package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMLPLearnsSeparableData(t *testing.T) {
	X, y := separable(200, 2, 3)
	m := NewMLP([]int{8}, 1)
	m.LearningRate = 0.01
	m.MaxIter = 500
	m.Tol = 0
	require.NoError(t, m.Fit(X, y))

	p, err := m.PredictProba(X)
	require.NoError(t, err)
	require.Len(t, p, len(X))
	for _, v := range p {
		assert.True(t, v >= 0 && v <= 1, "probability %v", v)
	}
	assert.Greater(t, rankAUC(y, p), 0.9)
	assert.Greater(t, m.NIter, 0)
}

func TestMLPDeterministicForSeed(t *testing.T) {
	X, y := separable(60, 3, 9)
	fit := func() []float64 {
		m := NewMLP([]int{1, 1}, 42)
		require.NoError(t, m.Fit(X, y))
		p, err := m.PredictProba(X)
		require.NoError(t, err)
		return p
	}
	assert.Equal(t, fit(), fit())
}

func TestMLPSingleClassIsConstant(t *testing.T) {
	m := NewMLP([]int{4}, 0)
	require.NoError(t, m.Fit([][]float64{{1}, {2}, {3}}, []int{1, 1, 1}))
	p, err := m.PredictProba([][]float64{{0}, {100}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, p)
}

func TestMLPErrors(t *testing.T) {
	m := NewMLP([]int{2}, 0)
	_, err := m.PredictProba([][]float64{{1}})
	assert.Error(t, err, "unfitted")

	require.NoError(t, m.Fit([][]float64{{0, 1}, {1, 0}, {1, 1}}, []int{0, 1, 1}))
	_, err = m.PredictProba([][]float64{{1, 2, 3}})
	assert.Error(t, err, "width mismatch")
}

func TestSigmoidIsStable(t *testing.T) {
	assert.Equal(t, 0.5, sigmoid(0))
	assert.InDelta(t, 1, sigmoid(800), 1e-12)
	assert.InDelta(t, 0, sigmoid(-800), 1e-12)
}
