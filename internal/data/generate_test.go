package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSyntheticPU(t *testing.T) {
	cfg := DefaultSynthetic()
	cfg.N = 400
	ds, err := GenerateSyntheticPU(cfg, 1)
	require.NoError(t, err)
	assert.Equal(t, 400, ds.Len())
	assert.Equal(t, cfg.Dims, ds.Dims())
	assert.Len(t, ds.Names, cfg.Dims)

	labeled, unlabeled := ds.Counts()
	assert.Equal(t, 400, labeled+unlabeled)
	assert.InDelta(t, 0.2, float64(labeled)/400, 0.08)
	for i, v := range ds.Y {
		if v == 1 {
			assert.Equal(t, 1, ds.Truth[i], "labeled instance %d must be positive", i)
		}
	}

	again, err := GenerateSyntheticPU(cfg, 1)
	require.NoError(t, err)
	assert.Equal(t, ds.X, again.X)
	assert.Equal(t, ds.Y, again.Y)
}

func TestGenerateSyntheticPUAlwaysHasBothClasses(t *testing.T) {
	ds, err := GenerateSyntheticPU(SyntheticConfig{N: 2, Dims: 1, LabeledFraction: 0.01, ClassPrior: 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, ds.Y)
}

func TestGenerateSyntheticPUErrors(t *testing.T) {
	for _, cfg := range []SyntheticConfig{
		{N: 1, Dims: 1, LabeledFraction: 0.5},
		{N: 10, Dims: 0, LabeledFraction: 0.5},
		{N: 10, Dims: 1, LabeledFraction: 1},
		{N: 10, Dims: 1, LabeledFraction: 0.5, ClassPrior: 1.5},
	} {
		_, err := GenerateSyntheticPU(cfg, 0)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestDatasetHead(t *testing.T) {
	ds := &Dataset{X: [][]float64{{1}, {2}, {3}}, Y: []int{1, 0, 1}}
	h := ds.Head(2)
	assert.Equal(t, 2, h.Len())
	assert.Nil(t, h.Truth)
	assert.Equal(t, 3, ds.Head(10).Len())
	assert.Equal(t, 0, (&Dataset{}).Dims())
}
