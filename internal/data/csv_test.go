package data

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCSVLabelLast(t *testing.T) {
	path := writeFile(t, "a,b,label\n1,2.5,1\n-3,4,0\n")
	ds, err := LoadCSV(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Names)
	assert.Equal(t, [][]float64{{1, 2.5}, {-3, 4}}, ds.X)
	assert.Equal(t, []int{1, 0}, ds.Y)
}

func TestLoadCSVNamedLabel(t *testing.T) {
	path := writeFile(t, "s,a,b\n0,1,2\n1,3,4\n")
	ds, err := LoadCSV(path, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Names)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, ds.X)
	assert.Equal(t, []int{0, 1}, ds.Y)
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		label string
	}{
		{"header only", "a,label\n", ""},
		{"single column", "label\n1\n", ""},
		{"missing label column", "a,b\n1,0\n", "y"},
		{"non-binary label", "a,label\n1,2\n", ""},
		{"non-numeric feature", "a,label\nx,1\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(writeFile(t, tt.body), tt.label)
			assert.Error(t, err)
		})
	}
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	ds, err := GenerateSyntheticPU(SyntheticConfig{N: 25, Dims: 3, LabeledFraction: 0.3, ClassPrior: 0.5, Separation: 1}, 9)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "nested", "ds.csv")
	require.NoError(t, WriteCSV(path, ds))

	back, err := LoadCSV(path, "label")
	require.NoError(t, err)
	assert.Equal(t, ds.Names, back.Names)
	assert.Equal(t, ds.X, back.X)
	assert.Equal(t, ds.Y, back.Y)
}

func TestWriteScoresCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, WriteScoresCSV(path, []int{1, 0}, []float64{0.25, math.NaN()}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "instance,label,score\n0,1,0.250000\n1,0,\n", string(raw))

	assert.Error(t, WriteScoresCSV(path, []int{1}, []float64{0.1, 0.2}))
}

func TestTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	require.NoError(t, Table(path, []string{"k", "v"}, [][]string{{"a", "1"}}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "k,v\na,1\n", string(raw))
}
