package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"putransform/internal/config"
	"putransform/internal/store"
	"putransform/internal/transform"
)

func TestLoadDatasetSynthetic(t *testing.T) {
	s := config.Default()
	s.Data.Synthetic.N = 50
	ds, err := loadDataset(s)
	require.NoError(t, err)
	assert.Equal(t, 50, ds.Len())
}

func TestRecordRun(t *testing.T) {
	s := config.Default()
	s.Data.Synthetic.N = 20
	s.Output.Store = filepath.Join(t.TempDir(), "runs.db")
	ds, err := loadDataset(s)
	require.NoError(t, err)

	rep := transform.Report{Best: "rt", AUC: 0.5, Scores: make([]float64, ds.Len())}
	require.NoError(t, recordRun(s, ds, rep))
	require.NoError(t, recordRun(s, ds, rep))

	runs, err := store.Open(s.Output.Store)
	require.NoError(t, err)
	defer runs.Close()
	recent, err := runs.Recent(0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "synthetic", recent[0].Source)
	assert.Equal(t, int64(42), recent[0].Seed)
}
