package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"putransform/internal/models"
)

func TestDefaultMenu(t *testing.T) {
	menu := DefaultMenu()
	names := make([]string, len(menu))
	for i, c := range menu { names[i] = c.Name }
	assert.Equal(t, []string{"nn_1", "nn_5", "nn_25", "rt", "svm_1", "svm_2"}, names)
	require.NoError(t, ValidateMenu(menu))

	assert.Equal(t, TrainerOOB, menu[3].Trainer)
	assert.Equal(t, 1000, menu[3].Size)
	assert.Equal(t, TrainerKFold, menu[4].Trainer)
	assert.Equal(t, 10, menu[4].Size)
	assert.Equal(t, []int{1, 1}, menu[0].Model.HiddenLayers)
}

func TestPickBest(t *testing.T) {
	cand := func(name string, auc float64) Candidate {
		return Candidate{Name: name, Result: Result{AUC: auc}}
	}
	tests := []struct {
		name  string
		cands []Candidate
		want  int
	}{
		{"nothing beats baseline", []Candidate{cand("nn_1", 0.4), cand("rt", 0.3), cand("svm_1", 0.5)}, 1},
		{"single winner", []Candidate{cand("nn_1", 0.4), cand("rt", 0.45), cand("svm_1", 0.7)}, 2},
		{"tie keeps first", []Candidate{cand("nn_1", 0.8), cand("rt", 0.6), cand("svm_1", 0.8)}, 0},
		{"highest wins", []Candidate{cand("nn_1", 0.6), cand("rt", 0.9), cand("svm_1", 0.7)}, 1},
		{"no rt falls back to first", []Candidate{cand("a", 0.2), cand("b", 0.1)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickBest(tt.cands))
		})
	}
}

func TestSelectorPicksHighestAUC(t *testing.T) {
	X, y := ramp(40)
	menu := []Config{
		{Name: "down", Trainer: TrainerOOB, Size: 10, Factory: rankFactory(-1)},
		{Name: "rt", Trainer: TrainerOOB, Size: 10, Factory: rankFactory(0)},
		{Name: "up", Trainer: TrainerKFold, Size: 4, Factory: rankFactory(1)},
		{Name: "up_again", Trainer: TrainerOOB, Size: 10, Factory: rankFactory(1)},
	}
	var events []Progress
	rep, err := NewSelector(
		WithMenu(menu),
		WithLogger(zaptest.NewLogger(t)),
		WithProgress(func(p Progress) { events = append(events, p) }),
	).Run(context.Background(), X, y)
	require.NoError(t, err)

	assert.Equal(t, "up", rep.Best)
	assert.Equal(t, 1.0, rep.AUC)
	assert.Len(t, rep.Scores, 40)
	require.Len(t, rep.Candidates, 4)
	assert.Equal(t, 0.0, rep.Candidates[0].AUC)
	assert.Equal(t, 0.5, rep.Candidates[1].AUC)

	require.Len(t, events, 8)
	assert.False(t, events[0].Done)
	assert.True(t, events[1].Done)
	assert.Equal(t, "down", events[1].Name)
	assert.Equal(t, 4, events[7].Total)
}

func TestSelectorFallsBackToTree(t *testing.T) {
	X, y := ramp(40)
	menu := []Config{
		{Name: "down", Trainer: TrainerOOB, Size: 10, Factory: rankFactory(-1)},
		{Name: "rt", Trainer: TrainerOOB, Size: 10, Factory: rankFactory(0)},
		{Name: "down_kfold", Trainer: TrainerKFold, Size: 5, Factory: rankFactory(-1)},
	}
	scores, auc, err := GetOptimalTransform(context.Background(), X, y, WithMenu(menu))
	require.NoError(t, err)
	assert.Equal(t, 0.5, auc)
	assert.Len(t, scores, 40)
}

func TestSelectorAbortsOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	X, y := ramp(20)
	failing := func(int64) models.Model {
		m := models.NewMockModel(ctrl)
		m.EXPECT().Fit(gomock.Any(), gomock.Any()).Return(errors.New("boom"))
		return m
	}
	menu := []Config{
		{Name: "rt", Trainer: TrainerOOB, Size: 5, Factory: rankFactory(1)},
		{Name: "broken", Trainer: TrainerKFold, Size: 2, Factory: failing},
	}
	_, _, err := GetOptimalTransform(context.Background(), X, y, WithMenu(menu))
	assert.ErrorContains(t, err, "broken")
	assert.ErrorContains(t, err, "boom")
}

func TestValidateMenu(t *testing.T) {
	ok := Config{Name: "a", Trainer: TrainerOOB, Size: 1, Factory: rankFactory(1)}
	tests := []struct {
		name string
		menu []Config
	}{
		{"empty", nil},
		{"no name", []Config{{Trainer: TrainerOOB, Size: 1, Factory: rankFactory(1)}}},
		{"duplicate", []Config{ok, ok}},
		{"unknown trainer", []Config{{Name: "a", Trainer: "loo", Size: 1, Factory: rankFactory(1)}}},
		{"zero size", []Config{{Name: "a", Trainer: TrainerOOB, Factory: rankFactory(1)}}},
		{"no model", []Config{{Name: "a", Trainer: TrainerOOB, Size: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateMenu(tt.menu))
		})
	}
	assert.NoError(t, ValidateMenu([]Config{ok}))
}

func TestGetOptimalTransformSeparable(t *testing.T) {
	if testing.Short() {
		t.Skip("trains the full default menu")
	}
	X, y := separable(100, 5, 13)
	rep, err := NewSelector(WithSeed(1)).Run(context.Background(), X, y)
	require.NoError(t, err)
	require.Len(t, rep.Candidates, 6)
	assert.Len(t, rep.Scores, 100)
	assert.Greater(t, rep.AUC, 0.9)
	for _, c := range rep.Candidates {
		assert.True(t, c.AUC >= 0 && c.AUC <= 1, "%s auc %v", c.Name, c.AUC)
		assert.LessOrEqual(t, c.AUC, rep.AUC)
	}
}
