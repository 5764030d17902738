package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFactory(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		want    string
		wantErr bool
	}{
		{name: "tree", spec: Spec{Kind: KindTree}, want: "DecisionTree"},
		{name: "mlp default layers", spec: Spec{Kind: KindMLP}, want: "MLP[100]"},
		{name: "mlp", spec: Spec{Kind: KindMLP, HiddenLayers: []int{1, 1}}, want: "MLP[1 1]"},
		{name: "svm default kernel", spec: Spec{Kind: KindSVM}, want: "SVC(rbf)"},
		{name: "svm poly", spec: Spec{Kind: KindSVM, Kernel: KernelPoly, Degree: 1}, want: "SVC(poly,1)"},
		{name: "empty kind", spec: Spec{}, wantErr: true},
		{name: "unknown kind", spec: Spec{Kind: "forest"}, wantErr: true},
		{name: "bad kernel", spec: Spec{Kind: KindSVM, Kernel: "sigmoid"}, wantErr: true},
		{name: "bad layer", spec: Spec{Kind: KindMLP, HiddenLayers: []int{4, 0}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFactory(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f(1).Name())
		})
	}
}

func TestFactoryReturnsFreshModels(t *testing.T) {
	f, err := NewFactory(Spec{Kind: KindTree})
	require.NoError(t, err)
	a, b := f(1), f(1)
	assert.NotSame(t, a, b)
}

func TestCheckXY(t *testing.T) {
	_, err := checkXY(nil, nil)
	assert.Error(t, err)
	_, err = checkXY([][]float64{{1}}, []int{0, 1})
	assert.Error(t, err)
	_, err = checkXY([][]float64{{1}, {1, 2}}, []int{0, 1})
	assert.Error(t, err)
	_, err = checkXY([][]float64{{1}, {2}}, []int{0, 3})
	assert.Error(t, err)
	d, err := checkXY([][]float64{{1, 2}, {3, 4}}, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, d)
}
