package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurveSizes(t *testing.T) {
	sizes := curveSizes(1000, 4, 100)
	assert.Equal(t, []int{100, 215, 464, 1000}, sizes)

	sizes = curveSizes(30, 6, 50)
	assert.Equal(t, []int{30}, sizes)

	for _, s := range curveSizes(500, 10, 20) {
		assert.True(t, s >= 20 && s <= 500)
	}
}
