package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCosineSimilarity tests the similarity edge cases
func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, expected: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, expected: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, expected: -1},
		{name: "scaled", a: []float32{1, 1}, b: []float32{3, 3}, expected: 1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, expected: 0},
		{name: "length mismatch", a: []float32{1, 0, 0}, b: []float32{1, 0}, expected: 0},
		{name: "empty", a: nil, b: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.False(t, math.IsNaN(got))
		})
	}
}

// TestCosineSimilarity_Symmetric tests argument order independence
func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.2, 0.7, -0.1}
	b := []float32{0.5, -0.3, 0.9}
	assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(b, a), 1e-12)
}
