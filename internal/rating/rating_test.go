package rating

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   float64
	}{
		{"empty is zero not NaN", nil, 0.0},
		{"empty slice", []int{}, 0.0},
		{"single score", []int{7}, 7.0},
		{"all zeros", []int{0, 0, 0}, 0.0},
		{"all max", []int{10, 10}, 10.0},
		{"mixed", []int{5, 8, 3}, 16.0 / 3.0},
		{"non-integral mean", []int{7, 8}, 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Average(tt.scores), 1e-12)
		})
	}
}

// The aggregate is a function of the multiset of scores, so any permutation
// of the same input must agree exactly.
func TestAverage_OrderIndependent(t *testing.T) {
	scores := []int{0, 3, 10, 7, 7, 1, 9}
	want := Average(scores)

	shuffled := make([]int, len(scores))
	copy(shuffled, scores)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Average(shuffled))
	}
}
