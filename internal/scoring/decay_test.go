package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecayPolicyAward(t *testing.T) {
	policy := DecayPolicy{Floor: 0.2, Rate: 15}

	t.Run("first solver gets full value", func(t *testing.T) {
		assert.Equal(t, 500, policy.Award(500, 1))
	})

	t.Run("award decreases monotonically", func(t *testing.T) {
		prev := policy.Award(500, 1)
		for n := 2; n <= 100; n++ {
			cur := policy.Award(500, n)
			assert.LessOrEqual(t, cur, prev, "solve %d awarded more than solve %d", n, n-1)
			prev = cur
		}
	})

	t.Run("award never drops below floor", func(t *testing.T) {
		for _, n := range []int{10, 100, 1000, 100000} {
			awarded := policy.Award(500, n)
			assert.GreaterOrEqual(t, awarded, 100, "solve %d went under the floor", n)
		}
	})

	t.Run("zero base awards zero", func(t *testing.T) {
		assert.Equal(t, 0, policy.Award(0, 1))
		assert.Equal(t, 0, policy.Award(0, 50))
	})

	t.Run("non-positive rate does not divide by zero", func(t *testing.T) {
		flat := DecayPolicy{Floor: 0.5, Rate: 0}
		assert.Equal(t, 100, flat.Award(100, 1))
		assert.Positive(t, flat.Award(100, 2))
	})
}
