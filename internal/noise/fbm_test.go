package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFBM_Pinned(t *testing.T) {
	for _, p := range pinned {
		assert.InDelta(t, p.fbm3, FBM(p.x, p.y, p.z, 3), 1e-12, "fbm(%v, %v, %v, 3)", p.x, p.y, p.z)
	}
}

func TestFBM_ZeroOctaves(t *testing.T) {
	for _, p := range pinned {
		assert.Equal(t, 0.0, FBM(p.x, p.y, p.z, 0))
	}
	assert.Equal(t, 0.0, FBM(123.4, -56.7, 8.9, 0))
}

func TestFBM_SingleOctaveIsHalfNoise(t *testing.T) {
	assert.Equal(t, 0.5*Noise3(0.1, 0.2, 0.3), FBM(0.1, 0.2, 0.3, 1))
}

func TestFBM_NegativeOctavesPanics(t *testing.T) {
	assert.PanicsWithError(t, "noise: octaves must not be negative: got -1", func() {
		FBM(0.1, 0.2, 0.3, -1)
	})
}

func TestFBM_EachOctaveAddsAtMostItsAmplitude(t *testing.T) {
	// Шум не ограничен строго единицей, поэтому берём тот же запас 1.2, что и для Noise3.
	const margin = 1.2
	for i := 0; i < 50; i++ {
		x := float64(i)*0.173 - 4
		y := float64(i)*0.071 + 0.3
		z := float64(i)*-0.219 + 2
		prev := FBM(x, y, z, 0)
		for k := 0; k < 8; k++ {
			next := FBM(x, y, z, k+1)
			assert.LessOrEqual(t, abs(next-prev), OctaveAmplitude(k)*margin+1e-12,
				"октава %d в точке (%v, %v, %v)", k+1, x, y, z)
			prev = next
		}
	}
}

func TestValidateOctaves(t *testing.T) {
	require.NoError(t, ValidateOctaves(0))
	require.NoError(t, ValidateOctaves(6))
	require.NoError(t, ValidateOctaves(MaxOctaves))
	assert.ErrorIs(t, ValidateOctaves(-3), ErrNegativeOctaves)
	assert.ErrorIs(t, ValidateOctaves(MaxOctaves+1), ErrTooManyOctaves)
	assert.ErrorIs(t, ValidateOctaves(1100), ErrTooManyOctaves)
}

func TestFBM_MaxOctavesStaysFinite(t *testing.T) {
	v := FBM(0.3, 0.5, 0.5, MaxOctaves)
	assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "fbm с MaxOctaves должен быть конечным")
	assert.InDelta(t, 0.0, v, 1.2)
}

func TestOctaveAmplitude(t *testing.T) {
	assert.Equal(t, 0.5, OctaveAmplitude(0))
	assert.Equal(t, 0.25, OctaveAmplitude(1))
	assert.Equal(t, 0.0625, OctaveAmplitude(3))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
