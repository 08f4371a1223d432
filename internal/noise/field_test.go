package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewField_Improved(t *testing.T) {
	f, err := NewField(BackendImproved, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, FBM(0.1, 0.2, 0.3, 3), f.Sample(0.1, 0.2, 0.3))

	f, err = NewField("", 3, 0)
	require.NoError(t, err)
	assert.IsType(t, Fractal{}, f, "пустое имя бэкенда означает improved")
}

func TestNewField_Seeded(t *testing.T) {
	a, err := NewField(BackendSeeded, 3, 42)
	require.NoError(t, err)
	b, err := NewField(BackendSeeded, 3, 42)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		x, y, z := float64(i)*0.31, float64(i)*0.17, float64(i)*-0.23
		assert.Equal(t, a.Sample(x, y, z), b.Sample(x, y, z), "один сид должен давать одно поле")
	}
}

func TestNewField_Errors(t *testing.T) {
	_, err := NewField("simplex", 3, 0)
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = NewField(BackendImproved, -1, 0)
	assert.ErrorIs(t, err, ErrNegativeOctaves)

	_, err = NewSeeded(-2, 1)
	assert.ErrorIs(t, err, ErrNegativeOctaves)
}
