package heightfield

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/annel0/perlin-wireframe/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingField считает вызовы и возвращает x+y+z.
type countingField struct {
	calls atomic.Int64
}

func (f *countingField) Sample(x, y, z float64) float64 {
	f.calls.Add(1)
	return x + y + z
}

func newTestSampler(t *testing.T, field noise.Field, mutate func(*Options)) *Sampler {
	t.Helper()
	opts := DefaultOptions()
	opts.Grid = Grid{USections: 8, VSections: 6}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := NewSampler(field, opts)
	require.NoError(t, err)
	return s
}

func TestNewSampler_Validation(t *testing.T) {
	_, err := NewSampler(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidOptions)

	opts := DefaultOptions()
	opts.Grid.USections = 0
	_, err = NewSampler(noise.Fractal{Octaves: 3}, opts)
	assert.ErrorIs(t, err, ErrInvalidGrid)

	opts = DefaultOptions()
	opts.TimeStep = 0
	_, err = NewSampler(noise.Fractal{Octaves: 3}, opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	opts = DefaultOptions()
	opts.Workers = -1
	_, err = NewSampler(noise.Fractal{Octaves: 3}, opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestSampler_AdvanceMovesTime(t *testing.T) {
	s := newTestSampler(t, noise.Fractal{Octaves: 3}, nil)
	assert.Equal(t, 0.0, s.Time())

	f1, err := s.Advance(context.Background())
	require.NoError(t, err)
	f2, err := s.Advance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), f1.Index)
	assert.Equal(t, uint64(2), f2.Index)
	assert.InDelta(t, 1.0/60, f1.Time, 1e-15)
	assert.InDelta(t, 2.0/60, f2.Time, 1e-15)
	assert.Equal(t, f2.Time, s.Time())
	assert.Greater(t, f2.Time, f1.Time, "время должно монотонно расти")
}

func TestSampler_HeightsMatchFBM(t *testing.T) {
	s := newTestSampler(t, noise.Fractal{Octaves: 3}, nil)
	frame, err := s.Advance(context.Background())
	require.NoError(t, err)

	grid := s.Options().Grid
	require.Len(t, frame.Vertices, grid.VertexCount())
	for i, c := range grid.Layout() {
		x, z := grid.Coord(c.U, c.V)
		want := 2.0 * noise.FBM(x, 0.3*frame.Time, z, 3)
		v := frame.Vertices[i]
		assert.Equal(t, x, v.X)
		assert.Equal(t, z, v.Z)
		assert.Equal(t, want, v.Y, "вершина %v", c)
	}
}

func TestSampler_ParallelEqualsSequential(t *testing.T) {
	field := noise.Fractal{Octaves: 4}
	seq := newTestSampler(t, field, func(o *Options) {
		o.Grid = Grid{USections: 33, VSections: 17}
		o.Workers = 1
	})
	par := newTestSampler(t, field, func(o *Options) {
		o.Grid = Grid{USections: 33, VSections: 17}
		o.Workers = 8
	})

	for i := 0; i < 3; i++ {
		a, err := seq.Advance(context.Background())
		require.NoError(t, err)
		b, err := par.Advance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, a.Vertices, b.Vertices)
	}
}

func TestSampler_SampleAtIsPure(t *testing.T) {
	s := newTestSampler(t, noise.Fractal{Octaves: 3}, nil)

	a, err := s.SampleAt(context.Background(), 1.5)
	require.NoError(t, err)
	b, err := s.SampleAt(context.Background(), 1.5)
	require.NoError(t, err)

	assert.Equal(t, a.Vertices, b.Vertices)
	assert.Equal(t, 0.0, s.Time(), "SampleAt не должен двигать время")
}

func TestSampler_EveryVertexSampledOnce(t *testing.T) {
	field := &countingField{}
	s := newTestSampler(t, field, nil)

	_, err := s.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(48), field.calls.Load())
}

func TestSampler_CancelledContext(t *testing.T) {
	s := newTestSampler(t, noise.Fractal{Octaves: 3}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frame, err := s.Advance(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, frame)
	assert.Equal(t, 0.0, s.Time(), "неудачный кадр не двигает время")
}

func TestFrame_BoundsAndClone(t *testing.T) {
	f := &Frame{Vertices: []Vertex{{Y: 0.5}, {Y: -1.25}, {Y: 0.75}}}
	lo, hi := f.Bounds()
	assert.Equal(t, -1.25, lo)
	assert.Equal(t, 0.75, hi)
	assert.Equal(t, []float64{0.5, -1.25, 0.75}, f.Heights())

	cp := f.Clone()
	cp.Vertices[0].Y = 9
	assert.Equal(t, 0.5, f.Vertices[0].Y, "клон не должен разделять память")

	lo, hi = (&Frame{}).Bounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
	assert.Nil(t, (*Frame)(nil).Clone())
}
