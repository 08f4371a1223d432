package display

import (
	"errors"
	"testing"
	"time"

	"github.com/annel0/perlin-wireframe/internal/heightfield"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareFrame — сетка 2x2: вершины (-1,-1) -> (0,-1) -> (0,0) -> (-1,0).
func squareFrame() *heightfield.Frame {
	return &heightfield.Frame{
		Index: 1,
		Grid:  heightfield.Grid{USections: 2, VSections: 2},
		Vertices: []heightfield.Vertex{
			{X: -1, Y: 0.0, Z: -1},
			{X: 0, Y: 1.0, Z: -1},
			{X: 0, Y: 0.5, Z: 0},
			{X: -1, Y: -1.0, Z: 0},
		},
	}
}

func TestHeadless_Lifecycle(t *testing.T) {
	h := NewHeadless()
	assert.ErrorIs(t, h.Present(squareFrame()), ErrNotAllocated)
	assert.ErrorIs(t, h.Allocate(-1, 10), ErrInvalidSize)

	require.NoError(t, h.Allocate(640, 480))
	w, ht := h.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, ht)

	frame := squareFrame()
	require.NoError(t, h.Present(frame))
	require.NoError(t, h.Present(frame))
	assert.Equal(t, uint64(2), h.Presented())

	last := h.Last()
	require.NotNil(t, last)
	frame.Vertices[0].Y = 42
	assert.Equal(t, 0.0, last.Vertices[0].Y, "поверхность хранит копию кадра")

	require.NoError(t, h.Close())
	assert.ErrorIs(t, h.Present(frame), ErrClosed)
	assert.ErrorIs(t, h.Allocate(1, 1), ErrClosed)
}

type failingSurface struct{ err error }

func (f failingSurface) Allocate(int, int) error          { return nil }
func (f failingSurface) Present(*heightfield.Frame) error { return f.err }
func (f failingSurface) Close() error                     { return f.err }

func TestFanout_PresentsEverywhere(t *testing.T) {
	boom := errors.New("boom")
	a, b := NewHeadless(), NewHeadless()
	f := NewFanout(a, nil, failingSurface{err: boom}, b)

	require.NoError(t, f.Allocate(10, 10))
	err := f.Present(squareFrame())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(1), a.Presented())
	assert.Equal(t, uint64(1), b.Presented(), "ошибка одной поверхности не мешает остальным")

	assert.ErrorIs(t, f.Close(), boom)
}

func TestNew_Backends(t *testing.T) {
	s, err := New("headless")
	require.NoError(t, err)
	assert.IsType(t, &Headless{}, s)

	s, err = New("terminal")
	require.NoError(t, err)
	assert.IsType(t, &Terminal{}, s)

	_, err = New("egl")
	assert.Error(t, err)
}

func newSimTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(sim)
	t.Cleanup(func() { term.Close() })
	return term, sim
}

func runeAt(screen tcell.Screen, col, row int) rune {
	r, _, _, _ := screen.GetContent(col, row)
	return r
}

func TestTerminal_DrawsStrip(t *testing.T) {
	term, sim := newSimTerminal(t)
	assert.ErrorIs(t, term.Present(squareFrame()), ErrNotAllocated)

	require.NoError(t, term.Allocate(20, 10))
	require.NoError(t, term.Present(squareFrame()))

	// Вершины: (0,0), (10,0), (10,5), (0,5).
	assert.NotEqual(t, ' ', runeAt(sim, 0, 0))
	assert.NotEqual(t, ' ', runeAt(sim, 5, 0), "верхнее ребро")
	assert.NotEqual(t, ' ', runeAt(sim, 10, 3), "правое ребро")
	assert.NotEqual(t, ' ', runeAt(sim, 5, 5), "нижнее ребро")
	assert.Equal(t, ' ', runeAt(sim, 5, 3), "внутри квадрата пусто")
	assert.Equal(t, ' ', runeAt(sim, 15, 8), "за пределами ломаной пусто")

	// Максимальная высота — самый «плотный» символ, минимальная — самый лёгкий.
	assert.Equal(t, '@', runeAt(sim, 10, 0))
	assert.Equal(t, '.', runeAt(sim, 0, 5))
}

func TestTerminal_ClampsToScreen(t *testing.T) {
	term, sim := newSimTerminal(t)
	require.NoError(t, term.Allocate(0, 0))

	sw, sh := sim.Size()
	assert.Equal(t, sw, term.width)
	assert.Equal(t, sh, term.height)

	require.NoError(t, term.Allocate(sw*2, 3))
	assert.Equal(t, sw, term.width)
	assert.Equal(t, 3, term.height)
}

func TestTerminal_QuitKey(t *testing.T) {
	term, sim := newSimTerminal(t)
	require.NoError(t, term.Allocate(10, 5))

	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case <-term.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("нажатие q должно завершать демо")
	}
}

func TestTerminal_CloseIsIdempotent(t *testing.T) {
	term, _ := newSimTerminal(t)
	require.NoError(t, term.Allocate(10, 5))
	require.NoError(t, term.Close())
	require.NoError(t, term.Close())
	assert.ErrorIs(t, term.Present(squareFrame()), ErrClosed)

	select {
	case <-term.Done():
	default:
		t.Fatal("после Close канал Done должен быть закрыт")
	}
}
