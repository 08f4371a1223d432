package display

import (
	"fmt"
	"math"
	"sync"

	"github.com/annel0/perlin-wireframe/internal/heightfield"
	"github.com/annel0/perlin-wireframe/internal/logging"
	"github.com/gdamore/tcell/v2"
)

// Градации символов от низких вершин к высоким.
var shadeRamp = []rune(".:-=+*#%@")

// Terminal рисует ломаную кадра в терминале (вид сверху: x — столбец,
// z — строка, высота — символ и цвет).
type Terminal struct {
	newScreen func() (tcell.Screen, error)

	mu         sync.Mutex
	screen     tcell.Screen
	width      int
	height     int
	fullScreen bool
	closed     bool

	quit     chan struct{}
	quitOnce sync.Once
}

// NewTerminal создаёт поверхность поверх реального терминала.
func NewTerminal() *Terminal {
	return NewTerminalWithScreen(nil)
}

// NewTerminalWithScreen использует готовый экран (например, tcell.NewSimulationScreen).
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	t := &Terminal{
		newScreen: tcell.NewScreen,
		quit:      make(chan struct{}),
	}
	if screen != nil {
		t.newScreen = func() (tcell.Screen, error) { return screen, nil }
	}
	return t
}

// Allocate инициализирует экран. Нулевой размер означает весь терминал;
// размер больше терминала обрезается.
func (t *Terminal) Allocate(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}

	if t.screen == nil {
		screen, err := t.newScreen()
		if err != nil {
			return fmt.Errorf("display: create terminal screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("display: init terminal screen: %w", err)
		}
		screen.HideCursor()
		t.screen = screen
		go t.pollEvents(screen)
	}

	t.fullScreen = width == 0 || height == 0
	t.width, t.height = width, height
	t.clampToScreen()

	logging.Info("🖥  Терминальная поверхность %dx%d", t.width, t.height)
	return nil
}

func (t *Terminal) clampToScreen() {
	sw, sh := t.screen.Size()
	if t.fullScreen || t.width > sw {
		t.width = sw
	}
	if t.fullScreen || t.height > sh {
		t.height = sh
	}
}

// Present очищает экран, рисует ломаную и показывает результат.
func (t *Terminal) Present(frame *heightfield.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.closed:
		return ErrClosed
	case t.screen == nil:
		return ErrNotAllocated
	}

	if t.fullScreen {
		t.clampToScreen()
	}

	t.screen.Clear()
	if frame != nil && t.width > 0 && t.height > 0 {
		t.drawStrip(frame)
	}
	t.screen.Show()
	return nil
}

// Done закрывается, когда пользователь нажал q, Esc или Ctrl-C, либо после Close.
func (t *Terminal) Done() <-chan struct{} {
	return t.quit
}

func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.screen != nil {
		t.screen.Fini()
	}
	t.signalQuit()
	return nil
}

func (t *Terminal) signalQuit() {
	t.quitOnce.Do(func() { close(t.quit) })
}

func (t *Terminal) pollEvents(screen tcell.Screen) {
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			// Экран финализирован
			return
		case *tcell.EventKey:
			if isQuitKey(ev) {
				t.signalQuit()
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

type point struct {
	col, row int
	level    float64
}

func (t *Terminal) project(v heightfield.Vertex, lo, hi float64) point {
	level := 0.5
	if hi > lo {
		level = (v.Y - lo) / (hi - lo)
	}
	return point{
		col:   clampInt(int(math.Floor((v.X+1)/2*float64(t.width))), 0, t.width-1),
		row:   clampInt(int(math.Floor((v.Z+1)/2*float64(t.height))), 0, t.height-1),
		level: level,
	}
}

// drawStrip соединяет соседние вершины отрезками Брезенхэма.
func (t *Terminal) drawStrip(frame *heightfield.Frame) {
	if len(frame.Vertices) == 0 {
		return
	}
	lo, hi := frame.Bounds()

	prev := t.project(frame.Vertices[0], lo, hi)
	t.plot(prev)
	for _, v := range frame.Vertices[1:] {
		next := t.project(v, lo, hi)
		t.line(prev, next)
		prev = next
	}
}

func (t *Terminal) line(a, b point) {
	dx := absInt(b.col - a.col)
	dy := -absInt(b.row - a.row)
	sx, sy := 1, 1
	if a.col > b.col {
		sx = -1
	}
	if a.row > b.row {
		sy = -1
	}

	steps := dx
	if -dy > steps {
		steps = -dy
	}

	err := dx + dy
	col, row := a.col, a.row
	for i := 0; ; i++ {
		level := a.level
		if steps > 0 {
			level += (b.level - a.level) * float64(i) / float64(steps)
		}
		t.plot(point{col: col, row: row, level: level})
		if col == b.col && row == b.row {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			col += sx
		}
		if e2 <= dx {
			err += dx
			row += sy
		}
	}
}

func (t *Terminal) plot(p point) {
	level := math.Max(0, math.Min(1, p.level))
	glyph := shadeRamp[int(level*float64(len(shadeRamp)-1)+0.5)]

	// От синего в низинах к белому на вершинах.
	c := int32(80 + level*175)
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(c, c, 255))
	t.screen.SetContent(p.col, p.row, glyph, nil, style)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
