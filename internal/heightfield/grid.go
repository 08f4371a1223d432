package heightfield

import (
	"errors"
	"fmt"
)

// ErrInvalidGrid возвращается для сетки с неположительным числом секций.
var ErrInvalidGrid = errors.New("heightfield: grid sections must be positive")

// Grid описывает разбиение квадрата [-1, 1) x [-1, 1) на вершины.
type Grid struct {
	USections int `json:"u_sections"`
	VSections int `json:"v_sections"`
}

// Cell — индекс вершины в сетке.
type Cell struct {
	U, V int
}

// Validate проверяет размеры сетки.
func (g Grid) Validate() error {
	if g.USections <= 0 || g.VSections <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, g.USections, g.VSections)
	}
	return nil
}

// VertexCount возвращает число вершин сетки.
func (g Grid) VertexCount() int {
	return g.USections * g.VSections
}

// Coord переводит индекс вершины в нормализованные координаты (x, z).
func (g Grid) Coord(u, v int) (x, z float64) {
	x = -1.0 + (2.0/float64(g.USections))*float64(u)
	z = -1.0 + (2.0/float64(g.VSections))*float64(v)
	return x, z
}

// Layout возвращает порядок обхода вершин «змейкой»: чётные строки идут
// по возрастанию u, нечётные — по убыванию. Так вся сетка рисуется одной
// ломаной без разрывов.
func (g Grid) Layout() []Cell {
	cells := make([]Cell, 0, g.VertexCount())
	for v := 0; v < g.VSections; v++ {
		if v%2 == 0 {
			for u := 0; u < g.USections; u++ {
				cells = append(cells, Cell{U: u, V: v})
			}
		} else {
			for u := g.USections - 1; u >= 0; u-- {
				cells = append(cells, Cell{U: u, V: v})
			}
		}
	}
	return cells
}
