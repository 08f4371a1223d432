package heightfield

import "math"

// Vertex — вершина ломаной: Y хранит высоту.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Frame — полностью пересчитанное поле высот одного кадра.
// Вершины лежат в порядке Grid.Layout.
type Frame struct {
	Index    uint64   `json:"index"`
	Time     float64  `json:"time"`
	Grid     Grid     `json:"grid"`
	Vertices []Vertex `json:"vertices"`
}

// Heights возвращает высоты в порядке обхода.
func (f *Frame) Heights() []float64 {
	heights := make([]float64, len(f.Vertices))
	for i, v := range f.Vertices {
		heights[i] = v.Y
	}
	return heights
}

// Bounds возвращает минимальную и максимальную высоту кадра.
// Для пустого кадра обе величины равны 0.
func (f *Frame) Bounds() (lo, hi float64) {
	if len(f.Vertices) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range f.Vertices {
		lo = math.Min(lo, v.Y)
		hi = math.Max(hi, v.Y)
	}
	return lo, hi
}

// Clone возвращает независимую копию кадра.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	cp := *f
	cp.Vertices = make([]Vertex, len(f.Vertices))
	copy(cp.Vertices, f.Vertices)
	return &cp
}
