package noise

import (
	"errors"
	"fmt"

	"github.com/aquilax/go-perlin"
)

// Field — скалярное поле, которое семплирует генератор карты высот.
type Field interface {
	Sample(x, y, z float64) float64
}

// Имена бэкендов шума в конфигурации.
const (
	BackendImproved = "improved"
	BackendSeeded   = "seeded"
)

// ErrUnknownBackend возвращается NewField для неизвестного имени бэкенда.
var ErrUnknownBackend = errors.New("noise: unknown backend")

// Fractal — FBM поверх Noise3 с фиксированной таблицей перестановок.
type Fractal struct {
	Octaves int
}

// Sample реализует Field.
func (f Fractal) Sample(x, y, z float64) float64 {
	return FBM(x, y, z, f.Octaves)
}

// Seeded — классический шум Перлина с перестановкой от сида (aquilax/go-perlin).
// Октавы суммируются внутри библиотеки с теми же persistence и lacunarity.
type Seeded struct {
	p *perlin.Perlin
}

// NewSeeded создаёт бэкенд с alpha=2, beta=2, как у FBM.
func NewSeeded(octaves int, seed int64) (*Seeded, error) {
	if err := ValidateOctaves(octaves); err != nil {
		return nil, err
	}
	return &Seeded{
		p: perlin.NewPerlin(1/Persistence, Lacunarity, int32(octaves), seed),
	}, nil
}

// Sample реализует Field. Библиотека нормирует сумму октав иначе, поэтому
// результат умножается на BaseAmplitude, чтобы масштаб совпадал с FBM.
func (s *Seeded) Sample(x, y, z float64) float64 {
	return BaseAmplitude * s.p.Noise3D(x, y, z)
}

// NewField собирает поле по имени бэкенда из конфигурации.
func NewField(backend string, octaves int, seed int64) (Field, error) {
	if err := ValidateOctaves(octaves); err != nil {
		return nil, err
	}

	switch backend {
	case "", BackendImproved:
		return Fractal{Octaves: octaves}, nil
	case BackendSeeded:
		return NewSeeded(octaves, seed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
