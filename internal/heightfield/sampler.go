// Package heightfield строит анимированное поле высот: на каждом кадре все
// вершины сетки заново семплируются из noise.Field, а время служит осью y шума.
package heightfield

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/annel0/perlin-wireframe/internal/noise"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/annel0/perlin-wireframe/internal/heightfield"

// ErrInvalidOptions возвращается NewSampler для некорректных параметров.
var ErrInvalidOptions = errors.New("heightfield: invalid sampler options")

// Options задаёт параметры семплирования.
type Options struct {
	Grid      Grid
	Amplitude float64 // множитель высоты
	TimeScale float64 // масштаб времени по оси y шума
	TimeStep  float64 // приращение времени за кадр
	Workers   int     // параллельных строк; 0 — по числу CPU
}

// DefaultOptions возвращает параметры эталонного демо: сетка 64x64,
// высота 2.0, масштаб времени 0.3, 60 кадров в секунду.
func DefaultOptions() Options {
	return Options{
		Grid:      Grid{USections: 64, VSections: 64},
		Amplitude: 2.0,
		TimeScale: 0.3,
		TimeStep:  1.0 / 60,
	}
}

// Sampler хранит время и счётчик кадров. Advance вызывается из одной горутины;
// параллельность есть только внутри кадра.
type Sampler struct {
	field  noise.Field
	opts   Options
	layout []Cell
	time   float64
	frames uint64
	tracer trace.Tracer
}

// NewSampler создаёт семплер поверх поля.
func NewSampler(field noise.Field, opts Options) (*Sampler, error) {
	if field == nil {
		return nil, fmt.Errorf("%w: nil field", ErrInvalidOptions)
	}
	if err := opts.Grid.Validate(); err != nil {
		return nil, err
	}
	if opts.TimeStep <= 0 {
		return nil, fmt.Errorf("%w: time step %v", ErrInvalidOptions, opts.TimeStep)
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: workers %d", ErrInvalidOptions, opts.Workers)
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}

	return &Sampler{
		field:  field,
		opts:   opts,
		layout: opts.Grid.Layout(),
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Options возвращает действующие параметры.
func (s *Sampler) Options() Options { return s.opts }

// Time возвращает текущее время семплера.
func (s *Sampler) Time() float64 { return s.time }

// Advance сдвигает время на один шаг и строит новый кадр.
// При ошибке время и счётчик кадров не меняются.
func (s *Sampler) Advance(ctx context.Context) (*Frame, error) {
	next := s.time + s.opts.TimeStep
	frame, err := s.SampleAt(ctx, next)
	if err != nil {
		return nil, err
	}
	s.time = next
	s.frames++
	frame.Index = s.frames
	return frame, nil
}

// SampleAt строит кадр для момента t, не меняя состояние семплера.
// Строки сетки считаются параллельно; результат совпадает с последовательным.
func (s *Sampler) SampleAt(ctx context.Context, t float64) (*Frame, error) {
	ctx, span := s.tracer.Start(ctx, "heightfield.sample")
	defer span.End()

	grid := s.opts.Grid
	span.SetAttributes(
		attribute.Float64("time", t),
		attribute.Int("vertices", grid.VertexCount()),
	)

	frame := &Frame{
		Time:     t,
		Grid:     grid,
		Vertices: make([]Vertex, len(s.layout)),
	}
	y := s.opts.TimeScale * t

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for row := 0; row < grid.VSections; row++ {
		if gctx.Err() != nil {
			break
		}
		start := row * grid.USections
		end := start + grid.USections
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				frame.Vertices[i] = s.vertex(s.layout[i], y)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	// Отмена могла прийти до запуска первой строки.
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return frame, nil
}

func (s *Sampler) vertex(c Cell, y float64) Vertex {
	x, z := s.opts.Grid.Coord(c.U, c.V)
	return Vertex{
		X: x,
		Y: s.opts.Amplitude * s.field.Sample(x, y, z),
		Z: z,
	}
}
