package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/perlin-wireframe/internal/display"
	"github.com/annel0/perlin-wireframe/internal/heightfield"
	"github.com/annel0/perlin-wireframe/internal/logging"
	"github.com/annel0/perlin-wireframe/internal/metrics"
)

// DemoConfig собирает зависимости цикла кадров
type DemoConfig struct {
	Sampler   *heightfield.Sampler
	Surface   display.Surface
	Metrics   *metrics.FrameMetrics // может быть nil
	FrameRate int                   // кадров в секунду
	MaxFrames int                   // 0 — без ограничения
	Quit      <-chan struct{}       // сигнал выхода от поверхности, может быть nil
}

// Demo — цикл «семплировать поле, показать кадр» с фиксированной частотой
type Demo struct {
	cfg      DemoConfig
	interval time.Duration
	frames   int
}

// NewDemo проверяет зависимости и создаёт цикл
func NewDemo(cfg DemoConfig) (*Demo, error) {
	if cfg.Sampler == nil || cfg.Surface == nil {
		return nil, errors.New("app: sampler and surface are required")
	}
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("app: frame rate must be positive, got %d", cfg.FrameRate)
	}
	if cfg.MaxFrames < 0 {
		return nil, fmt.Errorf("app: max frames must not be negative, got %d", cfg.MaxFrames)
	}
	return &Demo{
		cfg:      cfg,
		interval: time.Second / time.Duration(cfg.FrameRate),
	}, nil
}

// Frames возвращает число показанных кадров
func (d *Demo) Frames() int { return d.frames }

// Step строит и показывает один кадр
func (d *Demo) Step(ctx context.Context) (*heightfield.Frame, error) {
	start := time.Now()
	frame, err := d.cfg.Sampler.Advance(ctx)
	if err != nil {
		return nil, fmt.Errorf("sample frame: %w", err)
	}
	sampleTime := time.Since(start)

	if err := d.cfg.Surface.Present(frame); err != nil {
		return nil, fmt.Errorf("present frame %d: %w", frame.Index, err)
	}
	d.frames++

	if d.cfg.Metrics != nil {
		d.cfg.Metrics.ObserveFrame(frame, sampleTime)
	}
	if logging.Default() != nil {
		lo, hi := frame.Bounds()
		logging.LogFrame(frame.Index, frame.Time, len(frame.Vertices), lo, hi)
	}
	return frame, nil
}

// Run крутит цикл до отмены ctx, сигнала Quit или лимита кадров.
// Возвращает ошибку только если кадр не удалось показать.
func (d *Demo) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	logging.Info("🎬 Цикл кадров запущен: %d fps, лимит %d", d.cfg.FrameRate, d.cfg.MaxFrames)
	for {
		if d.cfg.MaxFrames > 0 && d.frames >= d.cfg.MaxFrames {
			logging.Info("Достигнут лимит кадров: %d", d.frames)
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-d.cfg.Quit:
			logging.Info("Выход по запросу пользователя")
			return nil
		case <-ticker.C:
		}

		if _, err := d.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if d.cfg.Metrics != nil {
				d.cfg.Metrics.ObserveError()
			}
			return err
		}
	}
}
