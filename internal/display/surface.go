// Package display — внешний коллаборатор демо: поверхность, которую можно
// выделить размером W×H и на которую можно вывести кадр.
package display

import (
	"errors"
	"fmt"

	"github.com/annel0/perlin-wireframe/internal/heightfield"
)

var (
	// ErrNotAllocated — Present до Allocate.
	ErrNotAllocated = errors.New("display: surface is not allocated")
	// ErrClosed — операция над закрытой поверхностью.
	ErrClosed = errors.New("display: surface is closed")
	// ErrInvalidSize — отрицательный размер поверхности.
	ErrInvalidSize = errors.New("display: invalid surface size")
)

// Surface выделяет область вывода и показывает кадры.
type Surface interface {
	Allocate(width, height int) error
	Present(frame *heightfield.Frame) error
	Close() error
}

// New создаёт поверхность по имени бэкенда из конфигурации.
func New(backend string) (Surface, error) {
	switch backend {
	case "", "headless":
		return NewHeadless(), nil
	case "terminal":
		return NewTerminal(), nil
	default:
		return nil, fmt.Errorf("display: unknown backend %q", backend)
	}
}

func checkSize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}

// Fanout выводит кадр сразу на несколько поверхностей.
type Fanout struct {
	surfaces []Surface
}

// NewFanout объединяет поверхности; nil-элементы пропускаются.
func NewFanout(surfaces ...Surface) *Fanout {
	f := &Fanout{}
	for _, s := range surfaces {
		if s != nil {
			f.surfaces = append(f.surfaces, s)
		}
	}
	return f
}

func (f *Fanout) Allocate(width, height int) error {
	for _, s := range f.surfaces {
		if err := s.Allocate(width, height); err != nil {
			return err
		}
	}
	return nil
}

// Present выводит кадр на все поверхности, даже если одна из них упала.
func (f *Fanout) Present(frame *heightfield.Frame) error {
	var errs []error
	for _, s := range f.surfaces {
		if err := s.Present(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.surfaces {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
