package display

import (
	"sync"

	"github.com/annel0/perlin-wireframe/internal/heightfield"
)

// Headless ничего не рисует: хранит размер, счётчик и копию последнего кадра.
// Последний кадр читает REST-сервер, поэтому методы потокобезопасны.
type Headless struct {
	mu        sync.RWMutex
	width     int
	height    int
	allocated bool
	closed    bool
	presented uint64
	last      *heightfield.Frame
}

func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) Allocate(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.width, h.height = width, height
	h.allocated = true
	return nil
}

func (h *Headless) Present(frame *heightfield.Frame) error {
	snapshot := frame.Clone()

	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.closed:
		return ErrClosed
	case !h.allocated:
		return ErrNotAllocated
	}
	h.last = snapshot
	h.presented++
	return nil
}

func (h *Headless) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

// Size возвращает выделенный размер.
func (h *Headless) Size() (width, height int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.width, h.height
}

// Presented возвращает число показанных кадров.
func (h *Headless) Presented() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.presented
}

// Last возвращает последний показанный кадр или nil. Кадр нельзя изменять.
func (h *Headless) Last() *heightfield.Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}
