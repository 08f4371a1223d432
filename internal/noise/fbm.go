package noise

import (
	"errors"
	"fmt"
)

// ErrNegativeOctaves — отрицательное число октав. Это ошибка вызывающего кода.
var ErrNegativeOctaves = errors.New("noise: octaves must not be negative")

// ErrTooManyOctaves — число октав больше MaxOctaves.
var ErrTooManyOctaves = errors.New("noise: too many octaves")

const (
	// Persistence — множитель амплитуды между октавами.
	Persistence = 0.5
	// Lacunarity — множитель частоты между октавами.
	Lacunarity = 2.0
	// BaseAmplitude — амплитуда первой октавы.
	BaseAmplitude = 0.5
	// MaxOctaves — предел для октав, пришедших извне. Дальше вклад октавы
	// меньше точности float64, а координаты со временем переполняются.
	MaxOctaves = 32
)

// FBM суммирует octaves октав Noise3: каждая следующая октава вдвое выше по
// частоте и вдвое слабее по амплитуде. Ноль октав даёт ровно 0.
// Отрицательное значение нарушает контракт и вызывает панику с ErrNegativeOctaves;
// на границах ввода используйте ValidateOctaves.
func FBM(x, y, z float64, octaves int) float64 {
	if octaves < 0 {
		panic(fmt.Errorf("%w: got %d", ErrNegativeOctaves, octaves))
	}

	sum := 0.0
	amplitude := BaseAmplitude
	for i := 0; i < octaves; i++ {
		sum += amplitude * Noise3(x, y, z)
		x *= Lacunarity
		y *= Lacunarity
		z *= Lacunarity
		amplitude *= Persistence
	}
	return sum
}

// ValidateOctaves проверяет число октав, пришедшее извне (конфиг, HTTP):
// от 0 до MaxOctaves включительно.
func ValidateOctaves(octaves int) error {
	if octaves < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeOctaves, octaves)
	}
	if octaves > MaxOctaves {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyOctaves, octaves, MaxOctaves)
	}
	return nil
}

// OctaveAmplitude возвращает амплитуду октавы с индексом k (с нуля).
func OctaveAmplitude(k int) float64 {
	a := BaseAmplitude
	for i := 0; i < k; i++ {
		a *= Persistence
	}
	return a
}
