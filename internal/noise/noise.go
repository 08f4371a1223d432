// Package noise содержит градиентный шум Перлина в 3D и его фрактальную сумму.
//
// Все функции пакета чистые: результат зависит только от аргументов и
// неизменяемой таблицы перестановок, поэтому их можно вызывать из любого
// числа горутин без синхронизации.
package noise

import "math"

// Noise3 возвращает значение градиентного шума в точке (x, y, z).
// Результат примерно в диапазоне [-1, 1]; строгой границы нет.
// NaN и бесконечности распространяются по правилам IEEE 754.
func Noise3(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	ix, iy, iz := int(fx), int(fy), int(fz)

	x -= fx
	y -= fy
	z -= fz

	u, v, w := fade(x), fade(y), fade(z)

	// Цепочка поиска по одной таблице вместо полноценного 3D-хэша.
	a := perm(ix) + iy
	b := perm(ix+1) + iy
	aa := perm(a) + iz
	ba := perm(b) + iz
	ab := perm(a+1) + iz
	bb := perm(b+1) + iz

	return lerp(w,
		lerp(v,
			lerp(u, grad(perm(aa), x, y, z), grad(perm(ba), x-1, y, z)),
			lerp(u, grad(perm(ab), x, y-1, z), grad(perm(bb), x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(perm(aa+1), x, y, z-1), grad(perm(ba+1), x-1, y, z-1)),
			lerp(u, grad(perm(ab+1), x, y-1, z-1), grad(perm(bb+1), x-1, y-1, z-1))))
}

// fade — квинтическая кривая 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad выбирает одно из 12 рёберных направлений (16 с повторами) по младшим
// 4 битам хэша и возвращает его скалярное произведение с (x, y, z).
// Ветка h==12||h==14 намеренно отличается от канонической схемы.
func grad(hash int, x, y, z float64) float64 {
	h := hash & 0xf

	u := y
	if h < 8 {
		u = x
	}

	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}

	if h&1 == 0 {
		u = -u
	}
	if h&2 == 0 {
		v = -v
	}
	return u + v
}
