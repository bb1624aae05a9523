package common

import "math"

// DirectionEpsilon is the squared length below which a vector has no direction.
const DirectionEpsilon = 1e-4

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// InverseLerp returns where v sits between a and b, clamped to [0, 1].
// Returns 0 when a == b.
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func Rad2Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NearlyEqual compares with an absolute tolerance.
func NearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
